package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"promo-planner/internal/domain"
	"promo-planner/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.ProjectRepo       = (*Postgres)(nil)
	_ domain.RosterRepo        = (*Postgres)(nil)
	_ domain.CalendarRepo      = (*Postgres)(nil)
	_ domain.ScheduleTaskRepo  = (*Postgres)(nil)
	_ domain.PlanJobStatusRepo = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// GetProject возвращает проект по ID.
func (p *Postgres) GetProject(projectID int64) (domain.Project, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var project domain.Project
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, name, company_name, company_url, description, risk_tolerance, posts_per_week, active, created_at, updated_at
FROM projects WHERE id=$1
`, projectID).Scan(&project.ID, &project.Name, &project.CompanyName, &project.CompanyURL, &project.Description, &project.RiskTolerance, &project.PostsPerWeek, &project.Active, &project.CreatedAt, &project.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "projects_get", "projects", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// ListActiveProjects возвращает активные проекты для планировщика.
func (p *Postgres) ListActiveProjects() ([]domain.Project, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, name, company_name, company_url, description, risk_tolerance, posts_per_week, active, created_at, updated_at
FROM projects WHERE active ORDER BY id
`)
	metrics.ObserveNetworkRequest("postgres", "projects_list_active", "projects", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var projects []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(&project.ID, &project.Name, &project.CompanyName, &project.CompanyURL, &project.Description, &project.RiskTolerance, &project.PostsPerWeek, &project.Active, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// ListSubreddits возвращает сабреддиты проекта.
func (p *Postgres) ListSubreddits(projectID int64) ([]domain.Subreddit, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, project_id, name, risk_level, max_posts_per_week, allowed_post_types, rules_text, created_at
FROM subreddits WHERE project_id=$1 ORDER BY id
`, projectID)
	metrics.ObserveNetworkRequest("postgres", "subreddits_list", "subreddits", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subreddits []domain.Subreddit
	for rows.Next() {
		var (
			sub   domain.Subreddit
			types []string
		)
		if err := rows.Scan(&sub.ID, &sub.ProjectID, &sub.Name, &sub.RiskLevel, &sub.MaxPostsPerWeek, &types, &sub.RulesText, &sub.CreatedAt); err != nil {
			return nil, err
		}
		for _, t := range types {
			sub.AllowedPostTypes = append(sub.AllowedPostTypes, domain.PostType(t))
		}
		subreddits = append(subreddits, sub)
	}
	return subreddits, rows.Err()
}

// ListPersonas возвращает персоны проекта.
func (p *Postgres) ListPersonas(projectID int64) ([]domain.Persona, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, project_id, name, bio, tone, disclosure_required, created_at
FROM personas WHERE project_id=$1 ORDER BY id
`, projectID)
	metrics.ObserveNetworkRequest("postgres", "personas_list", "personas", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var personas []domain.Persona
	for rows.Next() {
		var persona domain.Persona
		if err := rows.Scan(&persona.ID, &persona.ProjectID, &persona.Name, &persona.Bio, &persona.Tone, &persona.DisclosureRequired, &persona.CreatedAt); err != nil {
			return nil, err
		}
		personas = append(personas, persona)
	}
	return personas, rows.Err()
}

// ListTopicSeeds возвращает темы проекта.
func (p *Postgres) ListTopicSeeds(projectID int64) ([]domain.TopicSeed, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, project_id, seed_type, text, tags, priority, created_at
FROM topic_seeds WHERE project_id=$1 ORDER BY id
`, projectID)
	metrics.ObserveNetworkRequest("postgres", "topic_seeds_list", "topic_seeds", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var topics []domain.TopicSeed
	for rows.Next() {
		var topic domain.TopicSeed
		if err := rows.Scan(&topic.ID, &topic.ProjectID, &topic.SeedType, &topic.Text, &topic.Tags, &topic.Priority, &topic.CreatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// ReplaceWeek атомарно заменяет календарь недели: старые элементы удаляются,
// новые вставляются в той же транзакции. Тексты удалённых элементов уходят
// каскадом.
func (p *Postgres) ReplaceWeek(projectID int64, weekStart time.Time, items []domain.CalendarItem) ([]domain.CalendarItem, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	start := time.Now()
	_, err = tx.Exec(ctx, `DELETE FROM calendar_items WHERE project_id=$1 AND week_start=$2`, projectID, weekStart)
	metrics.ObserveNetworkRequest("postgres", "calendar_items_delete_week", "calendar_items", start, err)
	if err != nil {
		return nil, err
	}

	saved := make([]domain.CalendarItem, 0, len(items))
	for _, item := range items {
		threadJSON, err := json.Marshal(item.Thread)
		if err != nil {
			return nil, fmt.Errorf("сериализация треда: %w", err)
		}
		start = time.Now()
		err = tx.QueryRow(ctx, `
INSERT INTO calendar_items (project_id, week_start, slot_index, scheduled_at, day_of_week, subreddit_id, persona_id, topic_id, thread_json)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id
`, projectID, weekStart, item.Slot.Index, item.Slot.ScheduledAt, item.Slot.DayOfWeek, item.Slot.SubredditID, item.Slot.PersonaID, item.Slot.TopicID, threadJSON).Scan(&item.ID)
		metrics.ObserveNetworkRequest("postgres", "calendar_items_insert", "calendar_items", start, err)
		if err != nil {
			return nil, err
		}
		item.ProjectID = projectID
		item.Thread.CalendarItemID = item.ID
		saved = append(saved, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}
	return saved, nil
}

// GetWeek возвращает сохранённый календарь недели.
func (p *Postgres) GetWeek(projectID int64, weekStart time.Time) ([]domain.CalendarItem, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, project_id, slot_index, scheduled_at, day_of_week, subreddit_id, persona_id, topic_id, thread_json
FROM calendar_items WHERE project_id=$1 AND week_start=$2
ORDER BY slot_index
`, projectID, weekStart)
	metrics.ObserveNetworkRequest("postgres", "calendar_items_get_week", "calendar_items", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.CalendarItem
	for rows.Next() {
		var (
			item       domain.CalendarItem
			threadJSON []byte
		)
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Slot.Index, &item.Slot.ScheduledAt, &item.Slot.DayOfWeek, &item.Slot.SubredditID, &item.Slot.PersonaID, &item.Slot.TopicID, &threadJSON); err != nil {
			return nil, err
		}
		if len(threadJSON) > 0 {
			if err := json.Unmarshal(threadJSON, &item.Thread); err != nil {
				return nil, fmt.Errorf("десериализация треда: %w", err)
			}
		}
		item.Thread.CalendarItemID = item.ID
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveAsset сохраняет сгенерированный текст. Повторная генерация того же
// элемента треда перезаписывает предыдущий результат.
func (p *Postgres) SaveAsset(asset domain.ContentAsset) (int64, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	validationJSON, err := json.Marshal(asset.Validation)
	if err != nil {
		return 0, fmt.Errorf("сериализация результата валидации: %w", err)
	}

	var id int64
	start := time.Now()
	err = p.pool.QueryRow(ctx, `
INSERT INTO content_assets (calendar_item_id, slot_index, persona_id, title, body, risk_flags, validation_json, status, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now())
ON CONFLICT (calendar_item_id, slot_index) DO UPDATE
    SET persona_id=EXCLUDED.persona_id,
        title=EXCLUDED.title,
        body=EXCLUDED.body,
        risk_flags=EXCLUDED.risk_flags,
        validation_json=EXCLUDED.validation_json,
        status=EXCLUDED.status,
        updated_at=now()
RETURNING id
`, asset.CalendarItemID, asset.SlotIndex, asset.PersonaID, asset.Content.Title, asset.Content.Body, asset.Content.RiskFlags, validationJSON, asset.Status).Scan(&id)
	metrics.ObserveNetworkRequest("postgres", "content_assets_upsert", "content_assets", start, err)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AcquireScheduleTask вставляет запись о поставленной задаче и возвращает true, если удалось.
func (p *Postgres) AcquireScheduleTask(projectID int64, weekStart time.Time) (bool, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	res, err := p.pool.Exec(ctx, `
INSERT INTO schedule_tasks (project_id, week_start)
VALUES ($1, $2)
ON CONFLICT (project_id, week_start) DO NOTHING
`, projectID, weekStart)
	metrics.ObserveNetworkRequest("postgres", "schedule_tasks_acquire", "schedule_tasks", start, err)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// EnsurePlanJob регистрирует попытку обработки задачи планирования.
func (p *Postgres) EnsurePlanJob(jobID string) (bool, int, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var (
		doneAt   sql.NullTime
		attempts int
	)

	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO plan_job_statuses (job_id, attempts, updated_at)
VALUES ($1, 1, now())
ON CONFLICT (job_id) DO UPDATE
    SET attempts = plan_job_statuses.attempts + 1,
        updated_at = now()
RETURNING done_at, attempts
`, jobID).Scan(&doneAt, &attempts)
	metrics.ObserveNetworkRequest("postgres", "plan_job_statuses_upsert", "plan_job_statuses", start, err)
	if err != nil {
		return false, 0, err
	}

	return doneAt.Valid, attempts, nil
}

// MarkPlanJobDone помечает задачу как окончательно обработанную.
func (p *Postgres) MarkPlanJobDone(jobID string) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE plan_job_statuses
SET done_at = COALESCE(done_at, now()),
    updated_at = now()
WHERE job_id = $1
`, jobID)
	metrics.ObserveNetworkRequest("postgres", "plan_job_statuses_mark_done", "plan_job_statuses", start, err)
	return err
}
