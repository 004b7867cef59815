package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"promo-planner/internal/adapters/generator"
	"promo-planner/internal/adapters/repo"
	"promo-planner/internal/domain"
	"promo-planner/internal/infra/cache"
	"promo-planner/internal/infra/config"
	"promo-planner/internal/infra/db"
	applog "promo-planner/internal/infra/log"
	"promo-planner/internal/infra/metrics"
	"promo-planner/internal/infra/openai"
	"promo-planner/internal/infra/queue"
	calendarusecase "promo-planner/internal/usecase/calendar"
	"promo-planner/internal/usecase/moderation"
	"promo-planner/internal/usecase/thread"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("worker: не указан адрес Redis (REDIS_ADDR)")
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	weekLocks := cache.NewRedis(redisClient)

	var planQueue domain.PlanQueue
	if cfg.AMQPURL != "" {
		rabbitQueue, err := queue.NewRabbitPlanQueue(cfg.AMQPURL, cfg.Queues.Plan)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: не удалось инициализировать очередь RabbitMQ")
		}
		defer rabbitQueue.Close()
		planQueue = rabbitQueue
	} else {
		planQueue = queue.NewRedisPlanQueue(redisClient, cfg.Queues.Plan)
	}

	var gen domain.Generator
	if cfg.OpenAI.APIKey != "" {
		openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, 60*time.Second)
		gen = generator.NewOpenAI(openaiClient, cfg.OpenAI.Model, 60*time.Second)
	} else {
		logger.Warn().Msg("worker: ключ OpenAI не задан, используется шаблонный генератор")
		gen = generator.NewSimple()
	}

	threadCfg := thread.Config{
		NumCommenters:             cfg.Thread.Commenters,
		NumOPReplies:              cfg.Thread.OPReplies,
		MinCommentSpacingMinutes:  cfg.Thread.MinSpacingMinutes,
		EarlyCommentWindowHours:   cfg.Thread.EarlyWindowHours,
		LateCommentWindowHours:    cfg.Thread.LateWindowHours,
		MaxInternalPersonasPerThr: cfg.Thread.MaxInternalPersons,
	}
	moderationCfg := calendarusecase.ModerationConfig{
		Strict:         cfg.Moderation.Strict,
		AllowedDomains: config.SplitList(cfg.Moderation.AllowedDomains),
		SpamDomains:    config.SplitList(cfg.Moderation.SpamDomains),
	}
	service := calendarusecase.NewService(repoAdapter, repoAdapter, repoAdapter, gen, moderation.NewEngine(), threadCfg, cfg.Planner.SpacingHours, moderationCfg)

	worker := &planWorker{
		log:         logger,
		queue:       planQueue,
		statuses:    repoAdapter,
		projects:    repoAdapter,
		roster:      repoAdapter,
		service:     service,
		locks:       weekLocks,
		lockTTL:     time.Duration(cfg.Planner.LockTTLHours) * time.Hour,
		maxAttempts: cfg.Planner.MaxAttempts,
	}

	logger.Info().Msg("worker: запуск обработки очереди")
	worker.Run(ctx)
	logger.Info().Msg("worker: остановлен")
}

type planWorker struct {
	log         zerolog.Logger
	queue       domain.PlanQueue
	statuses    domain.PlanJobStatusRepo
	projects    domain.ProjectRepo
	roster      domain.RosterRepo
	service     *calendarusecase.Service
	locks       domain.Cache
	lockTTL     time.Duration
	maxAttempts int
}

func (w *planWorker) Run(ctx context.Context) {
	for {
		job, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.log.Error().Err(err).Msg("worker: ошибка чтения очереди")
			time.Sleep(time.Second)
			continue
		}

		jobLog := w.log.With().
			Str("job_id", job.ID).
			Int64("project", job.ProjectID).
			Str("week", job.WeekStart.Format("2006-01-02")).
			Str("cause", string(job.Cause)).
			Logger()

		if job.ID == "" {
			jobLog.Error().Msg("worker: получена задача без идентификатора, пропускаем")
			continue
		}

		done, attempt, err := w.statuses.EnsurePlanJob(job.ID)
		if err != nil {
			jobLog.Error().Err(err).Msg("worker: не удалось зарегистрировать задачу")
			time.Sleep(time.Second)
			continue
		}
		jobLog = jobLog.With().Int("attempt", attempt).Logger()

		if done {
			jobLog.Info().Msg("worker: задача уже обработана, пропускаем")
			continue
		}
		if attempt > w.maxAttempts {
			jobLog.Error().Msg("worker: достигнут предел попыток, задача закрывается")
			metrics.PlanJobFailures.Inc()
			w.markDone(job.ID, jobLog)
			continue
		}

		if err := w.handleJob(ctx, job); err != nil {
			metrics.PlanJobFailures.Inc()
			if attempt < w.maxAttempts {
				jobLog.Warn().Err(err).Msg("worker: задача завершилась ошибкой, возвращаем в очередь")
				w.requeue(ctx, job, jobLog)
				continue
			}
			jobLog.Error().Err(err).Msg("worker: задача исчерпала попытки")
			w.markDone(job.ID, jobLog)
			continue
		}

		w.markDone(job.ID, jobLog)
		jobLog.Info().Msg("worker: неделя перегенерирована")
	}
}

// handleJob перегенерирует неделю под замком, чтобы две задачи одного проекта
// и одной недели не перестраивали календарь одновременно.
func (w *planWorker) handleJob(ctx context.Context, job domain.PlanJob) error {
	lockKey := fmt.Sprintf("plan_lock:%d:%s", job.ProjectID, job.WeekStart.Format("2006-01-02"))
	return w.locks.Once(lockKey, w.lockTTL, func() error {
		return w.regenerate(ctx, job)
	})
}

func (w *planWorker) regenerate(ctx context.Context, job domain.PlanJob) error {
	weekPlan, items, err := w.service.RegenerateWeek(ctx, job.ProjectID, job.WeekStart, job.PostsPerWeek)
	if err != nil {
		return err
	}
	for _, planErr := range weekPlan.Errors {
		w.log.Warn().Int64("project", job.ProjectID).Str("week", job.WeekStart.Format("2006-01-02")).Msg(planErr)
	}
	if len(items) == 0 {
		return nil
	}

	project, err := w.projects.GetProject(job.ProjectID)
	if err != nil {
		return fmt.Errorf("получение проекта: %w", err)
	}
	subreddits, err := w.roster.ListSubreddits(job.ProjectID)
	if err != nil {
		return fmt.Errorf("сабреддиты проекта: %w", err)
	}
	personas, err := w.roster.ListPersonas(job.ProjectID)
	if err != nil {
		return fmt.Errorf("персоны проекта: %w", err)
	}
	topics, err := w.roster.ListTopicSeeds(job.ProjectID)
	if err != nil {
		return fmt.Errorf("темы проекта: %w", err)
	}

	assets, err := w.service.GenerateAssets(ctx, project, items, subreddits, personas, topics)
	for _, asset := range assets {
		metrics.IncAssetStatus(string(asset.Status))
	}
	if err != nil {
		return fmt.Errorf("генерация текстов: %w", err)
	}
	return nil
}

func (w *planWorker) requeue(ctx context.Context, job domain.PlanJob, jobLog zerolog.Logger) {
	time.Sleep(time.Second)
	if err := w.queue.Enqueue(ctx, job); err != nil {
		jobLog.Error().Err(err).Msg("worker: не удалось вернуть задачу в очередь")
	}
}

func (w *planWorker) markDone(jobID string, jobLog zerolog.Logger) {
	if err := w.statuses.MarkPlanJobDone(jobID); err != nil {
		jobLog.Error().Err(err).Msg("worker: не удалось пометить задачу обработанной")
	}
}
