package domain

import (
	"context"
	"time"
)

// PlanJobCause описывает источник запроса на перегенерацию недели.
type PlanJobCause string

const (
	// PlanCauseManual — неделя запрошена вручную через API.
	PlanCauseManual PlanJobCause = "manual"
	// PlanCauseScheduled — неделя запланирована по расписанию.
	PlanCauseScheduled PlanJobCause = "scheduled"
)

// PlanJob содержит информацию о задаче построения недельного календаря.
type PlanJob struct {
	ID           string       `json:"job_id,omitempty"`
	ProjectID    int64        `json:"project_id"`
	WeekStart    time.Time    `json:"week_start"`
	PostsPerWeek int          `json:"posts_per_week,omitempty"`
	RequestedAt  time.Time    `json:"requested_at"`
	Cause        PlanJobCause `json:"cause"`
}

// PlanQueue описывает очередь задач на построение календарей.
type PlanQueue interface {
	Enqueue(ctx context.Context, job PlanJob) error
	Pop(ctx context.Context) (PlanJob, error)
}

// ScheduleTaskRepo отвечает за идемпотентную постановку задач планирования.
type ScheduleTaskRepo interface {
	// AcquireScheduleTask помечает постановку задачи на указанную неделю и
	// возвращает true, если запись была создана. При конфликте возвращает
	// false без ошибки.
	AcquireScheduleTask(projectID int64, weekStart time.Time) (bool, error)
}

// PlanJobStatusRepo отвечает за учёт попыток обработки задач планирования.
type PlanJobStatusRepo interface {
	// EnsurePlanJob регистрирует попытку обработки и возвращает признак
	// завершённости и номер текущей попытки.
	EnsurePlanJob(jobID string) (done bool, attempt int, err error)
	// MarkPlanJobDone помечает задачу как окончательно обработанную.
	MarkPlanJobDone(jobID string) error
}
