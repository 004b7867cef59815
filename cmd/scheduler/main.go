package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"promo-planner/internal/adapters/repo"
	"promo-planner/internal/domain"
	"promo-planner/internal/infra/config"
	"promo-planner/internal/infra/db"
	applog "promo-planner/internal/infra/log"
	"promo-planner/internal/infra/metrics"
	"promo-planner/internal/infra/queue"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)

	var planQueue domain.PlanQueue
	switch {
	case cfg.AMQPURL != "":
		rabbitQueue, err := queue.NewRabbitPlanQueue(cfg.AMQPURL, cfg.Queues.Plan)
		if err != nil {
			logger.Fatal().Err(err).Msg("scheduler: не удалось инициализировать очередь RabbitMQ")
		}
		defer rabbitQueue.Close()
		planQueue = rabbitQueue
	case cfg.RedisAddr != "":
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		planQueue = queue.NewRedisPlanQueue(redisClient, cfg.Queues.Plan)
	default:
		logger.Fatal().Msg("scheduler: не указан брокер очереди (AMQP_URL или REDIS_ADDR)")
	}

	logger.Info().Msg("scheduler: запущен")
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		scheduleWeekPlans(ctx, logger, repoAdapter, planQueue)
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduler: остановлен")
			return
		case <-ticker.C:
		}
	}
}

// scheduleWeekPlans ставит по одной задаче планирования следующей недели на
// каждый активный проект. Повторная постановка той же недели блокируется
// записью в schedule_tasks.
func scheduleWeekPlans(ctx context.Context, logger zerolog.Logger, repoAdapter *repo.Postgres, planQueue domain.PlanQueue) {
	projects, err := repoAdapter.ListActiveProjects()
	if err != nil {
		logger.Error().Err(err).Msg("scheduler: ошибка выборки проектов")
		return
	}

	weekStart := nextWeekStart(time.Now().UTC())
	for _, project := range projects {
		acquired, err := repoAdapter.AcquireScheduleTask(project.ID, weekStart)
		if err != nil {
			logger.Error().Err(err).Int64("project", project.ID).Msg("scheduler: не удалось пометить постановку задачи")
			continue
		}
		if !acquired {
			continue
		}
		job := domain.PlanJob{
			ID:          uuid.NewString(),
			ProjectID:   project.ID,
			WeekStart:   weekStart,
			RequestedAt: time.Now().UTC(),
			Cause:       domain.PlanCauseScheduled,
		}
		if err := planQueue.Enqueue(ctx, job); err != nil {
			logger.Error().Err(err).Int64("project", project.ID).Msg("scheduler: не удалось поставить задачу")
			continue
		}
		logger.Info().Int64("project", project.ID).Str("week", weekStart.Format("2006-01-02")).Msg("scheduler: неделя поставлена в очередь")
	}
}

// nextWeekStart возвращает понедельник следующей недели в UTC.
func nextWeekStart(now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}
