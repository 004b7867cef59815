package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"promo-planner/internal/adapters/httpapi"
	"promo-planner/internal/adapters/repo"
	"promo-planner/internal/domain"
	"promo-planner/internal/infra/config"
	"promo-planner/internal/infra/db"
	httpinfra "promo-planner/internal/infra/http"
	applog "promo-planner/internal/infra/log"
	"promo-planner/internal/infra/metrics"
	"promo-planner/internal/infra/queue"
	"promo-planner/internal/usecase/moderation"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)

	var planQueue domain.PlanQueue
	switch {
	case cfg.AMQPURL != "":
		rabbitQueue, err := queue.NewRabbitPlanQueue(cfg.AMQPURL, cfg.Queues.Plan)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: не удалось инициализировать очередь RabbitMQ")
		}
		defer rabbitQueue.Close()
		planQueue = rabbitQueue
	case cfg.RedisAddr != "":
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		planQueue = queue.NewRedisPlanQueue(redisClient, cfg.Queues.Plan)
	default:
		logger.Fatal().Msg("api: не указан брокер очереди (AMQP_URL или REDIS_ADDR)")
	}

	moderationOpts := moderation.Options{
		Strict:         cfg.Moderation.Strict,
		AllowedDomains: config.SplitList(cfg.Moderation.AllowedDomains),
		SpamDomains:    config.SplitList(cfg.Moderation.SpamDomains),
	}
	handler := httpapi.NewHandler(repoAdapter, repoAdapter, planQueue, moderation.NewEngine(), moderationOpts, logger.With().Str("component", "api").Logger())

	server := httpinfra.NewServer(logger)
	handler.Register(server.Router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api: остановка сервера")
		}
	}()

	if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Error().Err(err).Msg("api: сервер остановлен")
	}
}
