package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	PlanBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_build_seconds",
		Help:    "Время построения недельного календаря",
		Buckets: prometheus.DefBuckets,
	})
	PlanRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_requests_total",
		Help: "Общее количество запросов на построение календаря",
	})
	PlanRequestsByProject = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_requests_by_project_total",
		Help: "Количество запросов на построение календаря по проектам",
	}, []string{"project_id"})
	PlanJobFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_job_failures_total",
		Help: "Ошибки обработки задач планирования",
	})
	ValidationFlagsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_flags_total",
		Help: "Количество выставленных флагов валидации по типам",
	}, []string{"flag"})
	AssetsByStatus = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "content_assets_total",
		Help: "Количество сгенерированных текстов по статусам",
	}, []string{"status"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		PlanBuildSeconds,
		PlanRequestsTotal,
		PlanRequestsByProject,
		PlanJobFailures,
		ValidationFlagsTotal,
		AssetsByStatus,
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	if totalTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}

// ObservePlanBuild записывает длительность построения календаря.
func ObservePlanBuild(start time.Time) {
	PlanBuildSeconds.Observe(time.Since(start).Seconds())
}

// IncPlanRequests увеличивает счётчики запросов планирования.
func IncPlanRequests(projectID int64) {
	PlanRequestsTotal.Inc()
	PlanRequestsByProject.WithLabelValues(strconv.FormatInt(projectID, 10)).Inc()
}

// IncValidationFlag увеличивает счётчик флага валидации.
func IncValidationFlag(flag string) {
	ValidationFlagsTotal.WithLabelValues(flag).Inc()
}

// IncAssetStatus увеличивает счётчик текстов по статусу.
func IncAssetStatus(status string) {
	AssetsByStatus.WithLabelValues(status).Inc()
}
