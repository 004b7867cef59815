package config

import (
	"log"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"UTC"`
	Port   int    `envconfig:"PORT" default:"8080"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	AMQPURL   string `envconfig:"AMQP_URL"`

	OpenAI struct {
		APIKey  string `envconfig:"OPENAI_API_KEY"`
		BaseURL string `envconfig:"OPENAI_BASE_URL"`
		Model   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	} `envconfig:""`

	Planner struct {
		PostsPerWeek int    `envconfig:"PLANNER_POSTS_PER_WEEK" default:"5"`
		SpacingHours int    `envconfig:"PLANNER_SPACING_HOURS" default:"24"`
		MaxAttempts  int    `envconfig:"PLANNER_JOB_MAX_ATTEMPTS" default:"3"`
		LockTTLHours int    `envconfig:"PLANNER_WEEK_LOCK_TTL_HOURS" default:"1"`
		Tolerance    string `envconfig:"PLANNER_RISK_TOLERANCE" default:"medium"`
	} `envconfig:""`

	Thread struct {
		Commenters         int `envconfig:"THREAD_COMMENTERS" default:"4"`
		OPReplies          int `envconfig:"THREAD_OP_REPLIES" default:"2"`
		MinSpacingMinutes  int `envconfig:"THREAD_MIN_SPACING_MINUTES" default:"15"`
		EarlyWindowHours   int `envconfig:"THREAD_EARLY_WINDOW_HOURS" default:"4"`
		LateWindowHours    int `envconfig:"THREAD_LATE_WINDOW_HOURS" default:"24"`
		MaxInternalPersons int `envconfig:"THREAD_MAX_INTERNAL_PERSONAS" default:"2"`
	} `envconfig:""`

	Moderation struct {
		Strict         bool   `envconfig:"MODERATION_STRICT" default:"false"`
		SpamDomains    string `envconfig:"MODERATION_SPAM_DOMAINS"`
		AllowedDomains string `envconfig:"MODERATION_ALLOWED_DOMAINS"`
	} `envconfig:""`

	Queues struct {
		Plan string `envconfig:"PLAN_QUEUE_KEY" default:"plan_jobs"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// SplitList разбирает список доменов из переменной окружения.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
