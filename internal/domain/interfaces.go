package domain

import (
	"context"
	"time"
)

// ProjectRepo управляет проектами.
type ProjectRepo interface {
	GetProject(projectID int64) (Project, error)
	ListActiveProjects() ([]Project, error)
}

// RosterRepo возвращает срез ростера проекта для одного запуска планирования.
type RosterRepo interface {
	ListSubreddits(projectID int64) ([]Subreddit, error)
	ListPersonas(projectID int64) ([]Persona, error)
	ListTopicSeeds(projectID int64) ([]TopicSeed, error)
}

// CalendarItem — сохранённый слот календаря вместе с планом треда.
type CalendarItem struct {
	ID        int64
	ProjectID int64
	Slot      AssignedSlot
	Thread    ThreadPlan
}

// ContentAsset — сгенерированный текст одного элемента треда вместе с вердиктом.
type ContentAsset struct {
	ID             int64
	CalendarItemID int64
	SlotIndex      int
	PersonaID      int64
	Content        GeneratedContent
	Validation     ValidationResult
	Status         AssetStatus
}

// CalendarRepo сохраняет и возвращает календарь.
// Перегенерация недели — это удаление и повторное создание, не слияние.
type CalendarRepo interface {
	ReplaceWeek(projectID int64, weekStart time.Time, items []CalendarItem) ([]CalendarItem, error)
	GetWeek(projectID int64, weekStart time.Time) ([]CalendarItem, error)
	SaveAsset(asset ContentAsset) (int64, error)
}

// Generator — внешний коллаборатор генерации текста.
type Generator interface {
	Generate(ctx context.Context, genCtx GenerationContext) (GeneratedContent, error)
}

// Cache используется для простых TTL-хранилищ и одноразовых замков.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
