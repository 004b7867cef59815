package domain

import "time"

// RiskLevel описывает уровень риска сабреддита.
type RiskLevel string

const (
	// RiskLow — безопасный сабреддит.
	RiskLow RiskLevel = "low"
	// RiskMedium — сабреддит со средними требованиями модерации.
	RiskMedium RiskLevel = "medium"
	// RiskHigh — сабреддит с жёсткой модерацией или высокой видимостью.
	RiskHigh RiskLevel = "high"
)

// Rank возвращает порядковый номер уровня риска для сравнения.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	}
	return 1
}

// PostType описывает допустимый тип публикации в сабреддите.
type PostType string

const (
	// PostTypeText — текстовый пост.
	PostTypeText PostType = "text"
	// PostTypeLink — пост-ссылка.
	PostTypeLink PostType = "link"
	// PostTypeImage — пост с изображением.
	PostTypeImage PostType = "image"
)

// Project описывает кампанию, для которой строится календарь.
type Project struct {
	ID            int64
	Name          string
	CompanyName   string
	CompanyURL    string
	Description   string
	RiskTolerance RiskLevel
	PostsPerWeek  int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Subreddit описывает целевое сообщество проекта.
type Subreddit struct {
	ID               int64
	ProjectID        int64
	Name             string
	RiskLevel        RiskLevel
	MaxPostsPerWeek  int
	AllowedPostTypes []PostType
	RulesText        string
	CreatedAt        time.Time
}

// AllowsLinks сообщает, разрешены ли в сабреддите посты-ссылки.
func (s Subreddit) AllowsLinks() bool {
	for _, t := range s.AllowedPostTypes {
		if t == PostTypeLink {
			return true
		}
	}
	return false
}

// RequiresLink сообщает, что сабреддит принимает только посты-ссылки.
func (s Subreddit) RequiresLink() bool {
	return len(s.AllowedPostTypes) == 1 && s.AllowedPostTypes[0] == PostTypeLink
}

// Persona описывает авторскую личность, от имени которой публикуется контент.
type Persona struct {
	ID                 int64
	ProjectID          int64
	Name               string
	Bio                string
	Tone               string
	DisclosureRequired bool
	CreatedAt          time.Time
}

// TopicSeed описывает тему, которую планировщик распределяет по слотам.
type TopicSeed struct {
	ID        int64
	ProjectID int64
	SeedType  string
	Text      string
	Tags      []string
	Priority  int
	CreatedAt time.Time
}

// PostSlot — одна возможность публикации внутри недели.
type PostSlot struct {
	Index       int
	ScheduledAt time.Time
	DayOfWeek   int
}

// AssignedSlot — слот с назначенным сабреддитом, персоной и темой.
type AssignedSlot struct {
	PostSlot
	SubredditID int64
	PersonaID   int64
	TopicID     int64
}

// WeekPlan — результат построения календаря на неделю.
type WeekPlan struct {
	ProjectID int64
	WeekStart time.Time
	Slots     []AssignedSlot
	Errors    []string
	Warnings  []string
}

// AssetType описывает роль элемента треда.
type AssetType string

const (
	// AssetPost — исходный пост треда.
	AssetPost AssetType = "post"
	// AssetComment — комментарий верхнего уровня.
	AssetComment AssetType = "comment"
	// AssetFollowup — ответ автора поста на комментарий.
	AssetFollowup AssetType = "followup"
)

// ThreadRole описывает роль персоны в треде.
type ThreadRole string

const (
	// RoleOP — автор исходного поста.
	RoleOP ThreadRole = "op"
	// RoleCommenter — комментатор.
	RoleCommenter ThreadRole = "commenter"
)

// CommentIntent описывает разговорное намерение комментария.
type CommentIntent string

const (
	IntentQuestion           CommentIntent = "question"
	IntentCounterpoint       CommentIntent = "counterpoint"
	IntentAddExample         CommentIntent = "add_example"
	IntentClarify            CommentIntent = "clarify"
	IntentAgree              CommentIntent = "agree"
	IntentPersonalExperience CommentIntent = "personal_experience"
	IntentThanks             CommentIntent = "thanks"
)

// ThreadSlot — один элемент запланированного треда.
// Слот с индексом 0 всегда пост с нулевым смещением и без родителя.
type ThreadSlot struct {
	Index           int
	AssetType       AssetType
	PersonaID       int64
	OffsetMinutes   int
	ParentSlotIndex *int
	Intent          CommentIntent
	ThreadRole      ThreadRole
}

// ThreadPlan — дерево симулированного обсуждения для одного слота календаря.
type ThreadPlan struct {
	CalendarItemID int64
	OPPersonaID    int64
	Slots          []ThreadSlot
}

// AssetStatus описывает статус сгенерированного текста в воронке согласования.
type AssetStatus string

const (
	// AssetStatusScheduled — прошёл валидацию и может публиковаться.
	AssetStatusScheduled AssetStatus = "scheduled"
	// AssetStatusNeedsReview — заблокирован до ручного решения.
	AssetStatusNeedsReview AssetStatus = "needs_review"
)

// GeneratedContent — ответ генератора текста.
type GeneratedContent struct {
	Title     string   `json:"title,omitempty"`
	Body      string   `json:"body"`
	RiskFlags []string `json:"risk_flags,omitempty"`
}

// TranscriptEntry — одна реплика уже сгенерированной части треда.
type TranscriptEntry struct {
	PersonaName string
	Intent      CommentIntent
	Body        string
}

// GenerationContext — входные данные генератора для одного элемента треда.
type GenerationContext struct {
	Project    Project
	Persona    Persona
	Subreddit  Subreddit
	Topic      TopicSeed
	Slot       ThreadSlot
	Transcript []TranscriptEntry
}
