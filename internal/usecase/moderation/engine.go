package moderation

import (
	"strings"

	"promo-planner/internal/domain"
)

// Content — проверяемый текст.
type Content struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// Text возвращает заголовок и тело одной строкой для фразового поиска.
func (c Content) Text() string {
	if c.Title == "" {
		return c.Body
	}
	return c.Title + "\n" + c.Body
}

// Options — контекст проверки одного текста.
type Options struct {
	// Strict переводит предупреждения о сокращателях ссылок в ошибки.
	Strict bool
	// Subreddit включает проверку политики типов постов, если задан.
	Subreddit *domain.Subreddit
	// Persona включает проверку обязательного раскрытия, если у персоны
	// выставлен соответствующий флаг.
	Persona     *domain.Persona
	CompanyName string
	// AllowedDomains — явный список разрешённых доменов; пустой список
	// отключает проверку.
	AllowedDomains []string
	// SpamDomains — курируемый список спам-доменов.
	SpamDomains []string
}

// Finding — результат одного детектора.
type Finding struct {
	Errors   []string
	Warnings []string
	Flags    []string
}

// Detector — независимая чистая проверка текста.
type Detector func(content Content, opts Options) Finding

// Engine прогоняет текст через упорядоченный список детекторов и сводит их
// результаты в один вердикт. Новые детекторы добавляются регистрацией, без
// изменения существующих.
type Engine struct {
	detectors []Detector
}

// NewEngine создаёт движок со стандартным набором детекторов.
func NewEngine() *Engine {
	return &Engine{detectors: []Detector{
		detectVoteManipulation,
		detectSpamLinks,
		detectLinkPolicy,
		detectAstroturf,
		detectMissingDisclosure,
	}}
}

// Register добавляет детектор в конец списка.
func (e *Engine) Register(d Detector) {
	e.detectors = append(e.detectors, d)
}

// Validate возвращает агрегированный вердикт. Ошибки и предупреждения
// конкатенируются в порядке регистрации детекторов, флаги дедуплицируются
// с сохранением порядка первого появления.
func (e *Engine) Validate(content Content, opts Options) domain.ValidationResult {
	result := domain.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
		Flags:    []string{},
	}
	seen := make(map[string]struct{})
	for _, detect := range e.detectors {
		finding := detect(content, opts)
		result.Errors = append(result.Errors, finding.Errors...)
		result.Warnings = append(result.Warnings, finding.Warnings...)
		for _, flag := range finding.Flags {
			if _, ok := seen[flag]; ok {
				continue
			}
			seen[flag] = struct{}{}
			result.Flags = append(result.Flags, flag)
		}
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func containsAny(lower string, phrases []string) []string {
	var matched []string
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			matched = append(matched, phrase)
		}
	}
	return matched
}
