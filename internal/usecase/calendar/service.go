package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"promo-planner/internal/domain"
	"promo-planner/internal/infra/metrics"
	"promo-planner/internal/usecase/moderation"
	"promo-planner/internal/usecase/plan"
	"promo-planner/internal/usecase/thread"
)

// ErrProjectInactive возвращается при попытке планировать неактивный проект.
var ErrProjectInactive = errors.New("проект неактивен")

// ModerationConfig — настройки валидации, общие для всех текстов проекта.
type ModerationConfig struct {
	Strict         bool
	AllowedDomains []string
	SpamDomains    []string
}

// Service реализует бизнес-логику построения недельного календаря: слоты,
// сабреддиты, персоны, темы, планы тредов, генерация и валидация текстов.
type Service struct {
	projects     domain.ProjectRepo
	roster       domain.RosterRepo
	calendar     domain.CalendarRepo
	generator    domain.Generator
	validator    *moderation.Engine
	threadCfg    thread.Config
	spacingHours int
	moderation   ModerationConfig
}

// NewService создаёт сервис календаря.
func NewService(projects domain.ProjectRepo, roster domain.RosterRepo, calendar domain.CalendarRepo, generator domain.Generator, validator *moderation.Engine, threadCfg thread.Config, spacingHours int, moderationCfg ModerationConfig) *Service {
	return &Service{
		projects:     projects,
		roster:       roster,
		calendar:     calendar,
		generator:    generator,
		validator:    validator,
		threadCfg:    threadCfg,
		spacingHours: spacingHours,
		moderation:   moderationCfg,
	}
}

// SeedForWeek выводит сид планирования из проекта и даты начала недели:
// перегенерация той же недели воспроизводима, разные недели расходятся.
func SeedForWeek(projectID int64, weekStart time.Time) int64 {
	return int64(plan.HashSeed(fmt.Sprintf("%d-%s", projectID, weekStart.Format("2006-01-02"))))
}

// BuildWeek строит план недели из снимка ростера без обращения к хранилищу.
// Ошибки ёмкости и предупреждения об интервалах собираются в плане, частичный
// результат возвращается всегда.
func (s *Service) BuildWeek(project domain.Project, subreddits []domain.Subreddit, personas []domain.Persona, topics []domain.TopicSeed, weekStart time.Time, postsPerWeek int) domain.WeekPlan {
	if postsPerWeek <= 0 {
		postsPerWeek = project.PostsPerWeek
	}
	seed := SeedForWeek(project.ID, weekStart)
	weekPlan := domain.WeekPlan{ProjectID: project.ID, WeekStart: weekStart, Errors: []string{}, Warnings: []string{}}

	slots := plan.BuildPostSlots(weekStart, postsPerWeek, seed)
	if len(slots) == 0 {
		return weekPlan
	}

	subAssignment := plan.AssignSubreddits(slots, subreddits, plan.DefaultRiskPolicy(project.RiskTolerance), seed)
	weekPlan.Errors = append(weekPlan.Errors, subAssignment.Errors...)

	personaAssignment := plan.AssignPersonas(subAssignment.Slots, personas, s.spacingHours, seed)
	weekPlan.Errors = append(weekPlan.Errors, personaAssignment.Errors...)
	weekPlan.Warnings = append(weekPlan.Warnings, personaAssignment.Warnings...)

	weekPlan.Slots = cycleTopics(personaAssignment.Slots, topics)
	return weekPlan
}

// cycleTopics раздаёт темы по слотам по кругу, в порядке убывания приоритета.
func cycleTopics(slots []domain.AssignedSlot, topics []domain.TopicSeed) []domain.AssignedSlot {
	if len(topics) == 0 {
		return slots
	}
	ordered := append([]domain.TopicSeed(nil), topics...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})
	out := append([]domain.AssignedSlot(nil), slots...)
	for i := range out {
		out[i].TopicID = ordered[i%len(ordered)].ID
	}
	return out
}

// ExpandThreads разворачивает каждый слот плана в план треда с собственным
// сидом, производным от сида недели и индекса слота.
func (s *Service) ExpandThreads(project domain.Project, weekPlan domain.WeekPlan, personas []domain.Persona) ([]domain.CalendarItem, []string) {
	items := make([]domain.CalendarItem, 0, len(weekPlan.Slots))
	var warnings []string
	for _, slot := range weekPlan.Slots {
		seed := int64(plan.HashSeed(fmt.Sprintf("%d-%s-%d", project.ID, weekPlan.WeekStart.Format("2006-01-02"), slot.Index)))
		threadPlan, threadWarnings := thread.BuildThreadPlan(0, slot.PersonaID, personas, seed, s.threadCfg)
		warnings = append(warnings, threadWarnings...)
		items = append(items, domain.CalendarItem{ProjectID: project.ID, Slot: slot, Thread: threadPlan})
	}
	return items, warnings
}

// RegenerateWeek загружает ростер, строит план и идемпотентно замещает
// неделю в хранилище: существующие элементы удаляются и создаются заново.
func (s *Service) RegenerateWeek(ctx context.Context, projectID int64, weekStart time.Time, postsPerWeek int) (domain.WeekPlan, []domain.CalendarItem, error) {
	start := time.Now()
	defer metrics.ObservePlanBuild(start)
	metrics.IncPlanRequests(projectID)

	project, err := s.projects.GetProject(projectID)
	if err != nil {
		return domain.WeekPlan{}, nil, fmt.Errorf("получение проекта: %w", err)
	}
	if !project.Active {
		return domain.WeekPlan{}, nil, ErrProjectInactive
	}

	subreddits, err := s.roster.ListSubreddits(projectID)
	if err != nil {
		return domain.WeekPlan{}, nil, fmt.Errorf("сабреддиты проекта: %w", err)
	}
	personas, err := s.roster.ListPersonas(projectID)
	if err != nil {
		return domain.WeekPlan{}, nil, fmt.Errorf("персоны проекта: %w", err)
	}
	topics, err := s.roster.ListTopicSeeds(projectID)
	if err != nil {
		return domain.WeekPlan{}, nil, fmt.Errorf("темы проекта: %w", err)
	}

	weekPlan := s.BuildWeek(project, subreddits, personas, topics, weekStart, postsPerWeek)
	items, threadWarnings := s.ExpandThreads(project, weekPlan, personas)
	weekPlan.Warnings = append(weekPlan.Warnings, threadWarnings...)

	if len(items) == 0 {
		return weekPlan, nil, nil
	}

	saved, err := s.calendar.ReplaceWeek(projectID, weekStart, items)
	if err != nil {
		return weekPlan, nil, fmt.Errorf("сохранение недели: %w", err)
	}
	return weekPlan, saved, nil
}

// GenerateAssets генерирует и валидирует тексты всех элементов тредов
// недели. Транскрипт растёт по ходу треда, чтобы генератор видел уже
// написанные реплики. Невалидные и критично помеченные тексты сохраняются
// со статусом needs_review.
func (s *Service) GenerateAssets(ctx context.Context, project domain.Project, items []domain.CalendarItem, subreddits []domain.Subreddit, personas []domain.Persona, topics []domain.TopicSeed) ([]domain.ContentAsset, error) {
	subByID := make(map[int64]domain.Subreddit, len(subreddits))
	for _, sub := range subreddits {
		subByID[sub.ID] = sub
	}
	personaByID := make(map[int64]domain.Persona, len(personas))
	for _, p := range personas {
		personaByID[p.ID] = p
	}
	topicByID := make(map[int64]domain.TopicSeed, len(topics))
	for _, topic := range topics {
		topicByID[topic.ID] = topic
	}

	var assets []domain.ContentAsset
	for _, item := range items {
		sub := subByID[item.Slot.SubredditID]
		topic := topicByID[item.Slot.TopicID]
		var transcript []domain.TranscriptEntry

		for _, threadSlot := range item.Thread.Slots {
			persona := personaByID[threadSlot.PersonaID]
			genCtx := domain.GenerationContext{
				Project:    project,
				Persona:    persona,
				Subreddit:  sub,
				Topic:      topic,
				Slot:       threadSlot,
				Transcript: transcript,
			}
			content, err := s.generator.Generate(ctx, genCtx)
			if err != nil {
				return assets, fmt.Errorf("генерация текста для слота %d/%d: %w", item.Slot.Index, threadSlot.Index, err)
			}

			opts := moderation.Options{
				Strict:         s.moderation.Strict,
				Persona:        &persona,
				CompanyName:    project.CompanyName,
				AllowedDomains: s.moderation.AllowedDomains,
				SpamDomains:    s.moderation.SpamDomains,
			}
			if threadSlot.AssetType == domain.AssetPost {
				opts.Subreddit = &sub
			}
			verdict := s.validator.Validate(moderation.Content{Title: content.Title, Body: content.Body}, opts)
			for _, flag := range verdict.Flags {
				metrics.IncValidationFlag(flag)
			}

			status := domain.AssetStatusScheduled
			if !verdict.Valid || domain.HasCriticalFlags(verdict.Flags) {
				status = domain.AssetStatusNeedsReview
			}
			asset := domain.ContentAsset{
				CalendarItemID: item.ID,
				SlotIndex:      threadSlot.Index,
				PersonaID:      threadSlot.PersonaID,
				Content:        content,
				Validation:     verdict,
				Status:         status,
			}
			id, err := s.calendar.SaveAsset(asset)
			if err != nil {
				return assets, fmt.Errorf("сохранение текста: %w", err)
			}
			asset.ID = id
			assets = append(assets, asset)

			transcript = append(transcript, domain.TranscriptEntry{
				PersonaName: persona.Name,
				Intent:      threadSlot.Intent,
				Body:        content.Body,
			})
		}
	}
	return assets, nil
}
