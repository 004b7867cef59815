package thread

import (
	"sort"

	"promo-planner/internal/domain"
	"promo-planner/internal/usecase/plan"
)

// Config задаёт форму симулированного треда.
type Config struct {
	NumCommenters             int
	NumOPReplies              int
	MinCommentSpacingMinutes  int
	EarlyCommentWindowHours   int
	LateCommentWindowHours    int
	MaxInternalPersonasPerThr int
}

// DefaultConfig возвращает параметры треда по умолчанию.
func DefaultConfig() Config {
	return Config{
		NumCommenters:             4,
		NumOPReplies:              2,
		MinCommentSpacingMinutes:  15,
		EarlyCommentWindowHours:   4,
		LateCommentWindowHours:    24,
		MaxInternalPersonasPerThr: 2,
	}
}

var commentIntents = []domain.CommentIntent{
	domain.IntentQuestion,
	domain.IntentCounterpoint,
	domain.IntentAddExample,
	domain.IntentClarify,
	domain.IntentAgree,
	domain.IntentPersonalExperience,
}

var replyIntents = []domain.CommentIntent{
	domain.IntentClarify,
	domain.IntentThanks,
	domain.IntentAddExample,
}

// intentPool выдаёт намерения без повторов до исчерпания словаря, после чего
// пул перезаполняется и перемешивается заново.
type intentPool struct {
	rng   *plan.Rand
	vocab []domain.CommentIntent
	queue []domain.CommentIntent
}

func newIntentPool(rng *plan.Rand, vocab []domain.CommentIntent) *intentPool {
	return &intentPool{rng: rng, vocab: vocab}
}

func (p *intentPool) next() domain.CommentIntent {
	if len(p.queue) == 0 {
		idx := make([]int, len(p.vocab))
		for i := range idx {
			idx[i] = i
		}
		for _, i := range p.rng.ShuffleInts(idx) {
			p.queue = append(p.queue, p.vocab[i])
		}
	}
	intent := p.queue[0]
	p.queue = p.queue[1:]
	return intent
}

// BuildThreadPlan разворачивает один слот календаря в план обсуждения:
// пост, numCommenters комментариев и до numOpReplies ответов автора.
// Возвращает план и предупреждения о вырожденных случаях ростера.
func BuildThreadPlan(calendarItemID int64, opPersonaID int64, roster []domain.Persona, seed int64, cfg Config) (domain.ThreadPlan, []string) {
	rng := plan.NewRand(seed)
	var warnings []string

	threadPlan := domain.ThreadPlan{
		CalendarItemID: calendarItemID,
		OPPersonaID:    opPersonaID,
		Slots: []domain.ThreadSlot{{
			Index:      0,
			AssetType:  domain.AssetPost,
			PersonaID:  opPersonaID,
			ThreadRole: domain.RoleOP,
		}},
	}
	if cfg.NumCommenters <= 0 {
		return threadPlan, warnings
	}

	commenters, warn := pickCommenters(rng, opPersonaID, roster, cfg.MaxInternalPersonasPerThr)
	if warn != "" {
		warnings = append(warnings, warn)
	}
	if len(commenters) == 0 {
		return threadPlan, warnings
	}

	offsets := drawCommentOffsets(rng, cfg)
	sort.Ints(offsets)

	// Намерения и персоны привязываются к уже отсортированным смещениям,
	// чтобы диалог читался хронологически.
	intents := newIntentPool(rng, commentIntents)
	postIndex := 0
	earlyLimit := cfg.EarlyCommentWindowHours * 60
	var earlyIndexes []int
	for i, offset := range offsets {
		slotIndex := i + 1
		parent := postIndex
		threadPlan.Slots = append(threadPlan.Slots, domain.ThreadSlot{
			Index:           slotIndex,
			AssetType:       domain.AssetComment,
			PersonaID:       commenters[i%len(commenters)],
			OffsetMinutes:   offset,
			ParentSlotIndex: &parent,
			Intent:          intents.next(),
			ThreadRole:      domain.RoleCommenter,
		})
		if offset < earlyLimit {
			earlyIndexes = append(earlyIndexes, slotIndex)
		}
	}

	appendOPReplies(rng, &threadPlan, earlyIndexes, cfg)
	return threadPlan, warnings
}

// pickCommenters выбирает фиксированный набор комментаторов треда. Автор
// поста исключается из кандидатов; если кроме него в ростере никого нет,
// он переиспользуется принудительно, и это фиксируется предупреждением.
func pickCommenters(rng *plan.Rand, opPersonaID int64, roster []domain.Persona, maxInternal int) ([]int64, string) {
	if maxInternal <= 0 {
		maxInternal = 1
	}
	candidates := make([]int64, 0, len(roster))
	for _, p := range roster {
		if p.ID != opPersonaID {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		if len(roster) == 0 {
			return nil, "Thread roster is empty, no comments planned"
		}
		return []int64{opPersonaID}, "OP persona reused as commenter: roster has no other personas"
	}
	shuffled := rng.ShuffleInt64s(candidates)
	if len(shuffled) > maxInternal {
		shuffled = shuffled[:maxInternal]
	}
	return shuffled, ""
}

// drawCommentOffsets рисует смещения комментариев двумя когортами: ранняя
// (до двух штук) внутри earlyCommentWindowHours с нарастающим минимальным
// интервалом, поздняя — в хвосте до lateCommentWindowHours.
func drawCommentOffsets(rng *plan.Rand, cfg Config) []int {
	earlyCount := cfg.NumCommenters
	if earlyCount > 2 {
		earlyCount = 2
	}
	earlyWindow := cfg.EarlyCommentWindowHours * 60
	lateWindow := cfg.LateCommentWindowHours * 60

	offsets := make([]int, 0, cfg.NumCommenters)
	for k := 0; k < earlyCount; k++ {
		lo := (k + 1) * cfg.MinCommentSpacingMinutes
		hi := earlyWindow
		if hi <= lo {
			hi = lo + 1
		}
		offsets = append(offsets, lo+rng.IntN(hi-lo))
	}
	for k := earlyCount; k < cfg.NumCommenters; k++ {
		lo := earlyWindow
		hi := lateWindow
		if hi <= lo {
			hi = lo + 1
		}
		offsets = append(offsets, lo+rng.IntN(hi-lo))
	}
	return offsets
}

// appendOPReplies добавляет ответы автора на случайные ранние комментарии.
// Без ранних комментариев ответов нет — это не ошибка.
func appendOPReplies(rng *plan.Rand, threadPlan *domain.ThreadPlan, earlyIndexes []int, cfg Config) {
	if cfg.NumOPReplies <= 0 || len(earlyIndexes) == 0 {
		return
	}
	targets := rng.ShuffleInts(earlyIndexes)
	if len(targets) > cfg.NumOPReplies {
		targets = targets[:cfg.NumOPReplies]
	}
	intents := newIntentPool(rng, replyIntents)
	for _, target := range targets {
		parent := target
		base := threadPlan.Slots[target].OffsetMinutes
		threadPlan.Slots = append(threadPlan.Slots, domain.ThreadSlot{
			Index:           len(threadPlan.Slots),
			AssetType:       domain.AssetFollowup,
			PersonaID:       threadPlan.OPPersonaID,
			OffsetMinutes:   base + 30 + rng.IntN(90),
			ParentSlotIndex: &parent,
			Intent:          intents.next(),
			ThreadRole:      domain.RoleOP,
		})
	}
}
