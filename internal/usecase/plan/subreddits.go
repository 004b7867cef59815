package plan

import (
	"fmt"
	"math"

	"promo-planner/internal/domain"
)

// RiskPolicy задаёт кривую дисконта ёмкости сабреддитов, более рискованных,
// чем толерантность проекта. Кривая обязана быть монотонной: меньший риск
// при равной номинальной ёмкости даёт не меньшую эффективную.
type RiskPolicy struct {
	Tolerance domain.RiskLevel
	// DiscountOneAbove — множитель ёмкости для сабреддита на один уровень
	// выше толерантности.
	DiscountOneAbove float64
	// ExcludeTwoAbove жёстко исключает сабреддиты на два уровня выше.
	ExcludeTwoAbove bool
}

// DefaultRiskPolicy возвращает политику по умолчанию: полная ёмкость на
// уровне толерантности и ниже, половина на один уровень выше, исключение
// на два уровня выше.
func DefaultRiskPolicy(tolerance domain.RiskLevel) RiskPolicy {
	return RiskPolicy{Tolerance: tolerance, DiscountOneAbove: 0.5, ExcludeTwoAbove: true}
}

// RiskFactor возвращает множитель ёмкости для уровня риска сабреддита.
func (p RiskPolicy) RiskFactor(level domain.RiskLevel) float64 {
	diff := level.Rank() - p.Tolerance.Rank()
	switch {
	case diff <= 0:
		return 1
	case diff == 1:
		return p.DiscountOneAbove
	default:
		if p.ExcludeTwoAbove {
			return 0
		}
		return p.DiscountOneAbove * p.DiscountOneAbove
	}
}

// EffectiveCapacity — недельный лимит постов сабреддита с учётом риска.
func EffectiveCapacity(sub domain.Subreddit, policy RiskPolicy) int {
	return int(math.Floor(float64(sub.MaxPostsPerWeek) * policy.RiskFactor(sub.RiskLevel)))
}

// SubredditAssignment — результат назначения сабреддитов.
// Ошибки ёмкости не прерывают назначение: частичный результат возвращается
// вместе со списком ошибок, решение остаётся за вызывающим.
type SubredditAssignment struct {
	Slots  []domain.AssignedSlot
	Errors []string
}

// AssignSubreddits назначает каждому слоту сабреддит в хронологическом
// порядке, не превышая эффективную ёмкость. Среди подходящих кандидатов
// выбор равновероятен: список перемешивается генератором и берётся первый.
func AssignSubreddits(slots []domain.PostSlot, subreddits []domain.Subreddit, policy RiskPolicy, seed int64) SubredditAssignment {
	if len(subreddits) == 0 {
		return SubredditAssignment{Errors: []string{"No subreddits available for assignment"}}
	}

	byID := make(map[int64]domain.Subreddit, len(subreddits))
	capacity := make(map[int64]int, len(subreddits))
	for _, sub := range subreddits {
		byID[sub.ID] = sub
		capacity[sub.ID] = EffectiveCapacity(sub, policy)
	}

	rng := NewRand(seed)
	counts := make(map[int64]int, len(subreddits))
	assignment := SubredditAssignment{Slots: make([]domain.AssignedSlot, 0, len(slots))}

	for _, slot := range slots {
		eligible := make([]int64, 0, len(subreddits))
		for _, sub := range subreddits {
			if counts[sub.ID] < capacity[sub.ID] {
				eligible = append(eligible, sub.ID)
			}
		}
		if len(eligible) == 0 {
			assignment.Errors = append(assignment.Errors, fmt.Sprintf(
				"Insufficient subreddit capacity for slot %d at %s: all %d subreddits are at their weekly limit",
				slot.Index, slot.ScheduledAt.Format("2006-01-02 15:04"), len(subreddits)))
			continue
		}
		picked := rng.ShuffleInt64s(eligible)[0]
		counts[picked]++
		assignment.Slots = append(assignment.Slots, domain.AssignedSlot{PostSlot: slot, SubredditID: picked})
	}

	return assignment
}
