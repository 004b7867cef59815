package plan

import (
	"fmt"
	"time"

	"promo-planner/internal/domain"
)

// PersonaAssignment — результат назначения персон.
// Нарушение интервала — мягкое ограничение: при безвыходной плотности
// назначение продолжается с предупреждением, а не с ошибкой.
type PersonaAssignment struct {
	Slots    []domain.AssignedSlot
	Errors   []string
	Warnings []string
}

// AssignPersonas назначает каждому слоту персону, выдерживая минимальный
// интервал spacingHours между публикациями одной персоны. Слоты обходятся
// хронологически, «последнее использование» каждой персоны накапливается
// последовательно. Если подходящих персон нет, перемешивается весь пул и
// берётся первая — с предупреждением о нарушенном интервале.
func AssignPersonas(slots []domain.AssignedSlot, personas []domain.Persona, spacingHours int, seed int64) PersonaAssignment {
	if len(personas) == 0 {
		return PersonaAssignment{Errors: []string{"No personas available for assignment"}}
	}

	spacing := time.Duration(spacingHours) * time.Hour
	rng := NewRand(seed)
	lastUsed := make(map[int64]time.Time, len(personas))
	assignment := PersonaAssignment{Slots: make([]domain.AssignedSlot, 0, len(slots))}

	all := make([]int64, 0, len(personas))
	for _, p := range personas {
		all = append(all, p.ID)
	}

	for _, slot := range slots {
		eligible := make([]int64, 0, len(personas))
		for _, p := range personas {
			at, used := lastUsed[p.ID]
			if !used || slot.ScheduledAt.Sub(at) >= spacing {
				eligible = append(eligible, p.ID)
			}
		}
		var picked int64
		if len(eligible) > 0 {
			picked = rng.ShuffleInt64s(eligible)[0]
		} else {
			picked = rng.ShuffleInt64s(all)[0]
			assignment.Warnings = append(assignment.Warnings, fmt.Sprintf(
				"Persona spacing of %dh violated for slot %d at %s: no persona was idle long enough",
				spacingHours, slot.Index, slot.ScheduledAt.Format("2006-01-02 15:04")))
		}
		lastUsed[picked] = slot.ScheduledAt
		assigned := slot
		assigned.PersonaID = picked
		assignment.Slots = append(assignment.Slots, assigned)
	}

	return assignment
}

// SpacingViolation описывает пару слотов одной персоны, стоящих ближе
// минимального интервала.
type SpacingViolation struct {
	PersonaID  int64
	FirstSlot  int
	SecondSlot int
	Gap        time.Duration
}

// ValidatePersonaSpacing перепроверяет готовое назначение и возвращает все
// пары слотов одной персоны, нарушающие интервал. Функция намеренно не
// зависит от внутреннего учёта AssignPersonas: нарушения выводятся только
// из результата.
func ValidatePersonaSpacing(slots []domain.AssignedSlot, spacingHours int) []SpacingViolation {
	spacing := time.Duration(spacingHours) * time.Hour
	byPersona := make(map[int64][]domain.AssignedSlot)
	for _, slot := range slots {
		byPersona[slot.PersonaID] = append(byPersona[slot.PersonaID], slot)
	}

	var violations []SpacingViolation
	for personaID, group := range byPersona {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				gap := group[j].ScheduledAt.Sub(group[i].ScheduledAt)
				if gap < 0 {
					gap = -gap
				}
				if gap < spacing {
					violations = append(violations, SpacingViolation{
						PersonaID:  personaID,
						FirstSlot:  group[i].Index,
						SecondSlot: group[j].Index,
						Gap:        gap,
					})
				}
			}
		}
	}
	return violations
}
