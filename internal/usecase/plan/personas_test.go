package plan

import (
	"testing"
	"time"

	"promo-planner/internal/domain"
)

func assignedSlots(n int, gap time.Duration) []domain.AssignedSlot {
	start := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	slots := make([]domain.AssignedSlot, 0, n)
	for i := 0; i < n; i++ {
		slots = append(slots, domain.AssignedSlot{
			PostSlot:    domain.PostSlot{Index: i, ScheduledAt: start.Add(time.Duration(i) * gap)},
			SubredditID: 1,
		})
	}
	return slots
}

func TestAssignPersonasNoCandidates(t *testing.T) {
	got := AssignPersonas(assignedSlots(2, time.Hour), nil, 24, 1)
	if len(got.Errors) != 1 || got.Errors[0] != "No personas available for assignment" {
		t.Fatalf("ожидали ошибку про пустой список, получили %v", got.Errors)
	}
}

func TestAssignPersonasRespectsSpacing(t *testing.T) {
	personas := []domain.Persona{
		{ID: 1, Name: "alice"},
		{ID: 2, Name: "bob"},
		{ID: 3, Name: "carol"},
	}
	got := AssignPersonas(assignedSlots(6, 13*time.Hour), personas, 24, 77)
	if len(got.Warnings) != 0 {
		t.Fatalf("не ожидали предупреждений при достаточном пуле: %v", got.Warnings)
	}
	if violations := ValidatePersonaSpacing(got.Slots, 24); len(violations) != 0 {
		t.Fatalf("ожидали отсутствие нарушений интервала, получили %v", violations)
	}
}

func TestAssignPersonasFallbackWarns(t *testing.T) {
	personas := []domain.Persona{{ID: 1, Name: "solo"}}
	got := AssignPersonas(assignedSlots(2, time.Hour), personas, 24, 5)
	if len(got.Slots) != 2 {
		t.Fatalf("ожидали назначение обоих слотов")
	}
	if len(got.Warnings) != 1 {
		t.Fatalf("ожидали одно предупреждение об интервале, получили %d", len(got.Warnings))
	}
	violations := ValidatePersonaSpacing(got.Slots, 24)
	if len(violations) != 1 {
		t.Fatalf("ожидали одно нарушение в перепроверке, получили %d", len(violations))
	}
	if violations[0].PersonaID != 1 {
		t.Fatalf("ожидали нарушение у персоны 1")
	}
}

func TestAssignPersonasDeterminism(t *testing.T) {
	personas := []domain.Persona{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	first := AssignPersonas(assignedSlots(8, 6*time.Hour), personas, 12, 321)
	second := AssignPersonas(assignedSlots(8, 6*time.Hour), personas, 12, 321)
	for i := range first.Slots {
		if first.Slots[i].PersonaID != second.Slots[i].PersonaID {
			t.Fatalf("ожидали одинаковое назначение в слоте %d", i)
		}
	}
}

func TestValidatePersonaSpacingIndependent(t *testing.T) {
	slots := []domain.AssignedSlot{
		{PostSlot: domain.PostSlot{Index: 0, ScheduledAt: time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)}, PersonaID: 7},
		{PostSlot: domain.PostSlot{Index: 1, ScheduledAt: time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)}, PersonaID: 7},
		{PostSlot: domain.PostSlot{Index: 2, ScheduledAt: time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)}, PersonaID: 7},
	}
	violations := ValidatePersonaSpacing(slots, 24)
	if len(violations) != 1 {
		t.Fatalf("ожидали ровно одно нарушение, получили %d", len(violations))
	}
	if violations[0].FirstSlot != 0 || violations[0].SecondSlot != 1 {
		t.Fatalf("ожидали нарушение между слотами 0 и 1")
	}
}
