package thread

import (
	"testing"

	"promo-planner/internal/domain"
)

func roster(ids ...int64) []domain.Persona {
	out := make([]domain.Persona, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Persona{ID: id})
	}
	return out
}

func TestBuildThreadPlanShape(t *testing.T) {
	cfg := DefaultConfig()
	got, warnings := BuildThreadPlan(100, 1, roster(1, 2, 3), 12345, cfg)
	if len(warnings) != 0 {
		t.Fatalf("не ожидали предупреждений: %v", warnings)
	}

	if got.Slots[0].AssetType != domain.AssetPost || got.Slots[0].OffsetMinutes != 0 || got.Slots[0].ParentSlotIndex != nil {
		t.Fatalf("ожидали пост с нулевым смещением в слоте 0")
	}
	if got.Slots[0].PersonaID != 1 || got.Slots[0].ThreadRole != domain.RoleOP {
		t.Fatalf("ожидали автора в слоте 0")
	}

	var comments, followups int
	earlyLimit := cfg.EarlyCommentWindowHours * 60
	for _, slot := range got.Slots[1:] {
		switch slot.AssetType {
		case domain.AssetComment:
			comments++
			if slot.ParentSlotIndex == nil || *slot.ParentSlotIndex != 0 {
				t.Fatalf("ожидали, что комментарий ссылается на пост")
			}
			if slot.OffsetMinutes < cfg.MinCommentSpacingMinutes {
				t.Fatalf("ожидали смещение не меньше минимального интервала, получили %d", slot.OffsetMinutes)
			}
		case domain.AssetFollowup:
			followups++
			if slot.ParentSlotIndex == nil {
				t.Fatalf("ожидали родителя у ответа")
			}
			parent := got.Slots[*slot.ParentSlotIndex]
			if parent.AssetType != domain.AssetComment {
				t.Fatalf("ожидали, что ответ ссылается на комментарий")
			}
			if parent.OffsetMinutes >= earlyLimit {
				t.Fatalf("ожидали, что ответ ссылается на раннюю когорту")
			}
			if slot.OffsetMinutes < parent.OffsetMinutes+30 {
				t.Fatalf("ожидали смещение ответа минимум на 30 минут позже комментария")
			}
			if slot.PersonaID != 1 {
				t.Fatalf("ожидали, что отвечает автор поста")
			}
		default:
			t.Fatalf("неожиданный тип слота %s", slot.AssetType)
		}
	}
	if comments != cfg.NumCommenters {
		t.Fatalf("ожидали %d комментариев, получили %d", cfg.NumCommenters, comments)
	}
	if followups < 1 || followups > cfg.NumOPReplies {
		t.Fatalf("ожидали от 1 до %d ответов, получили %d", cfg.NumOPReplies, followups)
	}
}

func TestBuildThreadPlanBoundsCommenters(t *testing.T) {
	got, _ := BuildThreadPlan(100, 1, roster(1, 2, 3, 4, 5, 6), 7, DefaultConfig())
	distinct := make(map[int64]bool)
	for _, slot := range got.Slots {
		if slot.AssetType == domain.AssetComment {
			distinct[slot.PersonaID] = true
			if slot.PersonaID == 1 {
				t.Fatalf("автор поста не должен комментировать при достаточном ростере")
			}
		}
	}
	if len(distinct) > DefaultConfig().MaxInternalPersonasPerThr {
		t.Fatalf("ожидали не больше %d комментаторов, получили %d", DefaultConfig().MaxInternalPersonasPerThr, len(distinct))
	}
}

func TestBuildThreadPlanTwoPersonas(t *testing.T) {
	got, warnings := BuildThreadPlan(100, 1, roster(1, 2), 55, DefaultConfig())
	if len(warnings) != 0 {
		t.Fatalf("две персоны — ожидаемый случай, без предупреждений: %v", warnings)
	}
	for _, slot := range got.Slots {
		if slot.AssetType == domain.AssetComment && slot.PersonaID != 2 {
			t.Fatalf("ожидали единственного комментатора с ID 2, получили %d", slot.PersonaID)
		}
	}
}

func TestBuildThreadPlanOPReuseWarns(t *testing.T) {
	got, warnings := BuildThreadPlan(100, 1, roster(1), 55, DefaultConfig())
	if len(warnings) != 1 {
		t.Fatalf("ожидали предупреждение о переиспользовании автора, получили %v", warnings)
	}
	for _, slot := range got.Slots {
		if slot.AssetType == domain.AssetComment && slot.PersonaID != 1 {
			t.Fatalf("ожидали автора в роли комментатора")
		}
	}
}

func TestBuildThreadPlanIntentVariety(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCommenters = 6
	got, _ := BuildThreadPlan(100, 1, roster(1, 2, 3), 9, cfg)
	seen := make(map[domain.CommentIntent]int)
	for _, slot := range got.Slots {
		if slot.AssetType == domain.AssetComment {
			seen[slot.Intent]++
		}
	}
	if len(seen) != 6 {
		t.Fatalf("ожидали все шесть намерений без повторов, получили %d", len(seen))
	}
	for intent, count := range seen {
		if count != 1 {
			t.Fatalf("намерение %s встречается %d раз до исчерпания словаря", intent, count)
		}
	}
}

func TestBuildThreadPlanDeterminism(t *testing.T) {
	first, _ := BuildThreadPlan(100, 1, roster(1, 2, 3, 4), 2024, DefaultConfig())
	second, _ := BuildThreadPlan(100, 1, roster(1, 2, 3, 4), 2024, DefaultConfig())
	if len(first.Slots) != len(second.Slots) {
		t.Fatalf("ожидали одинаковую длину планов")
	}
	for i := range first.Slots {
		a, b := first.Slots[i], second.Slots[i]
		if a.PersonaID != b.PersonaID || a.OffsetMinutes != b.OffsetMinutes || a.Intent != b.Intent {
			t.Fatalf("ожидали идентичные планы в слоте %d", i)
		}
	}
}

func TestBuildThreadPlanNoCommenters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCommenters = 0
	got, _ := BuildThreadPlan(100, 1, roster(1, 2), 3, cfg)
	if len(got.Slots) != 1 {
		t.Fatalf("ожидали только пост, получили %d слотов", len(got.Slots))
	}
}
