package plan

import (
	"testing"
	"time"
)

func week(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
}

func TestBuildPostSlotsDeterminism(t *testing.T) {
	first := BuildPostSlots(week(t), 5, 12345)
	second := BuildPostSlots(week(t), 5, 12345)
	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("ожидали по 5 слотов")
	}
	for i := range first {
		if !first[i].ScheduledAt.Equal(second[i].ScheduledAt) {
			t.Fatalf("ожидали одинаковые метки времени в слоте %d: %s != %s",
				i, first[i].ScheduledAt.Format(time.RFC3339), second[i].ScheduledAt.Format(time.RFC3339))
		}
	}
}

func TestBuildPostSlotsSeedsDiverge(t *testing.T) {
	first := BuildPostSlots(week(t), 5, 12345)
	second := BuildPostSlots(week(t), 5, 54321)
	same := true
	for i := range first {
		if !first[i].ScheduledAt.Equal(second[i].ScheduledAt) {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("ожидали различие расписаний для разных сидов")
	}
}

func TestBuildPostSlotsEmpty(t *testing.T) {
	if got := BuildPostSlots(week(t), 0, 1); len(got) != 0 {
		t.Fatalf("ожидали пустой список при n=0")
	}
}

func TestBuildPostSlotsSortedAndIndexed(t *testing.T) {
	slots := BuildPostSlots(week(t), 12, 7)
	for i, slot := range slots {
		if slot.Index != i {
			t.Fatalf("ожидали индекс %d, получили %d", i, slot.Index)
		}
		if i > 0 && slot.ScheduledAt.Before(slots[i-1].ScheduledAt) {
			t.Fatalf("ожидали хронологический порядок")
		}
		h := slot.ScheduledAt.Hour()
		if h < slotHourMin || h >= slotHourMax {
			t.Fatalf("ожидали час в [%d,%d), получили %d", slotHourMin, slotHourMax, h)
		}
		if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
			t.Fatalf("ожидали день в [0,6], получили %d", slot.DayOfWeek)
		}
	}
}

func TestBuildPostSlotsSevenCoverWeek(t *testing.T) {
	slots := BuildPostSlots(week(t), 7, 3)
	days := make(map[int]int)
	for _, slot := range slots {
		days[slot.DayOfWeek]++
	}
	for d := 0; d < 7; d++ {
		if days[d] != 1 {
			t.Fatalf("ожидали ровно один слот в день %d, получили %d", d, days[d])
		}
	}
}
