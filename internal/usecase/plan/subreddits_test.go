package plan

import (
	"strings"
	"testing"
	"time"

	"promo-planner/internal/domain"
)

func makeSlots(n int) []domain.PostSlot {
	start := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	slots := make([]domain.PostSlot, 0, n)
	for i := 0; i < n; i++ {
		slots = append(slots, domain.PostSlot{Index: i, ScheduledAt: start.Add(time.Duration(i) * 12 * time.Hour)})
	}
	return slots
}

func TestAssignSubredditsNoCandidates(t *testing.T) {
	got := AssignSubreddits(makeSlots(3), nil, DefaultRiskPolicy(domain.RiskMedium), 1)
	if len(got.Slots) != 0 {
		t.Fatalf("ожидали отсутствие назначений")
	}
	if len(got.Errors) != 1 || got.Errors[0] != "No subreddits available for assignment" {
		t.Fatalf("ожидали единственную ошибку про пустой список, получили %v", got.Errors)
	}
}

func TestAssignSubredditsCapacityInvariant(t *testing.T) {
	subs := []domain.Subreddit{
		{ID: 1, Name: "golang", RiskLevel: domain.RiskLow, MaxPostsPerWeek: 3},
		{ID: 2, Name: "programming", RiskLevel: domain.RiskMedium, MaxPostsPerWeek: 2},
	}
	policy := DefaultRiskPolicy(domain.RiskMedium)
	got := AssignSubreddits(makeSlots(5), subs, policy, 42)
	if len(got.Errors) != 0 {
		t.Fatalf("не ожидали ошибок: %v", got.Errors)
	}
	counts := make(map[int64]int)
	for _, slot := range got.Slots {
		counts[slot.SubredditID]++
	}
	for _, sub := range subs {
		if counts[sub.ID] > EffectiveCapacity(sub, policy) {
			t.Fatalf("сабреддит %d превысил ёмкость: %d > %d", sub.ID, counts[sub.ID], EffectiveCapacity(sub, policy))
		}
	}
}

func TestAssignSubredditsInsufficientCapacity(t *testing.T) {
	subs := []domain.Subreddit{
		{ID: 1, Name: "golang", RiskLevel: domain.RiskLow, MaxPostsPerWeek: 2},
		{ID: 2, Name: "programming", RiskLevel: domain.RiskLow, MaxPostsPerWeek: 2},
	}
	got := AssignSubreddits(makeSlots(10), subs, DefaultRiskPolicy(domain.RiskMedium), 42)
	if len(got.Slots) != 4 {
		t.Fatalf("ожидали 4 частичных назначения, получили %d", len(got.Slots))
	}
	if len(got.Errors) != 6 {
		t.Fatalf("ожидали 6 ошибок ёмкости, получили %d", len(got.Errors))
	}
	for _, e := range got.Errors {
		if !strings.HasPrefix(e, "Insufficient") {
			t.Fatalf("ожидали префикс Insufficient, получили %q", e)
		}
	}
}

func TestAssignSubredditsExcludesTooRisky(t *testing.T) {
	subs := []domain.Subreddit{
		{ID: 1, Name: "safe", RiskLevel: domain.RiskLow, MaxPostsPerWeek: 10},
		{ID: 2, Name: "edgy", RiskLevel: domain.RiskHigh, MaxPostsPerWeek: 10},
	}
	got := AssignSubreddits(makeSlots(6), subs, DefaultRiskPolicy(domain.RiskLow), 7)
	for _, slot := range got.Slots {
		if slot.SubredditID == 2 {
			t.Fatalf("сабреддит на два уровня выше толерантности не должен получать слоты")
		}
	}
}

func TestRiskFactorMonotonic(t *testing.T) {
	for _, tolerance := range []domain.RiskLevel{domain.RiskLow, domain.RiskMedium, domain.RiskHigh} {
		policy := DefaultRiskPolicy(tolerance)
		low := policy.RiskFactor(domain.RiskLow)
		medium := policy.RiskFactor(domain.RiskMedium)
		high := policy.RiskFactor(domain.RiskHigh)
		if low < medium || medium < high {
			t.Fatalf("кривая дисконта не монотонна при толерантности %s: %f %f %f", tolerance, low, medium, high)
		}
	}
}

func TestAssignSubredditsDeterminism(t *testing.T) {
	subs := []domain.Subreddit{
		{ID: 1, RiskLevel: domain.RiskLow, MaxPostsPerWeek: 5},
		{ID: 2, RiskLevel: domain.RiskLow, MaxPostsPerWeek: 5},
		{ID: 3, RiskLevel: domain.RiskMedium, MaxPostsPerWeek: 5},
	}
	first := AssignSubreddits(makeSlots(8), subs, DefaultRiskPolicy(domain.RiskMedium), 1234)
	second := AssignSubreddits(makeSlots(8), subs, DefaultRiskPolicy(domain.RiskMedium), 1234)
	for i := range first.Slots {
		if first.Slots[i].SubredditID != second.Slots[i].SubredditID {
			t.Fatalf("ожидали одинаковое назначение в слоте %d", i)
		}
	}
}
