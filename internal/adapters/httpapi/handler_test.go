package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"promo-planner/internal/domain"
	"promo-planner/internal/usecase/moderation"
)

type stubProjects struct {
	project domain.Project
	err     error
}

func (s *stubProjects) GetProject(int64) (domain.Project, error) {
	return s.project, s.err
}

func (s *stubProjects) ListActiveProjects() ([]domain.Project, error) {
	return []domain.Project{s.project}, s.err
}

type stubCalendar struct {
	items []domain.CalendarItem
}

func (s *stubCalendar) ReplaceWeek(int64, time.Time, []domain.CalendarItem) ([]domain.CalendarItem, error) {
	return nil, nil
}

func (s *stubCalendar) GetWeek(int64, time.Time) ([]domain.CalendarItem, error) {
	return s.items, nil
}

func (s *stubCalendar) SaveAsset(domain.ContentAsset) (int64, error) {
	return 0, nil
}

type stubQueue struct {
	jobs []domain.PlanJob
	err  error
}

func (s *stubQueue) Enqueue(_ context.Context, job domain.PlanJob) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *stubQueue) Pop(context.Context) (domain.PlanJob, error) {
	return domain.PlanJob{}, nil
}

func newTestRouter(projects *stubProjects, calendar *stubCalendar, queue *stubQueue) chi.Router {
	h := NewHandler(projects, calendar, queue, moderation.NewEngine(), moderation.Options{}, zerolog.Nop())
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestEnqueuePlan(t *testing.T) {
	projects := &stubProjects{project: domain.Project{ID: 7, Active: true}}
	queue := &stubQueue{}
	r := newTestRouter(projects, &stubCalendar{}, queue)

	body := strings.NewReader(`{"week_start":"2024-01-08","posts_per_week":5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/7/plan", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("ожидали 202, получили %d: %s", rec.Code, rec.Body.String())
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("ожидали одну задачу в очереди, получили %d", len(queue.jobs))
	}
	job := queue.jobs[0]
	if job.ID == "" {
		t.Fatalf("ожидали сгенерированный ID задачи")
	}
	if job.ProjectID != 7 || job.PostsPerWeek != 5 {
		t.Fatalf("неожиданная задача: %+v", job)
	}
	if job.Cause != domain.PlanCauseManual {
		t.Fatalf("ожидали причину manual, получили %s", job.Cause)
	}
	if !job.WeekStart.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("неожиданное начало недели: %s", job.WeekStart)
	}
}

func TestEnqueuePlanValidation(t *testing.T) {
	projects := &stubProjects{project: domain.Project{ID: 7, Active: true}}
	r := newTestRouter(projects, &stubCalendar{}, &stubQueue{})

	cases := []struct {
		name string
		body string
		code int
	}{
		{"без недели", `{}`, http.StatusBadRequest},
		{"кривая дата", `{"week_start":"08.01.2024"}`, http.StatusBadRequest},
		{"отрицательное количество", `{"week_start":"2024-01-08","posts_per_week":-1}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/7/plan", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.code {
			t.Fatalf("%s: ожидали %d, получили %d", tc.name, tc.code, rec.Code)
		}
	}
}

func TestEnqueuePlanProjectChecks(t *testing.T) {
	r := newTestRouter(&stubProjects{err: domain.ErrProjectNotFound}, &stubCalendar{}, &stubQueue{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/7/plan", strings.NewReader(`{"week_start":"2024-01-08"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ожидали 404 для отсутствующего проекта, получили %d", rec.Code)
	}

	r = newTestRouter(&stubProjects{project: domain.Project{ID: 7, Active: false}}, &stubCalendar{}, &stubQueue{})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/projects/7/plan", strings.NewReader(`{"week_start":"2024-01-08"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("ожидали 409 для неактивного проекта, получили %d", rec.Code)
	}
}

func TestGetCalendar(t *testing.T) {
	scheduled := time.Date(2024, 1, 9, 14, 30, 0, 0, time.UTC)
	calendar := &stubCalendar{items: []domain.CalendarItem{{
		ID: 42,
		Slot: domain.AssignedSlot{
			PostSlot:    domain.PostSlot{Index: 0, ScheduledAt: scheduled, DayOfWeek: 1},
			SubredditID: 3,
			PersonaID:   5,
			TopicID:     9,
		},
		Thread: domain.ThreadPlan{Slots: []domain.ThreadSlot{{Index: 0, AssetType: domain.AssetPost, PersonaID: 5, ThreadRole: domain.RoleOP}}},
	}}}
	r := newTestRouter(&stubProjects{}, calendar, &stubQueue{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/7/calendar?week_start=2024-01-08", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d: %s", rec.Code, rec.Body.String())
	}
	var resp calendarResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("распаковка ответа: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("ожидали один элемент, получили %d", len(resp.Items))
	}
	item := resp.Items[0]
	if item.ID != 42 || item.SubredditID != 3 || item.PersonaID != 5 || item.TopicID != 9 {
		t.Fatalf("неожиданный элемент календаря: %+v", item)
	}
	if len(item.Thread) != 1 {
		t.Fatalf("ожидали план треда в ответе")
	}
}

func TestValidateContent(t *testing.T) {
	r := newTestRouter(&stubProjects{}, &stubCalendar{}, &stubQueue{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader(`{"body":"Please upvote this post!"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	var verdict domain.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("распаковка вердикта: %v", err)
	}
	if verdict.Valid {
		t.Fatalf("ожидали невалидный вердикт для накрутки голосов")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидали 400 для пустого тела, получили %d", rec.Code)
	}
}

func TestValidateContentStrictMode(t *testing.T) {
	r := newTestRouter(&stubProjects{}, &stubCalendar{}, &stubQueue{})

	payload := `{"body":"Check this out: https://bit.ly/abc","strict":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var verdict domain.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("распаковка вердикта: %v", err)
	}
	if verdict.Valid {
		t.Fatalf("в строгом режиме сокращатель ссылок должен давать ошибку")
	}
}
