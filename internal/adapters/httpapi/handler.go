package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"promo-planner/internal/domain"
	"promo-planner/internal/usecase/moderation"
)

// Handler обслуживает HTTP API планировщика: постановка задач на
// перегенерацию недели, чтение календаря и ручная валидация текстов.
type Handler struct {
	projects   domain.ProjectRepo
	calendar   domain.CalendarRepo
	queue      domain.PlanQueue
	validator  *moderation.Engine
	moderation moderation.Options
	log        zerolog.Logger
}

// NewHandler создаёт обработчик API.
func NewHandler(projects domain.ProjectRepo, calendar domain.CalendarRepo, queue domain.PlanQueue, validator *moderation.Engine, moderationOpts moderation.Options, logger zerolog.Logger) *Handler {
	return &Handler{
		projects:   projects,
		calendar:   calendar,
		queue:      queue,
		validator:  validator,
		moderation: moderationOpts,
		log:        logger,
	}
}

// Register добавляет маршруты в роутер.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/projects/{id}/plan", h.enqueuePlan)
	r.Get("/api/v1/projects/{id}/calendar", h.getCalendar)
	r.Post("/api/v1/validate", h.validateContent)
}

type enqueuePlanRequest struct {
	WeekStart    string `json:"week_start"`
	PostsPerWeek int    `json:"posts_per_week,omitempty"`
}

type enqueuePlanResponse struct {
	JobID     string `json:"job_id"`
	WeekStart string `json:"week_start"`
}

func (h *Handler) enqueuePlan(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	defer r.Body.Close()
	var req enqueuePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PostsPerWeek < 0 {
		writeError(w, http.StatusBadRequest, "posts_per_week must not be negative")
		return
	}

	project, err := h.projects.GetProject(projectID)
	if errors.Is(err, domain.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("project_id", projectID).Msg("api: получение проекта")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !project.Active {
		writeError(w, http.StatusConflict, "project is not active")
		return
	}

	job := domain.PlanJob{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		WeekStart:    weekStart,
		PostsPerWeek: req.PostsPerWeek,
		RequestedAt:  time.Now().UTC(),
		Cause:        domain.PlanCauseManual,
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.queue.Enqueue(ctx, job); err != nil {
		h.log.Error().Err(err).Int64("project_id", projectID).Msg("api: постановка задачи планирования")
		writeError(w, http.StatusInternalServerError, "failed to enqueue plan job")
		return
	}

	writeJSONStatus(w, http.StatusAccepted, enqueuePlanResponse{JobID: job.ID, WeekStart: weekStart.Format("2006-01-02")})
}

type calendarItemResponse struct {
	ID          int64               `json:"id"`
	SlotIndex   int                 `json:"slot_index"`
	ScheduledAt time.Time           `json:"scheduled_at"`
	DayOfWeek   int                 `json:"day_of_week"`
	SubredditID int64               `json:"subreddit_id"`
	PersonaID   int64               `json:"persona_id"`
	TopicID     int64               `json:"topic_id"`
	Thread      []domain.ThreadSlot `json:"thread"`
}

type calendarResponse struct {
	ProjectID int64                  `json:"project_id"`
	WeekStart string                 `json:"week_start"`
	Items     []calendarItemResponse `json:"items"`
}

func (h *Handler) getCalendar(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	weekStart, err := parseWeekStart(r.URL.Query().Get("week_start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.calendar.GetWeek(projectID, weekStart)
	if err != nil {
		h.log.Error().Err(err).Int64("project_id", projectID).Msg("api: чтение календаря")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := calendarResponse{
		ProjectID: projectID,
		WeekStart: weekStart.Format("2006-01-02"),
		Items:     make([]calendarItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, calendarItemResponse{
			ID:          item.ID,
			SlotIndex:   item.Slot.Index,
			ScheduledAt: item.Slot.ScheduledAt,
			DayOfWeek:   item.Slot.DayOfWeek,
			SubredditID: item.Slot.SubredditID,
			PersonaID:   item.Slot.PersonaID,
			TopicID:     item.Slot.TopicID,
			Thread:      item.Thread.Slots,
		})
	}
	writeJSON(w, resp)
}

type validateRequest struct {
	Title  string `json:"title,omitempty"`
	Body   string `json:"body"`
	Strict bool   `json:"strict,omitempty"`
}

func (h *Handler) validateContent(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	opts := h.moderation
	if req.Strict {
		opts.Strict = true
	}
	verdict := h.validator.Validate(moderation.Content{Title: req.Title, Body: req.Body}, opts)
	writeJSON(w, verdict)
}

func parseWeekStart(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("week_start is required")
	}
	weekStart, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("week_start must be a date in YYYY-MM-DD format")
	}
	return weekStart, nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONStatus(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
