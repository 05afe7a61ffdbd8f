package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rowanvale/ember/internal/auth"
	"github.com/rowanvale/ember/internal/model"
	"github.com/rowanvale/ember/internal/schedule"
	"github.com/rowanvale/ember/internal/store"
)

type HabitHandler struct {
	habitStore *store.HabitStore
	logger     *slog.Logger
}

func NewHabitHandler(hs *store.HabitStore, logger *slog.Logger) *HabitHandler {
	return &HabitHandler{habitStore: hs, logger: logger}
}

type habitRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	HabitType    string `json:"habit_type"`
	ScheduleType string `json:"schedule_type"`
	ScheduleDays string `json:"schedule_days"`
	TimesPerWeek int    `json:"times_per_week"`
}

// validate normalizes the request in place, returning a client-facing error
// message or "".
func (req *habitRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}

	switch model.HabitType(req.HabitType) {
	case model.HabitYesNo, model.HabitCount, model.HabitDuration:
	case "":
		req.HabitType = string(model.HabitYesNo)
	default:
		return "habit_type must be yes_no, count, or duration"
	}

	switch model.ScheduleType(req.ScheduleType) {
	case "":
		req.ScheduleType = string(model.ScheduleDaily)
	case model.ScheduleDaily:
	case model.ScheduleSpecificDays:
		days, err := schedule.ParseDays(req.ScheduleDays)
		if err != nil || len(days) == 0 {
			return "schedule_days must be weekday indices 0-6, e.g. \"1,3,5\""
		}
		req.ScheduleDays = schedule.FormatDays(days)
	case model.ScheduleTimesPerWeek:
		if req.TimesPerWeek < 1 || req.TimesPerWeek > 7 {
			return "times_per_week must be between 1 and 7"
		}
	default:
		return "schedule_type must be daily, specific_days, or times_per_week"
	}

	if model.ScheduleType(req.ScheduleType) != model.ScheduleSpecificDays {
		req.ScheduleDays = ""
	}
	if model.ScheduleType(req.ScheduleType) != model.ScheduleTimesPerWeek {
		req.TimesPerWeek = 0
	}
	return ""
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	habit, err := h.habitStore.Create(
		auth.UserID(r.Context()), req.Title, req.Description,
		model.HabitType(req.HabitType), model.ScheduleType(req.ScheduleType),
		req.ScheduleDays, req.TimesPerWeek,
	)
	if err != nil {
		h.logger.Error("create habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create habit"})
		return
	}

	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	habits, err := h.habitStore.ListActiveByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list habits", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list habits"})
		return
	}
	if habits == nil {
		habits = []model.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	habit, err := h.habitStore.GetForUser(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get habit"})
		return
	}
	if habit == nil || !habit.IsActive {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	existing, err := h.habitStore.GetForUser(id, userID)
	if err != nil {
		h.logger.Error("get habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get habit"})
		return
	}
	if existing == nil || !existing.IsActive {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}

	var req habitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	habit, err := h.habitStore.Update(
		id, userID, req.Title, req.Description,
		model.HabitType(req.HabitType), model.ScheduleType(req.ScheduleType),
		req.ScheduleDays, req.TimesPerWeek,
	)
	if err != nil {
		h.logger.Error("update habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update habit"})
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	existing, err := h.habitStore.GetForUser(id, userID)
	if err != nil {
		h.logger.Error("get habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get habit"})
		return
	}
	if existing == nil || !existing.IsActive {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}

	// Soft delete: the habit disappears from lists but its check-in history
	// keeps feeding historical stats.
	if err := h.habitStore.SoftDelete(id, userID); err != nil {
		h.logger.Error("delete habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete habit"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
