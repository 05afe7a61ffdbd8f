package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanvale/ember/internal/auth"
	"github.com/rowanvale/ember/internal/checkin"
	"github.com/rowanvale/ember/internal/model"
	"github.com/rowanvale/ember/internal/schedule"
	"github.com/rowanvale/ember/internal/store"
	"github.com/rowanvale/ember/internal/websocket"
)

type CheckInHandler struct {
	pipeline     *checkin.Pipeline
	checkInStore *store.CheckInStore
	habitStore   *store.HabitStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewCheckInHandler(p *checkin.Pipeline, cs *store.CheckInStore, hs *store.HabitStore, hub *websocket.Hub, logger *slog.Logger) *CheckInHandler {
	return &CheckInHandler{pipeline: p, checkInStore: cs, habitStore: hs, hub: hub, logger: logger}
}

func (h *CheckInHandler) broadcast(userID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(userID, msg)
	}
}

func (h *CheckInHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkin.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.HabitID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "habit_id is required"})
		return
	}

	userID := auth.UserID(r.Context())
	result, err := h.pipeline.Submit(userID, req)
	if errors.Is(err, checkin.ErrHabitNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}
	if err != nil {
		h.logger.Error("submit check-in", "error", err, "habit_id", req.HabitID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record check-in"})
		return
	}

	h.broadcast(userID, websocket.NewMessage("check_in", "created", result.CheckIn.ID, map[string]any{
		"habit_id":   result.CheckIn.HabitID,
		"streak":     result.Streak,
		"xp_awarded": result.XPAwarded,
		"level":      result.Stats.Level,
	}))

	writeJSON(w, http.StatusCreated, result)
}

func (h *CheckInHandler) Today(w http.ResponseWriter, r *http.Request) {
	today := schedule.StartOfDayUTC(time.Now())
	checkIns, err := h.checkInStore.ListForDay(auth.UserID(r.Context()), today)
	if err != nil {
		h.logger.Error("list today's check-ins", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list check-ins"})
		return
	}
	if checkIns == nil {
		checkIns = []model.CheckIn{}
	}
	writeJSON(w, http.StatusOK, checkIns)
}

func (h *CheckInHandler) ListByHabit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	habit, err := h.habitStore.GetForUser(id, userID)
	if err != nil {
		h.logger.Error("get habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get habit"})
		return
	}
	if habit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}

	start, err := parseDateParam(r, "start_date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date must be yyyy-mm-dd"})
		return
	}
	end, err := parseDateParam(r, "end_date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must be yyyy-mm-dd"})
		return
	}

	checkIns, err := h.checkInStore.ListByHabit(id, userID, start, end)
	if err != nil {
		h.logger.Error("list check-ins", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list check-ins"})
		return
	}
	if checkIns == nil {
		checkIns = []model.CheckIn{}
	}
	writeJSON(w, http.StatusOK, checkIns)
}

// Update edits note/mood/effort only. Derived streak/strength/XP state is
// never recomputed here.
func (h *CheckInHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Note   string `json:"note"`
		Mood   *int   `json:"mood"`
		Effort *int   `json:"effort"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	updated, err := h.checkInStore.UpdateMeta(id, auth.UserID(r.Context()), req.Note, req.Mood, req.Effort)
	if err != nil {
		h.logger.Error("update check-in", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update check-in"})
		return
	}
	if updated == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "check-in not found"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
