package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanvale/ember/internal/auth"
	"github.com/rowanvale/ember/internal/model"
	"github.com/rowanvale/ember/internal/progress"
	"github.com/rowanvale/ember/internal/schedule"
	"github.com/rowanvale/ember/internal/store"
)

// statsWindowDays is the trailing window for the per-habit stats endpoint.
const statsWindowDays = 30

type StatsHandler struct {
	habitStore   *store.HabitStore
	checkInStore *store.CheckInStore
	statsStore   *store.StatsStore
	logger       *slog.Logger
}

func NewStatsHandler(hs *store.HabitStore, cs *store.CheckInStore, ss *store.StatsStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{habitStore: hs, checkInStore: cs, statsStore: ss, logger: logger}
}

// Overview returns the user's aggregate XP/level/streak numbers alongside the
// cached per-habit streaks.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	stats, err := h.statsStore.Get(userID)
	if err != nil {
		h.logger.Error("get user stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	habits, err := h.habitStore.ListActiveByUser(userID)
	if err != nil {
		h.logger.Error("list habits", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	overview := model.Overview{Habits: make([]model.HabitStreak, 0, len(habits))}
	if stats != nil {
		overview.TotalXP = stats.TotalXP
		overview.Level = stats.Level
		overview.CurrentStreak = stats.CurrentStreak
		overview.LongestStreak = stats.LongestStreak
		overview.TotalCheckIns = stats.TotalCheckIns
	}
	for _, habit := range habits {
		overview.Habits = append(overview.Habits, model.HabitStreak{
			HabitID: habit.ID,
			Title:   habit.Title,
			Streak:  habit.Streak,
		})
	}

	writeJSON(w, http.StatusOK, overview)
}

// Habit recomputes a single habit's stats on demand over the trailing 30
// days: streak, consistency, additive strength, best weekday, and a per-day
// heatmap.
func (h *StatsHandler) Habit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	habit, err := h.habitStore.GetForUser(id, userID)
	if err != nil {
		h.logger.Error("get habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load habit stats"})
		return
	}
	if habit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}

	today := schedule.StartOfDayUTC(time.Now())
	windowStart := today.AddDate(0, 0, -(statsWindowDays - 1))

	dates, err := h.checkInStore.DatesByHabit(id)
	if err != nil {
		h.logger.Error("list check-in dates", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load habit stats"})
		return
	}

	completed, err := h.checkInStore.CountDistinctDays(id, windowStart, today)
	if err != nil {
		h.logger.Error("count check-in days", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load habit stats"})
		return
	}

	expected := schedule.CountExpected(*habit, windowStart, today)
	missed := expected - completed
	if missed < 0 {
		missed = 0
	}

	stats := model.HabitStats{
		HabitID:     habit.ID,
		Title:       habit.Title,
		Streak:      progress.CurrentStreak(dates, today),
		Consistency: progress.Consistency(completed, expected),
		Strength:    progress.StrengthAdditive(completed, missed),
		Heatmap:     make(map[string]int),
	}

	if best, ok := progress.BestWeekday(dates); ok {
		b := int(best)
		stats.BestWeekday = &b
	}

	checkIns, err := h.checkInStore.ListByHabit(id, userID, &windowStart, &today)
	if err != nil {
		h.logger.Error("list check-ins", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load habit stats"})
		return
	}
	// Presence flags, not counts: duplicate same-day check-ins collapse to 1.
	for _, c := range checkIns {
		stats.Heatmap[c.Date.Format("2006-01-02")] = 1
	}

	writeJSON(w, http.StatusOK, stats)
}

// WeeklyReview summarizes the trailing seven days across all active habits
// and attaches generated insight lines.
func (h *StatsHandler) WeeklyReview(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	today := schedule.StartOfDayUTC(time.Now())
	windowStart := today.AddDate(0, 0, -6)

	habits, err := h.habitStore.ListActiveByUser(userID)
	if err != nil {
		h.logger.Error("list habits", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build weekly review"})
		return
	}

	review := model.WeeklyReview{
		WindowStart: windowStart,
		WindowEnd:   today,
		Habits:      make([]model.HabitWeekSummary, 0, len(habits)),
	}
	for _, habit := range habits {
		completed, err := h.checkInStore.CountDistinctDays(habit.ID, windowStart, today)
		if err != nil {
			h.logger.Error("count check-in days", "error", err, "habit_id", habit.ID)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build weekly review"})
			return
		}
		expected := schedule.CountExpected(habit, windowStart, today)
		review.Habits = append(review.Habits, model.HabitWeekSummary{
			HabitID:     habit.ID,
			Title:       habit.Title,
			Completed:   completed,
			Expected:    expected,
			Consistency: progress.Consistency(completed, expected),
		})
		review.TotalCompleted += completed
		review.TotalExpected += expected
	}
	review.OverallConsistency = progress.Consistency(review.TotalCompleted, review.TotalExpected)
	review.Insights = progress.Insights(review.Habits)

	writeJSON(w, http.StatusOK, review)
}

// RestartCheck reports whether the re-engagement prompt should be shown.
// Acknowledging the prompt suppresses it until the gap grows past the
// acknowledged day again.
func (h *StatsHandler) RestartCheck(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	today := schedule.StartOfDayUTC(time.Now())

	last, err := h.checkInStore.LastDateForUser(userID)
	if err != nil {
		h.logger.Error("last check-in date", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check restart state"})
		return
	}

	stats, err := h.statsStore.Get(userID)
	if err != nil {
		h.logger.Error("get user stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check restart state"})
		return
	}

	// The ack date counts as activity for prompt purposes, so dismissing the
	// prompt resets the three-day clock.
	effective := last
	if stats != nil && stats.RestartAckedOn != nil {
		if effective == nil || stats.RestartAckedOn.After(*effective) {
			effective = stats.RestartAckedOn
		}
	}

	resp := map[string]any{
		"prompt": progress.ShouldPromptRestart(effective, today),
	}
	if last != nil {
		resp["last_check_in"] = last.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, resp)
}

// RestartAck records that the user dismissed the re-engagement prompt today.
func (h *StatsHandler) RestartAck(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	today := schedule.StartOfDayUTC(time.Now())

	if err := h.statsStore.SetRestartAck(userID, today); err != nil {
		h.logger.Error("set restart ack", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to acknowledge restart"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
