package handler

import (
	"log/slog"
	"net/http"

	"github.com/rowanvale/ember/internal/auth"
	"github.com/rowanvale/ember/internal/model"
	"github.com/rowanvale/ember/internal/store"
)

type ThemeHandler struct {
	themeStore *store.ThemeStore
	userStore  *store.UserStore
	statsStore *store.StatsStore
	logger     *slog.Logger
}

func NewThemeHandler(ts *store.ThemeStore, us *store.UserStore, ss *store.StatsStore, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{themeStore: ts, userStore: us, statsStore: ss, logger: logger}
}

func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themeStore.List()
	if err != nil {
		h.logger.Error("list themes", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list themes"})
		return
	}
	if themes == nil {
		themes = []model.Theme{}
	}
	writeJSON(w, http.StatusOK, themes)
}

// Activate sets the user's active theme. Themes unlock by level, so picking
// one above the user's current level is rejected.
func (h *ThemeHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	theme, err := h.themeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get theme", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to activate theme"})
		return
	}
	if theme == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "theme not found"})
		return
	}

	userID := auth.UserID(r.Context())
	stats, err := h.statsStore.Get(userID)
	if err != nil {
		h.logger.Error("get user stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to activate theme"})
		return
	}
	level := 0
	if stats != nil {
		level = stats.Level
	}
	if level < theme.RequiredLevel {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "theme locked"})
		return
	}

	if err := h.userStore.SetActiveTheme(userID, &theme.ID); err != nil {
		h.logger.Error("set active theme", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to activate theme"})
		return
	}
	writeJSON(w, http.StatusOK, theme)
}
