package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rowanvale/ember/internal/auth"
	"github.com/rowanvale/ember/internal/model"
	"github.com/rowanvale/ember/internal/store"
)

type GroupHandler struct {
	groupStore *store.GroupStore
	logger     *slog.Logger
}

func NewGroupHandler(gs *store.GroupStore, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groupStore: gs, logger: logger}
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	group, err := h.groupStore.Create(req.Name, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("create group", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create group"})
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InviteCode string `json:"invite_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.InviteCode = strings.TrimSpace(req.InviteCode)
	if req.InviteCode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invite_code is required"})
		return
	}

	group, err := h.groupStore.GetByInviteCode(req.InviteCode)
	if err != nil {
		h.logger.Error("get group by invite", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to join group"})
		return
	}
	if group == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invite code not recognized"})
		return
	}

	if err := h.groupStore.AddMember(group.ID, auth.UserID(r.Context())); err != nil {
		h.logger.Error("add group member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to join group"})
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupStore.ListForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list groups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list groups"})
		return
	}
	if groups == nil {
		groups = []model.HabitGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// Leaderboard is visible to members only. Non-members get a 404 so the
// endpoint does not reveal which group IDs exist.
func (h *GroupHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	member, err := h.groupStore.IsMember(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("check membership", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load leaderboard"})
		return
	}
	if !member {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
		return
	}

	entries, err := h.groupStore.Leaderboard(id)
	if err != nil {
		h.logger.Error("load leaderboard", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load leaderboard"})
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
