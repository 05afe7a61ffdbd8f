package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanvale/ember/internal/checkin"
	"github.com/rowanvale/ember/internal/handler"
	"github.com/rowanvale/ember/internal/middleware"
	"github.com/rowanvale/ember/internal/store"
	ws "github.com/rowanvale/ember/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	habitH       *handler.HabitHandler
	checkInH     *handler.CheckInHandler
	statsH       *handler.StatsHandler
	themeH       *handler.ThemeHandler
	groupH       *handler.GroupHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	habitStore := store.NewHabitStore(db)
	checkInStore := store.NewCheckInStore(db)
	statsStore := store.NewStatsStore(db)
	themeStore := store.NewThemeStore(db)
	groupStore := store.NewGroupStore(db)

	pipeline := checkin.NewPipeline(db, logger.With("component", "pipeline"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		habitH:       handler.NewHabitHandler(habitStore, logger.With("component", "habit")),
		checkInH:     handler.NewCheckInHandler(pipeline, checkInStore, habitStore, hub, logger.With("component", "check_in")),
		statsH:       handler.NewStatsHandler(habitStore, checkInStore, statsStore, logger.With("component", "stats")),
		themeH:       handler.NewThemeHandler(themeStore, userStore, statsStore, logger.With("component", "theme")),
		groupH:       handler.NewGroupHandler(groupStore, logger.With("component", "group")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Habit routes
	mux.HandleFunc("POST /api/habits", s.habitH.Create)
	mux.HandleFunc("GET /api/habits", s.habitH.List)
	mux.HandleFunc("GET /api/habits/{id}", s.habitH.Get)
	mux.HandleFunc("PUT /api/habits/{id}", s.habitH.Update)
	mux.HandleFunc("DELETE /api/habits/{id}", s.habitH.Delete)

	// Check-in routes
	mux.HandleFunc("POST /api/check-ins", s.checkInH.Create)
	mux.HandleFunc("GET /api/check-ins/today", s.checkInH.Today)
	mux.HandleFunc("GET /api/check-ins/habit/{id}", s.checkInH.ListByHabit)
	mux.HandleFunc("PUT /api/check-ins/{id}", s.checkInH.Update)

	// Stats routes
	mux.HandleFunc("GET /api/stats/overview", s.statsH.Overview)
	mux.HandleFunc("GET /api/stats/habit/{id}", s.statsH.Habit)
	mux.HandleFunc("GET /api/stats/weekly-review", s.statsH.WeeklyReview)
	mux.HandleFunc("GET /api/stats/restart-check", s.statsH.RestartCheck)
	mux.HandleFunc("POST /api/stats/restart-ack", s.statsH.RestartAck)

	// Theme routes
	mux.HandleFunc("GET /api/themes", s.themeH.List)
	mux.HandleFunc("POST /api/themes/{id}/activate", s.themeH.Activate)

	// Group routes
	mux.HandleFunc("POST /api/groups", s.groupH.Create)
	mux.HandleFunc("POST /api/groups/join", s.groupH.Join)
	mux.HandleFunc("GET /api/groups", s.groupH.List)
	mux.HandleFunc("GET /api/groups/{id}/leaderboard", s.groupH.Leaderboard)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
