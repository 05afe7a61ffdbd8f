package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rowanvale/ember/internal/database"
	"github.com/rowanvale/ember/internal/logging"
	"github.com/rowanvale/ember/internal/server"
	"github.com/rowanvale/ember/internal/store"
)

func main() {
	port := os.Getenv("EMBER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("EMBER_DB_PATH")
	if dbPath == "" {
		dbPath = "ember.db"
	}

	logger := logging.Setup(os.Getenv("EMBER_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := store.NewThemeStore(db).SeedPresets(); err != nil {
		log.Fatalf("failed to seed themes: %v", err)
	}

	srv := server.New(db, logger)

	// Periodic cleanup of expired sessions and stale rate-limit windows.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("ember listening", "port", port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
