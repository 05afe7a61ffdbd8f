package middleware

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rowanvale/ember/internal/auth"
	"github.com/rowanvale/ember/internal/database"
	"github.com/rowanvale/ember/internal/store"
)

func setupAuthTest(t *testing.T) (*sql.DB, *store.SessionStore, string, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := store.NewUserStore(db).Create("alice@example.com", "Alice", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	ss := store.NewSessionStore(db)
	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return db, ss, sess.Token, u.ID
}

// echoHandler writes the authenticated user ID so tests can assert on it.
func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%d", auth.UserID(r.Context()))
	})
}

func TestRequireAuthValidBearer(t *testing.T) {
	_, ss, token, userID := setupAuthTest(t)
	handler := RequireAuth(ss)(echoHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != fmt.Sprintf("%d", userID) {
		t.Errorf("body = %q, want user id %d", got, userID)
	}
}

func TestRequireAuthQueryParamFallback(t *testing.T) {
	_, ss, token, _ := setupAuthTest(t)
	handler := RequireAuth(ss)(echoHandler())

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuthMissingToken(t *testing.T) {
	_, ss, _, _ := setupAuthTest(t)
	handler := RequireAuth(ss)(echoHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	_, ss, _, _ := setupAuthTest(t)
	handler := RequireAuth(ss)(echoHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	db, ss, token, _ := setupAuthTest(t)

	if _, err := db.Exec(
		`UPDATE sessions SET expires_at = ? WHERE token = ?`,
		time.Now().UTC().Add(-time.Hour), token,
	); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	handler := RequireAuth(ss)(echoHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
