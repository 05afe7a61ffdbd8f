package store

import (
	"testing"

	"github.com/rowanvale/ember/internal/database"
)

func setupUserTestDB(t *testing.T) (*UserStore, *ThemeStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db), NewThemeStore(db)
}

func TestUserCreate(t *testing.T) {
	us, _ := setupUserTestDB(t)

	u, err := us.Create("alice@example.com", "Alice", "hashed-password")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected non-zero id")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", u.Email)
	}
	if u.Name != "Alice" {
		t.Errorf("name = %q, want Alice", u.Name)
	}
	if u.ActiveThemeID != nil {
		t.Error("expected no active theme on a fresh user")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us, _ := setupUserTestDB(t)

	if _, err := us.Create("alice@example.com", "Alice", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("alice@example.com", "Alice Again", "h"); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us, _ := setupUserTestDB(t)

	created, _ := us.Create("alice@example.com", "Alice", "h")

	u, err := us.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.ID != created.ID {
		t.Errorf("id = %d, want %d", u.ID, created.ID)
	}

	missing, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserSetActiveTheme(t *testing.T) {
	us, ts := setupUserTestDB(t)

	if err := ts.SeedPresets(); err != nil {
		t.Fatalf("seed themes: %v", err)
	}
	themes, err := ts.List()
	if err != nil {
		t.Fatalf("list themes: %v", err)
	}
	if len(themes) == 0 {
		t.Fatal("expected seeded themes")
	}

	u, _ := us.Create("alice@example.com", "Alice", "h")
	if err := us.SetActiveTheme(u.ID, &themes[0].ID); err != nil {
		t.Fatalf("set active theme: %v", err)
	}

	got, _ := us.GetByID(u.ID)
	if got.ActiveThemeID == nil || *got.ActiveThemeID != themes[0].ID {
		t.Errorf("active theme = %v, want %d", got.ActiveThemeID, themes[0].ID)
	}
}
