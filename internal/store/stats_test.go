package store

import (
	"testing"
	"time"

	"github.com/rowanvale/ember/internal/database"
)

func setupStatsTestDB(t *testing.T) (*StatsStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStatsStore(db), NewUserStore(db)
}

func TestStatsGetNoRow(t *testing.T) {
	ss, us := setupStatsTestDB(t)
	userID := createTestUser(t, us)

	st, err := ss.Get(userID)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if st != nil {
		t.Error("expected nil before any check-in")
	}
}

func TestStatsSetRestartAckCreatesRow(t *testing.T) {
	ss, us := setupStatsTestDB(t)
	userID := createTestUser(t, us)

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	if err := ss.SetRestartAck(userID, day); err != nil {
		t.Fatalf("set restart ack: %v", err)
	}

	st, err := ss.Get(userID)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if st == nil {
		t.Fatal("expected stats row after ack")
	}
	if st.RestartAckedOn == nil || !st.RestartAckedOn.Equal(day) {
		t.Errorf("restart_acked_on = %v, want %v", st.RestartAckedOn, day)
	}
	if st.TotalXP != 0 || st.CurrentStreak != 0 {
		t.Error("expected zero aggregates on an ack-only row")
	}
}

func TestStatsSetRestartAckOverwrites(t *testing.T) {
	ss, us := setupStatsTestDB(t)
	userID := createTestUser(t, us)

	first := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if err := ss.SetRestartAck(userID, first); err != nil {
		t.Fatalf("set restart ack: %v", err)
	}
	if err := ss.SetRestartAck(userID, second); err != nil {
		t.Fatalf("set restart ack: %v", err)
	}

	st, _ := ss.Get(userID)
	if st.RestartAckedOn == nil || !st.RestartAckedOn.Equal(second) {
		t.Errorf("restart_acked_on = %v, want %v", st.RestartAckedOn, second)
	}
}
