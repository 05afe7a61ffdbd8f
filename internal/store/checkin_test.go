package store

import (
	"testing"
	"time"

	"github.com/rowanvale/ember/internal/database"
	"github.com/rowanvale/ember/internal/model"
)

func setupCheckInTestDB(t *testing.T) (*CheckInStore, *HabitStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCheckInStore(db), NewHabitStore(db), NewUserStore(db)
}

// insertCheckIn writes a raw row for a given day, bypassing the pipeline.
func insertCheckIn(t *testing.T, s *CheckInStore, habitID, userID int64, day time.Time) int64 {
	t.Helper()
	res, err := s.db.Exec(
		`INSERT INTO check_ins (habit_id, user_id, date, completed_at) VALUES (?, ?, ?, ?)`,
		habitID, userID, day.UTC().Format(dateLayout), day.UTC(),
	)
	if err != nil {
		t.Fatalf("insert check-in: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("parse day %q: %v", s, err)
	}
	return d
}

func TestCheckInListByHabitRange(t *testing.T) {
	cs, hs, us := setupCheckInTestDB(t)
	userID := createTestUser(t, us)
	h, _ := hs.Create(userID, "Run", "", model.HabitYesNo, model.ScheduleDaily, "", 0)

	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-01"))
	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-05"))
	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-10"))

	start := day(t, "2026-08-02")
	end := day(t, "2026-08-09")
	checkIns, err := cs.ListByHabit(h.ID, userID, &start, &end)
	if err != nil {
		t.Fatalf("list by habit: %v", err)
	}
	if len(checkIns) != 1 {
		t.Fatalf("len = %d, want 1", len(checkIns))
	}
	if !checkIns[0].Date.Equal(day(t, "2026-08-05")) {
		t.Errorf("date = %v, want 2026-08-05", checkIns[0].Date)
	}
}

func TestCheckInListByHabitNewestFirst(t *testing.T) {
	cs, hs, us := setupCheckInTestDB(t)
	userID := createTestUser(t, us)
	h, _ := hs.Create(userID, "Run", "", model.HabitYesNo, model.ScheduleDaily, "", 0)

	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-01"))
	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-03"))

	checkIns, err := cs.ListByHabit(h.ID, userID, nil, nil)
	if err != nil {
		t.Fatalf("list by habit: %v", err)
	}
	if len(checkIns) != 2 {
		t.Fatalf("len = %d, want 2", len(checkIns))
	}
	if !checkIns[0].Date.After(checkIns[1].Date) {
		t.Error("expected newest first")
	}
}

func TestCheckInDatesByHabitDistinct(t *testing.T) {
	cs, hs, us := setupCheckInTestDB(t)
	userID := createTestUser(t, us)
	h, _ := hs.Create(userID, "Run", "", model.HabitYesNo, model.ScheduleDaily, "", 0)

	// Two entries on the same day collapse to one date.
	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-01"))
	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-01"))
	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-02"))

	dates, err := cs.DatesByHabit(h.ID)
	if err != nil {
		t.Fatalf("dates by habit: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("len = %d, want 2", len(dates))
	}
	if !dates[0].Equal(day(t, "2026-08-02")) {
		t.Errorf("first date = %v, want 2026-08-02", dates[0])
	}
}

func TestCheckInCountDistinctDays(t *testing.T) {
	cs, hs, us := setupCheckInTestDB(t)
	userID := createTestUser(t, us)
	h, _ := hs.Create(userID, "Run", "", model.HabitYesNo, model.ScheduleDaily, "", 0)

	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-01"))
	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-01"))
	insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-03"))

	n, err := cs.CountDistinctDays(h.ID, day(t, "2026-08-01"), day(t, "2026-08-31"))
	if err != nil {
		t.Fatalf("count distinct days: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestCheckInLastDateForUser(t *testing.T) {
	cs, hs, us := setupCheckInTestDB(t)
	userID := createTestUser(t, us)

	last, err := cs.LastDateForUser(userID)
	if err != nil {
		t.Fatalf("last date: %v", err)
	}
	if last != nil {
		t.Error("expected nil with no history")
	}

	h1, _ := hs.Create(userID, "Run", "", model.HabitYesNo, model.ScheduleDaily, "", 0)
	h2, _ := hs.Create(userID, "Read", "", model.HabitYesNo, model.ScheduleDaily, "", 0)
	insertCheckIn(t, cs, h1.ID, userID, day(t, "2026-08-01"))
	insertCheckIn(t, cs, h2.ID, userID, day(t, "2026-08-07"))

	last, err = cs.LastDateForUser(userID)
	if err != nil {
		t.Fatalf("last date: %v", err)
	}
	if last == nil || !last.Equal(day(t, "2026-08-07")) {
		t.Errorf("last = %v, want 2026-08-07", last)
	}
}

func TestCheckInUpdateMeta(t *testing.T) {
	cs, hs, us := setupCheckInTestDB(t)
	userID := createTestUser(t, us)
	h, _ := hs.Create(userID, "Run", "", model.HabitYesNo, model.ScheduleDaily, "", 0)
	id := insertCheckIn(t, cs, h.ID, userID, day(t, "2026-08-01"))

	mood := 9 // clamped to 5
	effort := 3
	updated, err := cs.UpdateMeta(id, userID, "felt great", &mood, &effort)
	if err != nil {
		t.Fatalf("update meta: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated check-in")
	}
	if updated.Note != "felt great" {
		t.Errorf("note = %q, want felt great", updated.Note)
	}
	if updated.Mood == nil || *updated.Mood != 5 {
		t.Errorf("mood = %v, want 5", updated.Mood)
	}
	if updated.Effort == nil || *updated.Effort != 3 {
		t.Errorf("effort = %v, want 3", updated.Effort)
	}
}

func TestCheckInUpdateMetaNotFound(t *testing.T) {
	cs, _, us := setupCheckInTestDB(t)
	userID := createTestUser(t, us)

	updated, err := cs.UpdateMeta(999, userID, "x", nil, nil)
	if err != nil {
		t.Fatalf("update meta: %v", err)
	}
	if updated != nil {
		t.Error("expected nil for missing check-in")
	}
}
