package store

import (
	"testing"

	"github.com/rowanvale/ember/internal/database"
)

func setupGroupTestDB(t *testing.T) (*GroupStore, *UserStore, *StatsStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGroupStore(db), NewUserStore(db), NewStatsStore(db)
}

func TestGroupCreateEnrollsOwner(t *testing.T) {
	gs, us, _ := setupGroupTestDB(t)
	owner := createTestUser(t, us)

	g, err := gs.Create("Morning Crew", owner)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if g.InviteCode == "" {
		t.Error("expected non-empty invite code")
	}

	member, err := gs.IsMember(g.ID, owner)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if !member {
		t.Error("expected owner enrolled on create")
	}
}

func TestGroupJoinByInviteCode(t *testing.T) {
	gs, us, _ := setupGroupTestDB(t)
	owner := createTestUser(t, us)
	bob, _ := us.Create("bob@example.com", "Bob", "h")

	g, _ := gs.Create("Morning Crew", owner)

	found, err := gs.GetByInviteCode(g.InviteCode)
	if err != nil {
		t.Fatalf("get by invite: %v", err)
	}
	if found == nil || found.ID != g.ID {
		t.Fatal("expected group by invite code")
	}

	if err := gs.AddMember(g.ID, bob.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	// Joining twice is a no-op.
	if err := gs.AddMember(g.ID, bob.ID); err != nil {
		t.Fatalf("re-add member: %v", err)
	}

	groups, err := gs.ListForUser(bob.ID)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("len = %d, want 1", len(groups))
	}
}

func TestGroupGetByInviteCodeNotFound(t *testing.T) {
	gs, _, _ := setupGroupTestDB(t)

	g, err := gs.GetByInviteCode("no-such-code")
	if err != nil {
		t.Fatalf("get by invite: %v", err)
	}
	if g != nil {
		t.Error("expected nil for unknown invite code")
	}
}

func TestGroupLeaderboardOrdersByXP(t *testing.T) {
	gs, us, ss := setupGroupTestDB(t)
	owner := createTestUser(t, us)
	bob, _ := us.Create("bob@example.com", "Bob", "h")

	g, _ := gs.Create("Morning Crew", owner)
	if err := gs.AddMember(g.ID, bob.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}

	// Give Bob a stats row with XP; the owner has none and ranks with zeros.
	if _, err := ss.db.Exec(
		`INSERT INTO user_stats (user_id, current_streak, longest_streak, total_check_ins, total_xp, level)
		 VALUES (?, 3, 5, 12, 150, 1)`,
		bob.ID,
	); err != nil {
		t.Fatalf("insert stats: %v", err)
	}

	entries, err := gs.Leaderboard(g.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].UserID != bob.ID {
		t.Errorf("first = %d, want %d", entries[0].UserID, bob.ID)
	}
	if entries[0].TotalXP != 150 {
		t.Errorf("total_xp = %d, want 150", entries[0].TotalXP)
	}
	if entries[1].TotalXP != 0 {
		t.Errorf("owner total_xp = %d, want 0", entries[1].TotalXP)
	}
}
