package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rowanvale/ember/internal/model"
)

type GroupStore struct {
	db *sql.DB
}

func NewGroupStore(db *sql.DB) *GroupStore {
	return &GroupStore{db: db}
}

func scanGroup(scanner interface{ Scan(...any) error }) (*model.HabitGroup, error) {
	var g model.HabitGroup
	err := scanner.Scan(&g.ID, &g.Name, &g.OwnerID, &g.InviteCode, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

const groupCols = `id, name, owner_id, invite_code, created_at`

// Create makes a group with a fresh invite code and enrolls the owner.
func (s *GroupStore) Create(name string, ownerID int64) (*model.HabitGroup, error) {
	code := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO habit_groups (name, owner_id, invite_code) VALUES (?, ?, ?)`,
		name, ownerID, code,
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO habit_group_members (group_id, user_id) VALUES (?, ?)`,
		id, ownerID,
	); err != nil {
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetByID(id)
}

func (s *GroupStore) GetByID(id int64) (*model.HabitGroup, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM habit_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *GroupStore) GetByInviteCode(code string) (*model.HabitGroup, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM habit_groups WHERE invite_code = ?`, code)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group by invite: %w", err)
	}
	return g, nil
}

// AddMember enrolls a user; joining twice is a no-op.
func (s *GroupStore) AddMember(groupID, userID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO habit_group_members (group_id, user_id) VALUES (?, ?)
		 ON CONFLICT(group_id, user_id) DO NOTHING`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *GroupStore) IsMember(groupID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM habit_group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return n > 0, nil
}

func (s *GroupStore) ListForUser(userID int64) ([]model.HabitGroup, error) {
	rows, err := s.db.Query(
		`SELECT g.id, g.name, g.owner_id, g.invite_code, g.created_at
		 FROM habit_groups g
		 JOIN habit_group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []model.HabitGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// Leaderboard ranks group members by total XP. Members without a stats row
// yet rank at the bottom with zeros.
func (s *GroupStore) Leaderboard(groupID int64) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.name,
		        COALESCE(st.total_xp, 0), COALESCE(st.level, 0), COALESCE(st.current_streak, 0)
		 FROM habit_group_members m
		 JOIN users u ON u.id = m.user_id
		 LEFT JOIN user_stats st ON st.user_id = u.id
		 WHERE m.group_id = ?
		 ORDER BY COALESCE(st.total_xp, 0) DESC, u.name ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalXP, &e.Level, &e.CurrentStreak); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
