package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanvale/ember/internal/model"
)

type HabitStore struct {
	db *sql.DB
}

func NewHabitStore(db *sql.DB) *HabitStore {
	return &HabitStore{db: db}
}

func scanHabit(scanner interface{ Scan(...any) error }) (*model.Habit, error) {
	var h model.Habit
	var active int
	err := scanner.Scan(
		&h.ID, &h.UserID, &h.Title, &h.Description, &h.HabitType,
		&h.ScheduleType, &h.ScheduleDays, &h.TimesPerWeek,
		&h.Streak, &h.Strength, &h.Consistency, &active,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	h.IsActive = active != 0
	return &h, nil
}

const habitCols = `id, user_id, title, description, habit_type, schedule_type, schedule_days, times_per_week, streak, strength, consistency, is_active, created_at, updated_at`

func (s *HabitStore) Create(userID int64, title, description string, habitType model.HabitType, scheduleType model.ScheduleType, scheduleDays string, timesPerWeek int) (*model.Habit, error) {
	result, err := s.db.Exec(
		`INSERT INTO habits (user_id, title, description, habit_type, schedule_type, schedule_days, times_per_week) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, title, description, string(habitType), string(scheduleType), scheduleDays, timesPerWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HabitStore) GetByID(id int64) (*model.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitCols+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

// GetForUser returns the habit only if it belongs to the user; nil otherwise.
func (s *HabitStore) GetForUser(id, userID int64) (*model.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitCols+` FROM habits WHERE id = ? AND user_id = ?`, id, userID)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit for user: %w", err)
	}
	return h, nil
}

// ListActiveByUser returns the user's habits that have not been soft-deleted.
func (s *HabitStore) ListActiveByUser(userID int64) ([]model.Habit, error) {
	rows, err := s.db.Query(
		`SELECT `+habitCols+` FROM habits WHERE user_id = ? AND is_active = 1 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

func (s *HabitStore) Update(id, userID int64, title, description string, habitType model.HabitType, scheduleType model.ScheduleType, scheduleDays string, timesPerWeek int) (*model.Habit, error) {
	_, err := s.db.Exec(
		`UPDATE habits SET title = ?, description = ?, habit_type = ?, schedule_type = ?, schedule_days = ?, times_per_week = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		title, description, string(habitType), string(scheduleType), scheduleDays, timesPerWeek, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return s.GetForUser(id, userID)
}

// SoftDelete marks the habit inactive. Check-in history stays intact.
func (s *HabitStore) SoftDelete(id, userID int64) error {
	_, err := s.db.Exec(
		`UPDATE habits SET is_active = 0, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("soft delete habit: %w", err)
	}
	return nil
}
