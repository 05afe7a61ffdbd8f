package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanvale/ember/internal/model"
)

// dateLayout is the storage form of a check-in's UTC calendar day.
const dateLayout = "2006-01-02"

type CheckInStore struct {
	db *sql.DB
}

func NewCheckInStore(db *sql.DB) *CheckInStore {
	return &CheckInStore{db: db}
}

func scanCheckIn(scanner interface{ Scan(...any) error }) (*model.CheckIn, error) {
	var c model.CheckIn
	var date string
	var value sql.NullFloat64
	var mood, effort sql.NullInt64

	err := scanner.Scan(&c.ID, &c.HabitID, &c.UserID, &date, &c.CompletedAt, &value, &c.Note, &mood, &effort)
	if err != nil {
		return nil, err
	}

	d, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse check-in date %q: %w", date, err)
	}
	c.Date = d

	if value.Valid {
		c.Value = &value.Float64
	}
	if mood.Valid {
		m := int(mood.Int64)
		c.Mood = &m
	}
	if effort.Valid {
		e := int(effort.Int64)
		c.Effort = &e
	}
	return &c, nil
}

const checkInCols = `id, habit_id, user_id, date, completed_at, value, note, mood, effort`

func (s *CheckInStore) GetByID(id, userID int64) (*model.CheckIn, error) {
	row := s.db.QueryRow(`SELECT `+checkInCols+` FROM check_ins WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanCheckIn(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get check-in: %w", err)
	}
	return c, nil
}

// ListByHabit returns a habit's check-ins newest first, optionally bounded by
// an inclusive date range.
func (s *CheckInStore) ListByHabit(habitID, userID int64, start, end *time.Time) ([]model.CheckIn, error) {
	query := `SELECT ` + checkInCols + ` FROM check_ins WHERE habit_id = ? AND user_id = ?`
	args := []any{habitID, userID}
	if start != nil {
		query += ` AND date >= ?`
		args = append(args, start.UTC().Format(dateLayout))
	}
	if end != nil {
		query += ` AND date <= ?`
		args = append(args, end.UTC().Format(dateLayout))
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []model.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		checkIns = append(checkIns, *c)
	}
	return checkIns, rows.Err()
}

// ListForDay returns all of a user's check-ins dated the given UTC day.
func (s *CheckInStore) ListForDay(userID int64, day time.Time) ([]model.CheckIn, error) {
	rows, err := s.db.Query(
		`SELECT `+checkInCols+` FROM check_ins WHERE user_id = ? AND date = ? ORDER BY completed_at DESC`,
		userID, day.UTC().Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list check-ins for day: %w", err)
	}
	defer rows.Close()

	var checkIns []model.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		checkIns = append(checkIns, *c)
	}
	return checkIns, rows.Err()
}

// DatesByHabit returns the distinct check-in days for a habit, newest first.
// This is the input to the streak walk.
func (s *CheckInStore) DatesByHabit(habitID int64) ([]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT date FROM check_ins WHERE habit_id = ? ORDER BY date DESC`,
		habitID,
	)
	if err != nil {
		return nil, fmt.Errorf("list check-in dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// CountDistinctDays counts the distinct days with at least one check-in in
// the inclusive range. Duplicate same-day entries count once.
func (s *CheckInStore) CountDistinctDays(habitID int64, start, end time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT date) FROM check_ins WHERE habit_id = ? AND date >= ? AND date <= ?`,
		habitID, start.UTC().Format(dateLayout), end.UTC().Format(dateLayout),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count check-in days: %w", err)
	}
	return n, nil
}

// LastDateForUser returns the most recent check-in day across all of the
// user's habits, or nil with no history.
func (s *CheckInStore) LastDateForUser(userID int64) (*time.Time, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT date FROM check_ins WHERE user_id = ? ORDER BY date DESC LIMIT 1`,
		userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last check-in date: %w", err)
	}
	d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return &d, nil
}

// UpdateMeta edits the mutable fields of a check-in: note, mood, effort.
// Derived habit/user aggregates are deliberately untouched.
func (s *CheckInStore) UpdateMeta(id, userID int64, note string, mood, effort *int) (*model.CheckIn, error) {
	var m, e sql.NullInt64
	if mood != nil {
		m = sql.NullInt64{Int64: int64(clampRating(*mood)), Valid: true}
	}
	if effort != nil {
		e = sql.NullInt64{Int64: int64(clampRating(*effort)), Valid: true}
	}

	result, err := s.db.Exec(
		`UPDATE check_ins SET note = ?, mood = ?, effort = ? WHERE id = ? AND user_id = ?`,
		note, m, e, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update check-in: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(id, userID)
}

// clampRating bounds mood/effort to the 1..5 scale.
func clampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
