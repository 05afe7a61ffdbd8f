// Package checkin implements the check-in ingestion pipeline: the single
// write path that records a completion and rebuilds every derived metric
// (habit streak/strength/consistency, user stats, XP/level) from history.
package checkin

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rowanvale/ember/internal/model"
	"github.com/rowanvale/ember/internal/progress"
	"github.com/rowanvale/ember/internal/schedule"
)

// strengthWindowDays is the trailing window for consistency and strength.
const strengthWindowDays = 30

// ErrHabitNotFound is returned when the habit does not exist, is soft-deleted,
// or belongs to another user. No side effects have occurred.
var ErrHabitNotFound = errors.New("habit not found")

// Request carries the client-supplied fields of a submission.
type Request struct {
	HabitID int64    `json:"habit_id"`
	Value   *float64 `json:"value"`
	Note    string   `json:"note"`
	Mood    *int     `json:"mood"`
	Effort  *int     `json:"effort"`
}

// Result is what a successful submission returns to the client.
type Result struct {
	CheckIn   model.CheckIn   `json:"check_in"`
	XPAwarded int             `json:"xp_awarded"`
	Streak    int             `json:"streak"`
	Stats     model.UserStats `json:"stats"`
}

// Pipeline serializes check-in submissions per habit and applies all derived
// state updates in one transaction, so a habit never shows a new streak while
// the user's XP lags behind.
type Pipeline struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewPipeline(db *sql.DB, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		db:     db,
		logger: logger,
		now:    time.Now,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// habitLock returns the mutex guarding submissions for one habit. Locks are
// never released from the map; the set of habits a single process touches is
// small enough not to matter.
func (p *Pipeline) habitLock(habitID int64) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[habitID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[habitID] = l
	}
	return l
}

// Submit records a check-in for the user's habit and rebuilds derived state.
// Concurrent submissions for the same habit are serialized so the milestone
// bonus is awarded at most once per streak day.
func (p *Pipeline) Submit(userID int64, req Request) (*Result, error) {
	lock := p.habitLock(req.HabitID)
	lock.Lock()
	defer lock.Unlock()

	now := p.now().UTC()
	today := schedule.StartOfDayUTC(now)

	tx, err := p.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	habit, err := loadActiveHabit(tx, req.HabitID, userID)
	if err != nil {
		return nil, err
	}

	var mood, effort sql.NullInt64
	if req.Mood != nil {
		mood = sql.NullInt64{Int64: int64(clampRating(*req.Mood)), Valid: true}
	}
	if req.Effort != nil {
		effort = sql.NullInt64{Int64: int64(clampRating(*req.Effort)), Valid: true}
	}
	var value sql.NullFloat64
	if req.Value != nil {
		value = sql.NullFloat64{Float64: *req.Value, Valid: true}
	}

	// Whether today already has a counted check-in decides milestone
	// eligibility below: a duplicate same-day submission must not re-award
	// the streak bonus.
	firstOfDay, err := isFirstOfDay(tx, habit.ID, today)
	if err != nil {
		return nil, err
	}

	res, err := tx.Exec(
		`INSERT INTO check_ins (habit_id, user_id, date, completed_at, value, note, mood, effort)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, userID, today.Format("2006-01-02"), now, value, req.Note, mood, effort,
	)
	if err != nil {
		return nil, fmt.Errorf("insert check-in: %w", err)
	}
	checkInID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	// Streak over the full history; strength/consistency over the trailing
	// 30-day window. Always rebuilt from raw check-ins, never patched.
	dates, err := habitDates(tx, habit.ID)
	if err != nil {
		return nil, err
	}
	streak := progress.CurrentStreak(dates, today)

	windowStart := today.AddDate(0, 0, -(strengthWindowDays - 1))
	completed := countInWindow(dates, windowStart, today)
	expected := schedule.CountExpected(*habit, windowStart, today)
	missed := expected - completed
	if missed < 0 {
		missed = 0
	}
	strength := progress.StrengthRatio(completed, missed)
	consistency := progress.Consistency(completed, expected)

	if _, err := tx.Exec(
		`UPDATE habits SET streak = ?, strength = ?, consistency = ?, updated_at = ? WHERE id = ?`,
		streak, strength, consistency, now, habit.ID,
	); err != nil {
		return nil, fmt.Errorf("update habit aggregates: %w", err)
	}

	xp := progress.XPBase
	if firstOfDay && progress.IsMilestone(streak) {
		xp += progress.MilestoneBonus
	}

	stats, err := upsertStats(tx, userID, streak, xp)
	if err != nil {
		return nil, err
	}

	checkIn, err := getCheckIn(tx, checkInID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	p.logger.Info("check-in recorded",
		"habit_id", habit.ID,
		"user_id", userID,
		"streak", streak,
		"xp_awarded", xp,
	)

	return &Result{
		CheckIn:   *checkIn,
		XPAwarded: xp,
		Streak:    streak,
		Stats:     *stats,
	}, nil
}

func loadActiveHabit(tx *sql.Tx, habitID, userID int64) (*model.Habit, error) {
	var h model.Habit
	var active int
	err := tx.QueryRow(
		`SELECT id, user_id, schedule_type, schedule_days, times_per_week, is_active
		 FROM habits WHERE id = ? AND user_id = ? AND is_active = 1`,
		habitID, userID,
	).Scan(&h.ID, &h.UserID, &h.ScheduleType, &h.ScheduleDays, &h.TimesPerWeek, &active)
	if err == sql.ErrNoRows {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load habit: %w", err)
	}
	h.IsActive = active != 0
	return &h, nil
}

func isFirstOfDay(tx *sql.Tx, habitID int64, day time.Time) (bool, error) {
	var n int
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM check_ins WHERE habit_id = ? AND date = ?`,
		habitID, day.Format("2006-01-02"),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count today's check-ins: %w", err)
	}
	return n == 0, nil
}

func habitDates(tx *sql.Tx, habitID int64) ([]time.Time, error) {
	rows, err := tx.Query(
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
		d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func countInWindow(dates []time.Time, start, end time.Time) int {
	n := 0
	for _, d := range dates {
		if !d.Before(start) && !d.After(end) {
			n++
		}
	}
	return n
}

func upsertStats(tx *sql.Tx, userID int64, streak, xp int) (*model.UserStats, error) {
	st := model.UserStats{UserID: userID}
	var acked sql.NullString
	err := tx.QueryRow(
		`SELECT current_streak, longest_streak, total_check_ins, total_xp, level, restart_acked_on
		 FROM user_stats WHERE user_id = ?`,
		userID,
	).Scan(&st.CurrentStreak, &st.LongestStreak, &st.TotalCheckIns, &st.TotalXP, &st.Level, &acked)

	switch {
	case err == sql.ErrNoRows:
		st.CurrentStreak = streak
		st.LongestStreak = streak
		st.TotalCheckIns = 1
		st.TotalXP = xp
		st.Level = progress.LevelForXP(st.TotalXP)
		if _, err := tx.Exec(
			`INSERT INTO user_stats (user_id, current_streak, longest_streak, total_check_ins, total_xp, level)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			userID, st.CurrentStreak, st.LongestStreak, st.TotalCheckIns, st.TotalXP, st.Level,
		); err != nil {
			return nil, fmt.Errorf("insert user stats: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load user stats: %w", err)
	default:
		if acked.Valid && acked.String != "" {
			if d, perr := time.ParseInLocation("2006-01-02", acked.String, time.UTC); perr == nil {
				st.RestartAckedOn = &d
			}
		}
		st.CurrentStreak = streak
		if streak > st.LongestStreak {
			st.LongestStreak = streak
		}
		st.TotalCheckIns++
		st.TotalXP += xp
		st.Level = progress.LevelForXP(st.TotalXP)
		if _, err := tx.Exec(
			`UPDATE user_stats SET current_streak = ?, longest_streak = ?, total_check_ins = ?, total_xp = ?, level = ?
			 WHERE user_id = ?`,
			st.CurrentStreak, st.LongestStreak, st.TotalCheckIns, st.TotalXP, st.Level, userID,
		); err != nil {
			return nil, fmt.Errorf("update user stats: %w", err)
		}
	}
	return &st, nil
}

func getCheckIn(tx *sql.Tx, id int64) (*model.CheckIn, error) {
	var c model.CheckIn
	var date string
	var value sql.NullFloat64
	var mood, effort sql.NullInt64
	err := tx.QueryRow(
		`SELECT id, habit_id, user_id, date, completed_at, value, note, mood, effort
		 FROM check_ins WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.HabitID, &c.UserID, &date, &c.CompletedAt, &value, &c.Note, &mood, &effort)
	if err != nil {
		return nil, fmt.Errorf("get check-in: %w", err)
	}
	d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
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

func clampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
