package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanvale/ember/internal/model"
)

type StatsStore struct {
	db *sql.DB
}

func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

func scanStats(scanner interface{ Scan(...any) error }) (*model.UserStats, error) {
	var st model.UserStats
	var acked sql.NullString
	err := scanner.Scan(&st.UserID, &st.CurrentStreak, &st.LongestStreak, &st.TotalCheckIns, &st.TotalXP, &st.Level, &acked)
	if err != nil {
		return nil, err
	}
	if acked.Valid && acked.String != "" {
		d, err := time.ParseInLocation(dateLayout, acked.String, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse restart ack date %q: %w", acked.String, err)
		}
		st.RestartAckedOn = &d
	}
	return &st, nil
}

const statsCols = `user_id, current_streak, longest_streak, total_check_ins, total_xp, level, restart_acked_on`

// Get returns the user's stats row, or nil if no check-in ever created one.
func (s *StatsStore) Get(userID int64) (*model.UserStats, error) {
	row := s.db.QueryRow(`SELECT `+statsCols+` FROM user_stats WHERE user_id = ?`, userID)
	st, err := scanStats(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return st, nil
}

// SetRestartAck records the day the user dismissed the re-engagement prompt.
// The stats row is created if the user has never checked in.
func (s *StatsStore) SetRestartAck(userID int64, day time.Time) error {
	date := day.UTC().Format(dateLayout)
	_, err := s.db.Exec(
		`INSERT INTO user_stats (user_id, restart_acked_on) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET restart_acked_on = excluded.restart_acked_on`,
		userID, date,
	)
	if err != nil {
		return fmt.Errorf("set restart ack: %w", err)
	}
	return nil
}
