package model

import "time"

// HabitStreak pairs a habit with its current streak for the overview endpoint.
type HabitStreak struct {
	HabitID int64  `json:"habit_id"`
	Title   string `json:"title"`
	Streak  int    `json:"streak"`
}

type Overview struct {
	TotalXP       int           `json:"total_xp"`
	Level         int           `json:"level"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
	TotalCheckIns int           `json:"total_check_ins"`
	Habits        []HabitStreak `json:"habits"`
}

// HabitStats is the on-demand per-habit stats payload. Strength here uses the
// additive formula; the habit row's cached strength uses the ratio formula.
type HabitStats struct {
	HabitID     int64          `json:"habit_id"`
	Title       string         `json:"title"`
	Streak      int            `json:"streak"`
	Consistency int            `json:"consistency"`
	Strength    int            `json:"strength"`
	BestWeekday *int           `json:"best_weekday"`
	Heatmap     map[string]int `json:"heatmap"`
}

// HabitWeekSummary is one habit's completed-vs-expected tally over the
// trailing seven days.
type HabitWeekSummary struct {
	HabitID     int64  `json:"habit_id"`
	Title       string `json:"title"`
	Completed   int    `json:"completed"`
	Expected    int    `json:"expected"`
	Consistency int    `json:"consistency"`
}

type WeeklyReview struct {
	WindowStart        time.Time          `json:"window_start"`
	WindowEnd          time.Time          `json:"window_end"`
	TotalCompleted     int                `json:"total_completed"`
	TotalExpected      int                `json:"total_expected"`
	OverallConsistency int                `json:"overall_consistency"`
	Habits             []HabitWeekSummary `json:"habits"`
	Insights           []string           `json:"insights"`
}
