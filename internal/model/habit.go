package model

import "time"

type HabitType string

const (
	HabitYesNo    HabitType = "yes_no"
	HabitCount    HabitType = "count"
	HabitDuration HabitType = "duration"
)

type ScheduleType string

const (
	ScheduleDaily        ScheduleType = "daily"
	ScheduleSpecificDays ScheduleType = "specific_days"
	ScheduleTimesPerWeek ScheduleType = "times_per_week"
)

// Habit is a user-defined habit. Streak, Strength, and Consistency are a
// cache rebuilt from the check-in history on every submission, never the
// source of truth.
type Habit struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"user_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	HabitType    HabitType    `json:"habit_type"`
	ScheduleType ScheduleType `json:"schedule_type"`
	// ScheduleDays holds weekday indices (0=Sunday..6=Saturday) as CSV,
	// e.g. "1,3,5". Only meaningful for specific_days schedules.
	ScheduleDays string    `json:"schedule_days"`
	TimesPerWeek int       `json:"times_per_week"`
	Streak       int       `json:"streak"`
	Strength     int       `json:"strength"`
	Consistency  int       `json:"consistency"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CheckIn records one completion of a habit. Date is the UTC calendar day
// the check-in counts toward; CompletedAt is the submission instant.
type CheckIn struct {
	ID          int64     `json:"id"`
	HabitID     int64     `json:"habit_id"`
	UserID      int64     `json:"user_id"`
	Date        time.Time `json:"date"`
	CompletedAt time.Time `json:"completed_at"`
	Value       *float64  `json:"value"`
	Note        string    `json:"note"`
	Mood        *int      `json:"mood"`
	Effort      *int      `json:"effort"`
}
