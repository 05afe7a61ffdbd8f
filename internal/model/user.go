package model

import "time"

type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	ActiveThemeID *int64    `json:"active_theme_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStats is the per-user aggregate row, created lazily on the first
// check-in. LongestStreak never decreases.
type UserStats struct {
	UserID        int64 `json:"user_id"`
	CurrentStreak int   `json:"current_streak"`
	LongestStreak int   `json:"longest_streak"`
	TotalCheckIns int   `json:"total_check_ins"`
	TotalXP       int   `json:"total_xp"`
	Level         int   `json:"level"`
	// RestartAckedOn is the UTC day the user last dismissed the
	// re-engagement prompt.
	RestartAckedOn *time.Time `json:"restart_acked_on"`
}
