package model

import "time"

type HabitGroup struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	OwnerID    int64     `json:"owner_id"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

type GroupMember struct {
	GroupID  int64     `json:"group_id"`
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// LeaderboardEntry ranks a group member by accumulated XP.
type LeaderboardEntry struct {
	UserID        int64  `json:"user_id"`
	Name          string `json:"name"`
	TotalXP       int    `json:"total_xp"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"current_streak"`
}
