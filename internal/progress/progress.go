// Package progress holds the pure derived-metric computations: streak,
// consistency, habit strength, XP/level, and the missed-day restart check.
// Everything here is recomputed from raw check-in history; callers persist
// the results as a cache but never trust a previously cached value.
package progress

import (
	"math"
	"time"

	"github.com/rowanvale/ember/internal/schedule"
)

const (
	// XPBase is awarded for every check-in.
	XPBase = 10
	// MilestoneBonus is added when a check-in lands the streak exactly on
	// a milestone.
	MilestoneBonus = 50
)

var milestones = map[int]bool{7: true, 14: true, 30: true, 60: true, 90: true}

// CurrentStreak walks check-in days (sorted most recent first) backward from
// today and counts consecutive days. The walk is anchored at today: if there
// is no check-in dated today the streak is zero, even if yesterday was
// completed. That is deliberate display behavior, kept behind this function
// so a grace-window variant could replace it without touching callers.
func CurrentStreak(dates []time.Time, today time.Time) int {
	expected := schedule.StartOfDayUTC(today)
	streak := 0
	for _, d := range dates {
		d = schedule.StartOfDayUTC(d)
		if d.Equal(expected) {
			streak++
			expected = expected.AddDate(0, 0, -1)
		} else if d.After(expected) {
			// Duplicate entry for a day already counted.
			continue
		} else {
			break
		}
	}
	return streak
}

// Consistency is the percentage of expected occurrences actually completed.
// Zero expected occurrences count as fully consistent.
func Consistency(completed, expected int) int {
	if expected <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(expected)))
}

// StrengthRatio scores habit strength as the completed share of all expected
// occurrences in the window. Used for the cached per-habit aggregate.
func StrengthRatio(completed, missed int) int {
	if completed <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(completed+missed)))
}

// StrengthAdditive scores habit strength starting from 100, subtracting 5
// per missed day and adding 2 per completed day, clamped to [0,100]. Used by
// the on-demand habit stats endpoint.
func StrengthAdditive(completed, missed int) int {
	score := 100 - 5*missed + 2*completed
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// XPForStreak returns the XP awarded by a check-in that brought the habit's
// streak to the given value.
func XPForStreak(streak int) int {
	xp := XPBase
	if milestones[streak] {
		xp += MilestoneBonus
	}
	return xp
}

// IsMilestone reports whether the streak value earns the milestone bonus.
func IsMilestone(streak int) bool {
	return milestones[streak]
}

// LevelForXP derives the level from cumulative XP: floor(sqrt(xp/100)).
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 0
	}
	return int(math.Sqrt(float64(totalXP) / 100))
}

// ShouldPromptRestart reports whether the re-engagement prompt should show:
// the last check-in is three or more whole days old and is not today. With
// no check-in ever recorded there is nothing to restart.
func ShouldPromptRestart(lastCheckIn *time.Time, today time.Time) bool {
	if lastCheckIn == nil {
		return false
	}
	last := schedule.StartOfDayUTC(*lastCheckIn)
	day := schedule.StartOfDayUTC(today)
	if last.Equal(day) {
		return false
	}
	gap := int(day.Sub(last).Hours() / 24)
	return gap >= 3
}

// BestWeekday returns the mode of the check-in weekdays, or false if there
// are no check-ins. Ties resolve to the earliest weekday (Sunday first).
func BestWeekday(dates []time.Time) (time.Weekday, bool) {
	if len(dates) == 0 {
		return 0, false
	}
	var counts [7]int
	for _, d := range dates {
		counts[int(schedule.StartOfDayUTC(d).Weekday())]++
	}
	best := 0
	for i := 1; i < 7; i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return time.Weekday(best), true
}
