package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rowanvale/ember/internal/model"
)

// StartOfDayUTC truncates t to UTC midnight.
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInRange counts calendar days between start and end, both inclusive,
// using UTC midnight boundaries. A range with end before start is empty.
func DaysInRange(start, end time.Time) int {
	s := StartOfDayUTC(start)
	e := StartOfDayUTC(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// ParseDays parses a CSV of weekday indices (0=Sunday..6=Saturday) into a
// membership set. Indices outside 0-6 are rejected.
func ParseDays(csv string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool)
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return days, nil
	}
	for _, part := range strings.Split(csv, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse weekday %q: %w", part, err)
		}
		if n < 0 || n > 6 {
			return nil, fmt.Errorf("weekday index %d out of range", n)
		}
		days[time.Weekday(n)] = true
	}
	return days, nil
}

// FormatDays renders a weekday set back to its canonical CSV form.
func FormatDays(days map[time.Weekday]bool) string {
	var idx []int
	for d := range days {
		idx = append(idx, int(d))
	}
	sort.Ints(idx)
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// IsDue reports whether the habit's schedule expects a completion on the
// given day. times_per_week habits are due any day, since any day counts
// toward the weekly quota. Unknown schedule types fall back to daily.
func IsDue(h model.Habit, date time.Time) bool {
	switch h.ScheduleType {
	case model.ScheduleSpecificDays:
		days, err := ParseDays(h.ScheduleDays)
		if err != nil {
			return true
		}
		return days[StartOfDayUTC(date).Weekday()]
	default:
		return true
	}
}

// CountExpected counts expected occurrences over the inclusive date range.
// For times_per_week the count is ceil(days/7) x target; it does not align
// to calendar weeks, matching the behavior clients already depend on.
func CountExpected(h model.Habit, start, end time.Time) int {
	days := DaysInRange(start, end)
	if days == 0 {
		return 0
	}

	switch h.ScheduleType {
	case model.ScheduleSpecificDays:
		set, err := ParseDays(h.ScheduleDays)
		if err != nil {
			return days
		}
		count := 0
		d := StartOfDayUTC(start)
		for i := 0; i < days; i++ {
			if set[d.Weekday()] {
				count++
			}
			d = d.AddDate(0, 0, 1)
		}
		return count
	case model.ScheduleTimesPerWeek:
		weeks := (days + 6) / 7
		return weeks * h.TimesPerWeek
	default:
		return days
	}
}
