package medicine

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// ValidClock reports whether s is a zero-padded "HH:MM" time of day
func ValidClock(s string) bool {
	_, err := time.Parse(ClockLayout, s)
	return err == nil && len(s) == len(ClockLayout)
}

// ClockOf formats the minute of t as "HH:MM"
func ClockOf(t time.Time) string {
	return t.Format(ClockLayout)
}

// DayOf formats the calendar date of t as "YYYY-MM-DD"
func DayOf(t time.Time) string {
	return t.Format(DateLayout)
}

// SubtractMinutes moves an "HH:MM" time back by the given minutes, wrapping
// around midnight ("00:05" minus 10 is "23:55").
func SubtractMinutes(clock string, minutes int) (string, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return "", fmt.Errorf("invalid dose time %q: %w", clock, err)
	}

	total := (t.Hour()*60 + t.Minute() - minutes) % minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}

	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}
