package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutClock    = "15:04:05"
	layoutClockHM  = "15:04"
	layoutDateTime = "2006-01-02 15:04:05"
)

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// ParseClock accepts HH:MM or HH:MM:SS and returns the HH:MM:SS form.
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{layoutClockHM, layoutClock} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(layoutClock), nil
		}
	}
	return "", fmt.Errorf("time %q must be HH:MM or HH:MM:SS", s)
}

// ClockOf formats the time-of-day part of t as HH:MM:SS.
func ClockOf(t time.Time) string {
	return t.Format(layoutClock)
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// LocalDate returns the server-local calendar date of t at midnight.
func LocalDate(t time.Time) time.Time {
	return DateOnly(t.In(time.Local))
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}
