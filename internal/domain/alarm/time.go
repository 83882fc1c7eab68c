package alarm

import (
	"fmt"
	"time"
)

const (
	// timeLayout is the only accepted textual shape of an alarm time.
	timeLayout = "HH:MM"

	maxHour   = 23
	maxMinute = 59
)

// Time is a wall-clock time of day with minute resolution.
// It carries no date and no location.
type Time struct {
	// Hour is in [0, 23].
	Hour int
	// Minute is in [0, 59].
	Minute int
}

// NewTime builds a Time from its components, validating the ranges.
func NewTime(hour, minute int) (Time, error) {
	if hour < 0 || hour > maxHour || minute < 0 || minute > maxMinute {
		return Time{}, fmt.Errorf("%02d:%02d: %w", hour, minute, ErrInvalidFormat)
	}

	return Time{Hour: hour, Minute: minute}, nil
}

// ParseTime parses the fixed-width "HH:MM" representation.
// Anything else, including "9:05" or "25:00", fails with ErrInvalidFormat.
func ParseTime(s string) (Time, error) {
	if len(s) != len(timeLayout) || s[2] != ':' {
		return Time{}, fmt.Errorf("%q: %w", s, ErrInvalidFormat)
	}

	hour, ok := parseTwoDigits(s[0:2])
	if !ok {
		return Time{}, fmt.Errorf("%q: %w", s, ErrInvalidFormat)
	}

	minute, ok := parseTwoDigits(s[3:5])
	if !ok {
		return Time{}, fmt.Errorf("%q: %w", s, ErrInvalidFormat)
	}

	return NewTime(hour, minute)
}

// TimeOf returns the wall-clock time of t, truncated to the minute.
func TimeOf(t time.Time) Time {
	return Time{Hour: t.Hour(), Minute: t.Minute()}
}

// String renders the normalized "HH:MM" form.
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Matches reports whether now falls within the alarm minute.
// The comparison uses the wall clock of now in its own location.
func (t Time) Matches(now time.Time) bool {
	return TimeOf(now) == t
}

// parseTwoDigits converts exactly two ASCII digits to an int.
func parseTwoDigits(s string) (int, bool) {
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}

	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
