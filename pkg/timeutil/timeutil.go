// Package timeutil provides the game-day calendar used across the hub.
// A "game date" is a calendar day, represented as a time.Time at 00:00 UTC so
// that dates compare with Equal/Before and survive a round trip through a
// Postgres DATE column unchanged. The current game day is decided in the
// Europe/Amsterdam timezone, where the daily puzzles roll over.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DateLayout is the wire and storage layout for game dates.
const DateLayout = "2006-01-02"

// GameZone is the timezone in which the game day rolls over.
var GameZone = loadZone("Europe/Amsterdam")

func loadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CET", 1*60*60)
	}
	return loc
}

// Clock returns the current instant. Handlers take a Clock so tests can pin "today".
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Date builds a game date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the calendar day of t in t's own location, as a game date.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// TodayIn returns the game date of instant t in loc.
func TodayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = GameZone
	}
	return DateOf(t.In(loc))
}

// Today returns the current game date.
func Today() time.Time {
	return TodayIn(time.Now(), GameZone)
}

// AddDays moves a game date by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return DateOf(d).AddDate(0, 0, n)
}

// IsSameDay checks if two game dates are the same calendar day.
func IsSameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// IsConsecutiveDay checks if b is exactly the day after a.
func IsConsecutiveDay(a, b time.Time) bool {
	return AddDays(a, 1).Equal(DateOf(b))
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// FormatDate renders a game date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD game date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid date %q: %w", value, err)
	}
	return t, nil
}
