// Package streak implements the consecutive-day state machine shared by
// per-game streaks, the global day streak and friend-group streaks.
package streak

import (
	"context"
	"sort"
	"time"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// Outcome is the result of one transition.
type Outcome struct {
	Current  int
	Longest  int
	LastDate *time.Time
	Updated  bool
}

// Transition decides how a streak reacts to activity on next, given the
// previously recorded last date and counters. Dates are calendar days.
func Transition(last *time.Time, next time.Time, current, longest int) Outcome {
	next = timeutil.DateOf(next)
	unchanged := Outcome{Current: current, Longest: longest, LastDate: last}

	if last == nil {
		return Outcome{Current: 1, Longest: max(longest, 1), LastDate: &next, Updated: true}
	}

	switch days := timeutil.DaysBetween(*last, next); {
	case days <= 0:
		// Same day already counted, or a late submission for an older day.
		return unchanged
	case days == 1:
		current++
		return Outcome{Current: current, Longest: max(longest, current), LastDate: &next, Updated: true}
	default:
		return Outcome{Current: 1, Longest: longest, LastDate: &next, Updated: true}
	}
}

// Counter holds the mutable state a Transition runs over.
type Counter struct {
	Current  int
	Longest  int
	LastDate *time.Time
}

// Advance applies activity on date and reports whether the counter changed.
func (c *Counter) Advance(date time.Time) bool {
	out := Transition(c.LastDate, date, c.Current, c.Longest)
	if !out.Updated {
		return false
	}
	c.Current, c.Longest, c.LastDate = out.Current, out.Longest, out.LastDate
	return true
}

// IsActiveOn reports whether the counter was last advanced on date.
func (c Counter) IsActiveOn(date time.Time) bool {
	return c.LastDate != nil && timeutil.IsSameDay(*c.LastDate, date)
}

// ══════════════════════════════════════════════════════════════════════════════
// PER-GAME STREAK
// ══════════════════════════════════════════════════════════════════════════════

// Streak is the per (user, game) play streak.
type Streak struct {
	UserID   shared.UserID
	GameType game.Type
	Counter
}

// New creates an empty streak; it is persisted on first activity.
func New(userID shared.UserID, gameType game.Type) *Streak {
	return &Streak{UserID: userID, GameType: gameType}
}

// Repository persists per-game streaks.
type Repository interface {
	// Find returns the streak or shared.ErrStreakNotFound.
	Find(ctx context.Context, userID shared.UserID, gameType game.Type) (*Streak, error)

	// Save creates or updates a streak.
	Save(ctx context.Context, s *Streak) error

	// ListByUser returns every streak of the user.
	ListByUser(ctx context.Context, userID shared.UserID) ([]*Streak, error)
}

// LongestRun returns the longest run of consecutive calendar days in dates.
// Duplicates and ordering of the input do not matter.
func LongestRun(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	days := make([]time.Time, 0, len(dates))
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		d = timeutil.DateOf(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if timeutil.IsConsecutiveDay(days[i-1], days[i]) {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}
