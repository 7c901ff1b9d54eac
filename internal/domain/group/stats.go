package group

import (
	"time"

	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/user"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// PlayerFact names a member together with the number behind a statistic.
type PlayerFact struct {
	UserID shared.UserID
	Name   string
	Value  int
}

// Stats are the same-day facts shown on a group page.
type Stats struct {
	// MostActiveToday is the member with the most submissions today.
	MostActiveToday *PlayerFact
	// TotalGamesToday counts every member submission dated today.
	TotalGamesToday int
	// LongestStreak is the member with the highest global day streak, if above zero.
	LongestStreak *PlayerFact
	// ReturningPlayer played today after missing yesterday. Value is the
	// number of days since their previous play date.
	ReturningPlayer *PlayerFact
}

// StatsInput is everything ComputeStats reads.
type StatsInput struct {
	// Members in group order; ties go to the earlier member.
	Members []*user.User
	// TodayScores are the members' scores dated today.
	TodayScores []*score.Score
	// PlayDates maps a member to their distinct play dates, newest first.
	PlayDates map[shared.UserID][]time.Time
	Today     time.Time
}

// ComputeStats derives the group statistics. It has no side effects.
func ComputeStats(in StatsInput) Stats {
	var stats Stats
	if len(in.Members) == 0 {
		return stats
	}
	today := timeutil.DateOf(in.Today)

	perUser := make(map[shared.UserID]int, len(in.Members))
	for _, s := range in.TodayScores {
		if !timeutil.IsSameDay(s.GameDate, today) {
			continue
		}
		perUser[s.UserID]++
		stats.TotalGamesToday++
	}

	for _, m := range in.Members {
		if n := perUser[m.ID]; n > 0 && (stats.MostActiveToday == nil || n > stats.MostActiveToday.Value) {
			stats.MostActiveToday = &PlayerFact{UserID: m.ID, Name: m.Name(), Value: n}
		}
	}

	for _, m := range in.Members {
		if n := m.GlobalStreak.Current; n > 0 && (stats.LongestStreak == nil || n > stats.LongestStreak.Value) {
			stats.LongestStreak = &PlayerFact{UserID: m.ID, Name: m.Name(), Value: n}
		}
	}

	yesterday := timeutil.AddDays(today, -1)
	for _, m := range in.Members {
		if !m.GlobalStreak.IsActiveOn(today) {
			continue
		}
		dates := in.PlayDates[m.ID]
		if len(dates) < 2 {
			continue
		}
		previous := dates[1]
		if !timeutil.IsSameDay(previous, yesterday) {
			stats.ReturningPlayer = &PlayerFact{UserID: m.ID, Name: m.Name(), Value: timeutil.DaysBetween(previous, today)}
			break
		}
	}

	return stats
}
