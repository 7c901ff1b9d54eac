// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
	"github.com/dailygames/games-hub/internal/domain/user"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// A user's ratings across the catalog, the rating trajectory and recent scores.
// ══════════════════════════════════════════════════════════════════════════════

// RecentScoresLimit is the number of scores shown on a profile.
const RecentScoresLimit = 20

// Profile is a user's public profile.
type Profile struct {
	User             *user.User
	Ratings          []*rating.Rating
	AverageRating    int
	RatingHistory    []rating.Point
	GlobalStreak     streak.Counter
	TotalGamesPlayed int
	RecentScores     []*score.Score
}

// GetProfileHandler handles profile reads.
type GetProfileHandler struct {
	repos  port.Repositories
	engine *rating.Engine
	clock  timeutil.Clock
	zone   *time.Location
}

// NewGetProfileHandler creates a new GetProfileHandler.
func NewGetProfileHandler(store port.Store, engine *rating.Engine, clock timeutil.Clock, zone *time.Location) *GetProfileHandler {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	return &GetProfileHandler{repos: store.Repositories(), engine: engine, clock: clock, zone: zone}
}

// Handle builds the profile of userID.
func (h *GetProfileHandler) Handle(ctx context.Context, userID string) (*Profile, error) {
	id, err := shared.NewUserID(userID)
	if err != nil {
		return nil, err
	}

	u, err := h.repos.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ratings, err := h.repos.Ratings.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_profile: list ratings: %w", err)
	}
	scores, err := h.repos.Scores.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_profile: list scores: %w", err)
	}

	changes := make([]rating.DailyChange, len(scores))
	for i, s := range scores {
		changes[i] = rating.DailyChange{Date: s.GameDate, Change: s.RatingChange}
	}
	today := timeutil.TodayIn(h.clock(), h.zone)

	recent := scores
	if len(recent) > RecentScoresLimit {
		recent = recent[:RecentScoresLimit]
	}

	return &Profile{
		User:             u,
		Ratings:          h.engine.ForAllGames(id, ratings),
		AverageRating:    u.AverageRating,
		RatingHistory:    rating.History(changes, u.AverageRating, today),
		GlobalStreak:     u.GlobalStreak,
		TotalGamesPlayed: len(scores),
		RecentScores:     recent,
	}, nil
}
