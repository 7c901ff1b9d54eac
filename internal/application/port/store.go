// Package port declares what the application layer needs from infrastructure:
// a transactional store over the domain repositories, plus the cache and
// rate-limit collaborators used around score submission.
package port

import (
	"context"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/group"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
	"github.com/dailygames/games-hub/internal/domain/user"
)

// Repositories bundles the repositories of one store scope.
type Repositories struct {
	Users   user.Repository
	Scores  score.Repository
	Streaks streak.Repository
	Ratings rating.Repository
	Groups  group.Repository
}

// Store gives access to the repositories, either directly or inside a
// transaction.
type Store interface {
	// Repositories returns repositories that run outside any transaction.
	Repositories() Repositories

	// WithinTx runs fn with repositories bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Reads of users, streaks, ratings and groups made through the
	// transactional repositories lock the rows until the end of the
	// transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}

// LeaderboardEntry is one row of a per-game leaderboard.
type LeaderboardEntry struct {
	UserID shared.UserID
	Rating int
}

// LeaderboardCache is a fast per-game ranking kept next to the store.
type LeaderboardCache interface {
	// UpdateRating records the latest rating of a user in one game. It does
	// nothing while the ranking of the game is not loaded.
	UpdateRating(ctx context.Context, gameType game.Type, userID shared.UserID, rating int) error

	// Top returns the best entries, highest rating first. ok is false until
	// Replace has loaded the full ranking of the game; partial rankings are
	// never reported as ok.
	Top(ctx context.Context, gameType game.Type, limit int) (entries []LeaderboardEntry, ok bool, err error)

	// Replace swaps the whole ranking of one game and marks it loaded.
	Replace(ctx context.Context, gameType game.Type, entries []LeaderboardEntry) error
}

// RateLimiter decides whether an action keyed by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
