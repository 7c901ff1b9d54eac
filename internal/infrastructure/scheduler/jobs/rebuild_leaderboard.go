// Package jobs contains the scheduled jobs of the games hub.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// DefaultRebuildLimit is how many players per game are kept in the cache.
const DefaultRebuildLimit = 1000

// RebuildLeaderboardJob copies the top ratings of every game from the store
// into the leaderboard cache. Score submissions update the cache one entry at
// a time; this job repairs whatever was missed while the cache was down and
// refreshes the TTL of every ranking.
type RebuildLeaderboardJob struct {
	store   port.Store
	cache   port.LeaderboardCache
	catalog *game.Catalog
	limit   int
	logger  *slog.Logger
}

// NewRebuildLeaderboardJob creates a new RebuildLeaderboardJob.
func NewRebuildLeaderboardJob(store port.Store, cache port.LeaderboardCache, catalog *game.Catalog, limit int, logger *slog.Logger) *RebuildLeaderboardJob {
	if catalog == nil {
		catalog = game.Default
	}
	if limit <= 0 {
		limit = DefaultRebuildLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RebuildLeaderboardJob{
		store:   store,
		cache:   cache,
		catalog: catalog,
		limit:   limit,
		logger:  logger,
	}
}

// Name returns the job name.
func (j *RebuildLeaderboardJob) Name() string { return "rebuild_leaderboard" }

// Description returns the job description.
func (j *RebuildLeaderboardJob) Description() string {
	return "Rebuilds the cached per-game leaderboards from stored ratings"
}

// Run rebuilds every game. A failing game does not stop the others; all
// failures are returned together.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	repos := j.store.Repositories()

	var errs []error
	rebuilt := 0
	for _, gameType := range j.catalog.Types() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		ratings, err := repos.Ratings.TopByGame(ctx, gameType, j.limit)
		if err != nil {
			errs = append(errs, fmt.Errorf("rebuild %s: %w", gameType, err))
			continue
		}

		entries := make([]port.LeaderboardEntry, len(ratings))
		for i, r := range ratings {
			entries[i] = port.LeaderboardEntry{UserID: r.UserID, Rating: r.Value}
		}
		if err := j.cache.Replace(ctx, gameType, entries); err != nil {
			errs = append(errs, fmt.Errorf("rebuild %s: %w", gameType, err))
			continue
		}

		rebuilt++
		j.logger.Debug("leaderboard rebuilt", "game_type", gameType.String(), "entries", len(entries))
	}

	j.logger.Info("leaderboards rebuilt", "games", rebuilt, "failed", len(errs))
	return errors.Join(errs...)
}
