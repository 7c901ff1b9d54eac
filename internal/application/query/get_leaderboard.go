package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Top ratings of one game. Served from the cache when it is warm, from the
// store otherwise; a cold cache is loaded from the same store read.
// ══════════════════════════════════════════════════════════════════════════════

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// GetLeaderboardQuery selects a game and page size.
type GetLeaderboardQuery struct {
	GameType string
	Limit    int
}

// LeaderboardRow is one ranked player.
type LeaderboardRow struct {
	Rank   int
	UserID shared.UserID
	Name   string
	Rating int
}

// Leaderboard is the ranking of one game.
type Leaderboard struct {
	GameType  game.Type
	Rows      []LeaderboardRow
	FromCache bool
}

// GetLeaderboardHandler handles leaderboard reads.
type GetLeaderboardHandler struct {
	repos  port.Repositories
	cache  port.LeaderboardCache
	logger *slog.Logger
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler. cache may be nil.
func NewGetLeaderboardHandler(store port.Store, cache port.LeaderboardCache, logger *slog.Logger) *GetLeaderboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetLeaderboardHandler{repos: store.Repositories(), cache: cache, logger: logger}
}

// Handle returns the top players of a game.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*Leaderboard, error) {
	gameType, err := game.ParseType(q.GameType)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = defaultLeaderboardLimit
	case limit > maxLeaderboardLimit:
		limit = maxLeaderboardLimit
	}

	entries, fromCache, cold := h.fromCache(ctx, gameType, limit)
	if !fromCache {
		load := limit
		if cold {
			load = maxLeaderboardLimit
		}
		ratings, err := h.repos.Ratings.TopByGame(ctx, gameType, load)
		if err != nil {
			return nil, fmt.Errorf("get_leaderboard: %w", err)
		}
		entries = make([]port.LeaderboardEntry, len(ratings))
		for i, r := range ratings {
			entries[i] = port.LeaderboardEntry{UserID: r.UserID, Rating: r.Value}
		}
		if cold {
			h.warm(ctx, gameType, entries)
		}
		if len(entries) > limit {
			entries = entries[:limit]
		}
	}

	ids := make([]shared.UserID, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	users, err := h.repos.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: users: %w", err)
	}
	names := make(map[shared.UserID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name()
	}

	board := &Leaderboard{GameType: gameType, FromCache: fromCache}
	for _, e := range entries {
		name, ok := names[e.UserID]
		if !ok {
			continue
		}
		board.Rows = append(board.Rows, LeaderboardRow{
			Rank:   len(board.Rows) + 1,
			UserID: e.UserID,
			Name:   name,
			Rating: e.Rating,
		})
	}
	return board, nil
}

// fromCache reads the cached ranking. cold reports a reachable cache that
// has not loaded the game yet.
func (h *GetLeaderboardHandler) fromCache(ctx context.Context, gameType game.Type, limit int) (entries []port.LeaderboardEntry, ok, cold bool) {
	if h.cache == nil {
		return nil, false, false
	}
	entries, ok, err := h.cache.Top(ctx, gameType, limit)
	if err != nil {
		h.logger.Warn("leaderboard cache read failed", "game_type", gameType, "error", err)
		return nil, false, false
	}
	return entries, ok, !ok
}

func (h *GetLeaderboardHandler) warm(ctx context.Context, gameType game.Type, entries []port.LeaderboardEntry) {
	if err := h.cache.Replace(ctx, gameType, entries); err != nil {
		h.logger.Warn("leaderboard cache warm failed", "game_type", gameType, "error", err)
		return
	}
	h.logger.Debug("leaderboard cache warmed", "game_type", gameType, "entries", len(entries))
}

// ListGamesHandler lists the game catalog.
type ListGamesHandler struct {
	catalog *game.Catalog
}

// NewListGamesHandler creates a new ListGamesHandler.
func NewListGamesHandler(catalog *game.Catalog) *ListGamesHandler {
	return &ListGamesHandler{catalog: catalog}
}

// Handle returns every game in catalog order.
func (h *ListGamesHandler) Handle(context.Context) []game.Definition {
	return h.catalog.All()
}
