package query

import (
	"context"
	"fmt"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
)

// GameStreak is the streak of one game, with catalog info for display.
type GameStreak struct {
	GameType    game.Type
	DisplayName string
	streak.Counter
}

// Streaks are all the streaks of a user.
type Streaks struct {
	Global streak.Counter
	Games  []GameStreak
}

// GetStreaksHandler handles streak reads.
type GetStreaksHandler struct {
	repos   port.Repositories
	catalog *game.Catalog
}

// NewGetStreaksHandler creates a new GetStreaksHandler.
func NewGetStreaksHandler(store port.Store, catalog *game.Catalog) *GetStreaksHandler {
	return &GetStreaksHandler{repos: store.Repositories(), catalog: catalog}
}

// Handle returns the global streak and every per-game streak of userID, in
// catalog order. Games never played are left out.
func (h *GetStreaksHandler) Handle(ctx context.Context, userID string) (*Streaks, error) {
	id, err := shared.NewUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := h.repos.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stored, err := h.repos.Streaks.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_streaks: %w", err)
	}

	byType := make(map[game.Type]*streak.Streak, len(stored))
	for _, s := range stored {
		byType[s.GameType] = s
	}

	out := &Streaks{Global: u.GlobalStreak}
	for _, def := range h.catalog.All() {
		if s, ok := byType[def.Type]; ok {
			out.Games = append(out.Games, GameStreak{GameType: def.Type, DisplayName: def.DisplayName, Counter: s.Counter})
		}
	}
	return out, nil
}
