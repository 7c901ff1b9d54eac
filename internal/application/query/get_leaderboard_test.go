package query

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/application/command"
	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
)

type stubCache struct {
	entries []port.LeaderboardEntry
	warm    bool
	err     error
}

func (c *stubCache) UpdateRating(context.Context, game.Type, shared.UserID, int) error { return nil }

func (c *stubCache) Top(_ context.Context, _ game.Type, limit int) ([]port.LeaderboardEntry, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	if len(c.entries) > limit {
		return c.entries[:limit], c.warm, nil
	}
	return c.entries, c.warm, nil
}

func (c *stubCache) Replace(context.Context, game.Type, []port.LeaderboardEntry) error { return nil }

func TestGetLeaderboard_FromStore(t *testing.T) {
	w := newWorld()
	alice := w.register(t, "alice", "Alice")
	bob := w.register(t, "bob", "")
	w.play(t, alice, game.Wordle, 0, 5)
	w.play(t, bob, game.Wordle, 0, 1)

	h := NewGetLeaderboardHandler(w.store, nil, nil)
	board, err := h.Handle(context.Background(), GetLeaderboardQuery{GameType: "wordle"})
	require.NoError(t, err)

	assert.False(t, board.FromCache)
	assert.Equal(t, game.Wordle, board.GameType)
	require.Len(t, board.Rows, 2)
	assert.Equal(t, LeaderboardRow{Rank: 1, UserID: shared.UserID(bob), Name: "bob", Rating: 1032}, board.Rows[0])
	assert.Equal(t, LeaderboardRow{Rank: 2, UserID: shared.UserID(alice), Name: "Alice", Rating: 1006}, board.Rows[1])
}

func TestGetLeaderboard_FromCache(t *testing.T) {
	w := newWorld()
	alice := w.register(t, "alice", "Alice")
	cache := &stubCache{warm: true, entries: []port.LeaderboardEntry{
		{UserID: shared.UserID(alice), Rating: 1200},
		{UserID: "0b6c1b9e-0000-4000-8000-0000000000ff", Rating: 1100},
	}}

	h := NewGetLeaderboardHandler(w.store, cache, nil)
	board, err := h.Handle(context.Background(), GetLeaderboardQuery{GameType: "CONNECTIONS", Limit: 500})
	require.NoError(t, err)

	assert.True(t, board.FromCache)
	// Unknown users are skipped without leaving a gap in the ranks.
	require.Len(t, board.Rows, 1)
	assert.Equal(t, 1, board.Rows[0].Rank)
	assert.Equal(t, 1200, board.Rows[0].Rating)
}

func TestGetLeaderboard_CacheFailureFallsBack(t *testing.T) {
	w := newWorld()
	alice := w.register(t, "alice", "")
	w.play(t, alice, game.Wordle, 0, 1)

	h := NewGetLeaderboardHandler(w.store, &stubCache{err: errors.New("down")}, nil)
	board, err := h.Handle(context.Background(), GetLeaderboardQuery{GameType: "WORDLE"})
	require.NoError(t, err)
	assert.False(t, board.FromCache)
	assert.Len(t, board.Rows, 1)
}

// readyCache mimics the sorted set plus ready marker of the Redis cache.
type readyCache struct {
	ready    map[game.Type]bool
	rankings map[game.Type]map[shared.UserID]int
	replaced int
}

func newReadyCache() *readyCache {
	return &readyCache{ready: map[game.Type]bool{}, rankings: map[game.Type]map[shared.UserID]int{}}
}

func (c *readyCache) UpdateRating(_ context.Context, gt game.Type, userID shared.UserID, rating int) error {
	if !c.ready[gt] {
		return nil
	}
	c.rankings[gt][userID] = rating
	return nil
}

func (c *readyCache) Top(_ context.Context, gt game.Type, limit int) ([]port.LeaderboardEntry, bool, error) {
	if !c.ready[gt] {
		return nil, false, nil
	}
	var out []port.LeaderboardEntry
	for id, r := range c.rankings[gt] {
		out = append(out, port.LeaderboardEntry{UserID: id, Rating: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, true, nil
}

func (c *readyCache) Replace(_ context.Context, gt game.Type, entries []port.LeaderboardEntry) error {
	c.replaced++
	c.ready[gt] = true
	c.rankings[gt] = map[shared.UserID]int{}
	for _, e := range entries {
		c.rankings[gt][e.UserID] = e.Rating
	}
	return nil
}

func TestGetLeaderboard_ColdCacheIsLoadedInFull(t *testing.T) {
	w := newWorld()
	cache := newReadyCache()
	submit := command.NewSubmitScoreHandler(w.store, w.engine, command.SubmitScoreHandlerConfig{
		Clock:       clock,
		Leaderboard: cache,
	})
	alice := w.register(t, "alice", "")
	bob := w.register(t, "bob", "")
	carol := w.register(t, "carol", "")

	play := func(userID string, attempts int) {
		_, err := submit.Handle(context.Background(), command.SubmitScoreCommand{
			UserID: userID, GameType: "WORDLE", Attempts: &attempts, Solved: true,
		})
		require.NoError(t, err)
	}
	play(alice, 3)
	play(bob, 5)

	h := NewGetLeaderboardHandler(w.store, cache, nil)
	board, err := h.Handle(context.Background(), GetLeaderboardQuery{GameType: "WORDLE", Limit: 1})
	require.NoError(t, err)
	assert.False(t, board.FromCache)
	require.Len(t, board.Rows, 1)
	assert.Equal(t, shared.UserID(alice), board.Rows[0].UserID)
	assert.Equal(t, 1, cache.replaced)

	// Once loaded, submissions keep the cached ranking complete.
	play(carol, 1)
	board, err = h.Handle(context.Background(), GetLeaderboardQuery{GameType: "WORDLE"})
	require.NoError(t, err)
	assert.True(t, board.FromCache)
	require.Len(t, board.Rows, 3)
	assert.Equal(t, shared.UserID(carol), board.Rows[0].UserID)
	assert.Equal(t, 1032, board.Rows[0].Rating)
	assert.Equal(t, shared.UserID(bob), board.Rows[2].UserID)
	assert.Equal(t, 1, cache.replaced)
}

func TestGetLeaderboard_UnknownGame(t *testing.T) {
	h := NewGetLeaderboardHandler(newWorld().store, nil, nil)
	_, err := h.Handle(context.Background(), GetLeaderboardQuery{GameType: "TETRIS"})
	assert.ErrorIs(t, err, shared.ErrUnknownGameType)
}

func TestListGames(t *testing.T) {
	defs := NewListGamesHandler(game.Default).Handle(context.Background())
	require.Len(t, defs, 11)
	assert.Equal(t, game.Wordle, defs[0].Type)
}
