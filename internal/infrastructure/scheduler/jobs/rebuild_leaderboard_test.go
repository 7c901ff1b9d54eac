package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/infrastructure/persistence/memory"
)

type recordingCache struct {
	mu       sync.Mutex
	replaced map[game.Type][]port.LeaderboardEntry
	failOn   game.Type
}

func newRecordingCache() *recordingCache {
	return &recordingCache{replaced: make(map[game.Type][]port.LeaderboardEntry)}
}

func (c *recordingCache) UpdateRating(context.Context, game.Type, shared.UserID, int) error {
	return nil
}

func (c *recordingCache) Top(context.Context, game.Type, int) ([]port.LeaderboardEntry, bool, error) {
	return nil, false, nil
}

func (c *recordingCache) Replace(_ context.Context, gameType game.Type, entries []port.LeaderboardEntry) error {
	if gameType == c.failOn {
		return errors.New("redis down")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaced[gameType] = entries
	return nil
}

const (
	alice = shared.UserID("0b8c5a34-1f4e-4c47-9a3e-8f2d1c6b7a01")
	bob   = shared.UserID("0b8c5a34-1f4e-4c47-9a3e-8f2d1c6b7a02")
)

func seed(t *testing.T, store *memory.Store, userID shared.UserID, gameType game.Type, value int) {
	t.Helper()
	r := rating.New(userID, gameType)
	r.Value = value
	r.GamesPlayed = 1
	require.NoError(t, store.Repositories().Ratings.Save(context.Background(), r))
}

func TestRebuildLeaderboardJob_Run(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, alice, game.Wordle, 1019)
	seed(t, store, bob, game.Wordle, 1032)
	seed(t, store, bob, game.Horse, 1010)

	cache := newRecordingCache()
	job := NewRebuildLeaderboardJob(store, cache, nil, 10, nil)

	require.NoError(t, job.Run(context.Background()))

	assert.Len(t, cache.replaced, game.Default.Size(), "every game is rebuilt, empty ones included")
	assert.Equal(t, []port.LeaderboardEntry{
		{UserID: bob, Rating: 1032},
		{UserID: alice, Rating: 1019},
	}, cache.replaced[game.Wordle])
	assert.Equal(t, []port.LeaderboardEntry{{UserID: bob, Rating: 1010}}, cache.replaced[game.Horse])
	assert.Empty(t, cache.replaced[game.Bandle])
}

func TestRebuildLeaderboardJob_RespectsLimit(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, alice, game.Wordle, 1019)
	seed(t, store, bob, game.Wordle, 1032)

	cache := newRecordingCache()
	require.NoError(t, NewRebuildLeaderboardJob(store, cache, nil, 1, nil).Run(context.Background()))
	assert.Equal(t, []port.LeaderboardEntry{{UserID: bob, Rating: 1032}}, cache.replaced[game.Wordle])
}

func TestRebuildLeaderboardJob_ContinuesPastFailures(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, alice, game.Horse, 1005)

	cache := newRecordingCache()
	cache.failOn = game.Wordle

	err := NewRebuildLeaderboardJob(store, cache, nil, 10, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rebuild WORDLE")
	assert.Len(t, cache.replaced, game.Default.Size()-1)
	assert.Equal(t, []port.LeaderboardEntry{{UserID: alice, Rating: 1005}}, cache.replaced[game.Horse])
}

func TestRebuildLeaderboardJob_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cache := newRecordingCache()
	err := NewRebuildLeaderboardJob(memory.NewStore(), cache, nil, 10, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, cache.replaced)
}

func TestRebuildLeaderboardJob_Metadata(t *testing.T) {
	job := NewRebuildLeaderboardJob(memory.NewStore(), newRecordingCache(), nil, 0, nil)
	assert.Equal(t, "rebuild_leaderboard", job.Name())
	assert.NotEmpty(t, job.Description())
	assert.Equal(t, DefaultRebuildLimit, job.limit)
}
