package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/application/command"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/infrastructure/persistence/memory"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// 2024-03-10 in Amsterdam.
var (
	now   = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	today = timeutil.Date(2024, 3, 10)
	clock = timeutil.FixedClock(now)
)

type world struct {
	store  *memory.Store
	engine *rating.Engine
	submit *command.SubmitScoreHandler
	groups *command.ManageGroupHandler
	users  *command.RegisterUserHandler
}

func newWorld() *world {
	store := memory.NewStore()
	engine := rating.NewEngine(game.Default)
	return &world{
		store:  store,
		engine: engine,
		submit: command.NewSubmitScoreHandler(store, engine, command.SubmitScoreHandlerConfig{Clock: clock}),
		groups: command.NewManageGroupHandler(store, nil),
		users:  command.NewRegisterUserHandler(store, nil),
	}
}

func (w *world) register(t *testing.T, username, displayName string) string {
	t.Helper()
	u, err := w.users.Handle(context.Background(), command.RegisterUserCommand{Username: username, DisplayName: displayName})
	require.NoError(t, err)
	return u.ID.String()
}

func (w *world) play(t *testing.T, userID string, gt game.Type, daysAgo, attempts int) *command.SubmitScoreResult {
	t.Helper()
	date := timeutil.AddDays(today, -daysAgo)
	res, err := w.submit.Handle(context.Background(), command.SubmitScoreCommand{
		UserID:   userID,
		GameType: gt.String(),
		GameDate: &date,
		Attempts: &attempts,
		Solved:   true,
	})
	require.NoError(t, err)
	return res
}

func TestGetProfile(t *testing.T) {
	w := newWorld()
	id := w.register(t, "alice", "Alice")

	w.play(t, id, game.Wordle, 2, 1)  // +32
	w.play(t, id, game.Wordle, 1, 6)  // +0
	w.play(t, id, game.Worldle, 1, 1) // +32
	w.play(t, id, game.Wordle, 0, 3)  // +19

	h := NewGetProfileHandler(w.store, w.engine, clock, timeutil.GameZone)
	p, err := h.Handle(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Alice", p.User.Name())
	assert.Len(t, p.Ratings, game.Default.Size())
	assert.Equal(t, game.Wordle, p.Ratings[0].GameType)
	assert.Equal(t, 1051, p.Ratings[0].Value)
	assert.Equal(t, (1051+1032+9*1000)/11, p.AverageRating)
	assert.Equal(t, 4, p.TotalGamesPlayed)
	assert.Equal(t, 3, p.GlobalStreak.Current)
	require.Len(t, p.RecentScores, 4)
	assert.Equal(t, today, p.RecentScores[0].GameDate)

	require.NotEmpty(t, p.RatingHistory)
	last := p.RatingHistory[len(p.RatingHistory)-1]
	assert.Equal(t, today, last.Date)
	assert.Equal(t, p.AverageRating, last.Rating)
	assert.True(t, p.RatingHistory[0].Date.Before(today))
}

func TestGetProfile_Errors(t *testing.T) {
	w := newWorld()
	h := NewGetProfileHandler(w.store, w.engine, clock, timeutil.GameZone)

	_, err := h.Handle(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = h.Handle(context.Background(), "0b6c1b9e-0000-4000-8000-0000000000ff")
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}
