package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/application/command"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

func TestGetGroup(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	alice := w.register(t, "alice", "Alice")
	bob := w.register(t, "bob", "Bob")
	carol := w.register(t, "carol", "")

	g, err := w.groups.Create(ctx, command.CreateGroupCommand{OwnerID: alice, Name: "Morning crew"})
	require.NoError(t, err)
	_, err = w.groups.Join(ctx, command.JoinGroupCommand{UserID: bob, InviteCode: g.InviteCode})
	require.NoError(t, err)

	w.play(t, bob, game.Wordle, 5, 3)
	w.play(t, alice, game.Wordle, 1, 3)
	w.play(t, alice, game.Wordle, 0, 3)
	w.play(t, alice, game.Worldle, 0, 2)
	w.play(t, bob, game.Wordle, 0, 4)

	h := NewGetGroupHandler(w.store, clock, timeutil.GameZone)
	view, err := h.Handle(ctx, bob, g.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "Morning crew", view.Group.Name)
	require.Len(t, view.Members, 2)
	assert.Equal(t, "Alice", view.Members[0].Name())
	assert.Equal(t, 2, view.Group.Streak.Current)
	assert.Equal(t, 2, view.LongestGroupStreak)

	stats := view.Stats
	assert.Equal(t, 3, stats.TotalGamesToday)
	require.NotNil(t, stats.MostActiveToday)
	assert.Equal(t, shared.UserID(alice), stats.MostActiveToday.UserID)
	assert.Equal(t, 2, stats.MostActiveToday.Value)
	require.NotNil(t, stats.LongestStreak)
	assert.Equal(t, "Alice", stats.LongestStreak.Name)
	assert.Equal(t, 2, stats.LongestStreak.Value)
	require.NotNil(t, stats.ReturningPlayer)
	assert.Equal(t, shared.UserID(bob), stats.ReturningPlayer.UserID)
	assert.Equal(t, 5, stats.ReturningPlayer.Value)

	_, err = h.Handle(ctx, carol, g.ID.String())
	assert.ErrorIs(t, err, shared.ErrMembersOnly)
	assert.True(t, shared.IsForbidden(err))

	_, err = h.Handle(ctx, alice, "9a7e4f10-1111-4222-8333-444455556666")
	assert.ErrorIs(t, err, shared.ErrGroupNotFound)
}

func TestListGroups(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	alice := w.register(t, "alice", "")

	for _, name := range []string{"One", "Two"} {
		_, err := w.groups.Create(ctx, command.CreateGroupCommand{OwnerID: alice, Name: name})
		require.NoError(t, err)
	}

	groups, err := NewListGroupsHandler(w.store).Handle(ctx, alice)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Less(t, groups[0].ID, groups[1].ID)
}
