package group

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/domain/shared"
)

const (
	owner  = shared.UserID("0b6c1b9e-0000-4000-8000-000000000001")
	friend = shared.UserID("0b6c1b9e-0000-4000-8000-000000000002")
)

func newGroup(t *testing.T) *FriendGroup {
	t.Helper()
	g, err := New("9a7e4f10-1111-4222-8333-444455556666", "  Wordle Nerds ", owner, "ab12cd34")
	require.NoError(t, err)
	return g
}

func TestNew(t *testing.T) {
	g := newGroup(t)

	assert.Equal(t, "Wordle Nerds", g.Name)
	assert.Equal(t, "AB12CD34", g.InviteCode)
	assert.Equal(t, []shared.UserID{owner}, g.MemberIDs)
	assert.True(t, g.IsOwner(owner))

	_, err := New("id", "   ", owner, "X")
	assert.ErrorIs(t, err, shared.ErrInvalidGroupName)

	_, err = New("id", strings.Repeat("n", MaxNameLength+1), owner, "X")
	assert.ErrorIs(t, err, shared.ErrInvalidGroupName)
}

func TestMembership(t *testing.T) {
	g := newGroup(t)

	require.NoError(t, g.Join(friend))
	assert.ErrorIs(t, g.Join(friend), shared.ErrAlreadyMember)
	assert.True(t, g.IsMember(friend))

	assert.ErrorIs(t, g.Leave(owner), shared.ErrOwnerCannotLeave)
	require.NoError(t, g.Leave(friend))
	assert.ErrorIs(t, g.Leave(friend), shared.ErrNotMember)
	assert.False(t, g.IsMember(friend))
}

func TestOwnerActions(t *testing.T) {
	g := newGroup(t)
	require.NoError(t, g.Join(friend))

	assert.ErrorIs(t, g.Rename(friend, "Mine now"), shared.ErrNotGroupOwner)
	require.NoError(t, g.Rename(owner, "Daily Puzzlers"))
	assert.Equal(t, "Daily Puzzlers", g.Name)

	assert.ErrorIs(t, g.RemoveMember(friend, owner), shared.ErrNotGroupOwner)
	assert.ErrorIs(t, g.RemoveMember(owner, owner), shared.ErrCannotRemoveOwner)
	require.NoError(t, g.RemoveMember(owner, friend))
	assert.True(t, shared.IsForbidden(g.Rename(friend, "x")))
}

func TestRecordPlay_OncePerDay(t *testing.T) {
	g := newGroup(t)

	assert.True(t, g.RecordPlay(today))
	assert.False(t, g.RecordPlay(today))
	assert.True(t, g.RecordPlay(daysAgo(-1)))

	assert.Equal(t, 2, g.Streak.Current)
	assert.Equal(t, 2, g.Streak.Longest)
}
