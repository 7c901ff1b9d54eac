package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/domain/group"
	"github.com/dailygames/games-hub/internal/domain/shared"
)

func TestNewInviteCode(t *testing.T) {
	code := NewInviteCode()
	assert.Len(t, code, group.InviteCodeLength)
	assert.Equal(t, group.NormalizeInviteCode(code), code)
	assert.NotEqual(t, code, NewInviteCode())
}

func TestManageGroup_Lifecycle(t *testing.T) {
	f := newFixture(t, SubmitScoreHandlerConfig{})
	ctx := context.Background()
	owner := f.register(t, "owner")
	friend := f.register(t, "friend")

	g, err := f.groups.Create(ctx, CreateGroupCommand{OwnerID: owner, Name: "Puzzle pals"})
	require.NoError(t, err)
	assert.Equal(t, []shared.UserID{shared.UserID(owner)}, g.MemberIDs)

	// Invite codes are matched case-insensitively.
	joined, err := f.groups.Join(ctx, JoinGroupCommand{UserID: friend, InviteCode: " " + strings.ToLower(g.InviteCode) + " "})
	require.NoError(t, err)
	assert.True(t, joined.IsMember(shared.UserID(friend)))

	_, err = f.groups.Join(ctx, JoinGroupCommand{UserID: friend, InviteCode: g.InviteCode})
	assert.ErrorIs(t, err, shared.ErrAlreadyMember)

	member := GroupMemberCommand{UserID: friend, GroupID: g.ID.String()}
	assert.ErrorIs(t, f.groups.Rename(ctx, GroupMemberCommand{UserID: friend, GroupID: g.ID.String(), Name: "Mine"}), shared.ErrNotGroupOwner)
	assert.ErrorIs(t, f.groups.Delete(ctx, member), shared.ErrNotGroupOwner)

	require.NoError(t, f.groups.Rename(ctx, GroupMemberCommand{UserID: owner, GroupID: g.ID.String(), Name: "Renamed"}))
	require.NoError(t, f.groups.Leave(ctx, member))
	assert.ErrorIs(t, f.groups.Leave(ctx, member), shared.ErrNotMember)

	ownerCmd := GroupMemberCommand{UserID: owner, GroupID: g.ID.String()}
	assert.ErrorIs(t, f.groups.Leave(ctx, ownerCmd), shared.ErrOwnerCannotLeave)

	stored, err := f.store.Repositories().Groups.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, []shared.UserID{shared.UserID(owner)}, stored.MemberIDs)

	require.NoError(t, f.groups.Delete(ctx, ownerCmd))
	_, err = f.store.Repositories().Groups.Get(ctx, g.ID)
	assert.ErrorIs(t, err, shared.ErrGroupNotFound)
}

func TestManageGroup_RemoveMember(t *testing.T) {
	f := newFixture(t, SubmitScoreHandlerConfig{})
	ctx := context.Background()
	owner := f.register(t, "owner")
	friend := f.register(t, "friend")

	g, err := f.groups.Create(ctx, CreateGroupCommand{OwnerID: owner, Name: "Crew"})
	require.NoError(t, err)
	_, err = f.groups.Join(ctx, JoinGroupCommand{UserID: friend, InviteCode: g.InviteCode})
	require.NoError(t, err)

	err = f.groups.RemoveMember(ctx, GroupMemberCommand{UserID: friend, GroupID: g.ID.String(), TargetID: owner})
	assert.ErrorIs(t, err, shared.ErrNotGroupOwner)
	err = f.groups.RemoveMember(ctx, GroupMemberCommand{UserID: owner, GroupID: g.ID.String(), TargetID: owner})
	assert.ErrorIs(t, err, shared.ErrCannotRemoveOwner)

	require.NoError(t, f.groups.RemoveMember(ctx, GroupMemberCommand{UserID: owner, GroupID: g.ID.String(), TargetID: friend}))
	stored, err := f.store.Repositories().Groups.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsMember(shared.UserID(friend)))
}

func TestManageGroup_Errors(t *testing.T) {
	f := newFixture(t, SubmitScoreHandlerConfig{})
	ctx := context.Background()
	owner := f.register(t, "owner")

	_, err := f.groups.Create(ctx, CreateGroupCommand{OwnerID: owner, Name: "   "})
	assert.ErrorIs(t, err, shared.ErrInvalidGroupName)

	_, err = f.groups.Create(ctx, CreateGroupCommand{OwnerID: "0b6c1b9e-0000-4000-8000-0000000000ff", Name: "Ghosts"})
	assert.ErrorIs(t, err, shared.ErrUserNotFound)

	_, err = f.groups.Join(ctx, JoinGroupCommand{UserID: owner, InviteCode: "ZZZZZZZZ"})
	assert.ErrorIs(t, err, shared.ErrInvalidInviteCode)
	assert.True(t, shared.IsNotFound(err))
}
