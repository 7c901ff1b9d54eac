// Package group contains friend groups, their shared play streak and the
// same-day statistics shown on a group page.
package group

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
)

const (
	// MaxNameLength is the longest allowed group name, in characters.
	MaxNameLength = 50

	// InviteCodeLength is the length of a group invite code.
	InviteCodeLength = 8
)

// FriendGroup is a set of users sharing a group streak.
type FriendGroup struct {
	ID         shared.GroupID
	Name       string
	InviteCode string
	OwnerID    shared.UserID
	MemberIDs  []shared.UserID

	// Streak counts consecutive days on which any member submitted a score.
	// Streak.LastDate is the group's last active date.
	Streak streak.Counter

	CreatedAt time.Time
}

// New creates a group whose only member is the owner.
func New(id shared.GroupID, name string, ownerID shared.UserID, inviteCode string) (*FriendGroup, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	return &FriendGroup{
		ID:         id,
		Name:       name,
		InviteCode: NormalizeInviteCode(inviteCode),
		OwnerID:    ownerID,
		MemberIDs:  []shared.UserID{ownerID},
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", shared.ErrInvalidGroupName
	}
	return name, nil
}

// NormalizeInviteCode upper-cases and trims a user-typed invite code.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsMember reports whether userID belongs to the group.
func (g *FriendGroup) IsMember(userID shared.UserID) bool {
	return slices.Contains(g.MemberIDs, userID)
}

// IsOwner reports whether userID owns the group.
func (g *FriendGroup) IsOwner(userID shared.UserID) bool {
	return g.OwnerID == userID
}

// Join adds userID as a member.
func (g *FriendGroup) Join(userID shared.UserID) error {
	if g.IsMember(userID) {
		return shared.ErrAlreadyMember
	}
	g.MemberIDs = append(g.MemberIDs, userID)
	return nil
}

// Leave removes userID. The owner cannot leave.
func (g *FriendGroup) Leave(userID shared.UserID) error {
	if !g.IsMember(userID) {
		return shared.ErrNotMember
	}
	if g.IsOwner(userID) {
		return shared.ErrOwnerCannotLeave
	}
	g.MemberIDs = slices.DeleteFunc(g.MemberIDs, func(id shared.UserID) bool { return id == userID })
	return nil
}

// RemoveMember lets the owner remove another member.
func (g *FriendGroup) RemoveMember(by, userID shared.UserID) error {
	if !g.IsOwner(by) {
		return shared.ErrNotGroupOwner
	}
	if g.IsOwner(userID) {
		return shared.ErrCannotRemoveOwner
	}
	if !g.IsMember(userID) {
		return shared.ErrNotMember
	}
	g.MemberIDs = slices.DeleteFunc(g.MemberIDs, func(id shared.UserID) bool { return id == userID })
	return nil
}

// Rename changes the name; owner only.
func (g *FriendGroup) Rename(by shared.UserID, name string) error {
	if !g.IsOwner(by) {
		return shared.ErrNotGroupOwner
	}
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	g.Name = name
	return nil
}

// RecordPlay advances the group streak for a member's play on date. The
// counter moves at most once per calendar date.
func (g *FriendGroup) RecordPlay(date time.Time) bool {
	return g.Streak.Advance(date)
}

// Repository persists friend groups and their membership.
type Repository interface {
	// Get returns the group or shared.ErrGroupNotFound.
	Get(ctx context.Context, id shared.GroupID) (*FriendGroup, error)

	// GetByInviteCode returns the group or shared.ErrInvalidInviteCode.
	GetByInviteCode(ctx context.Context, code string) (*FriendGroup, error)

	// FindByMember returns every group userID belongs to, ordered by ID.
	FindByMember(ctx context.Context, userID shared.UserID) ([]*FriendGroup, error)

	// Save creates or updates a group, including its member list.
	Save(ctx context.Context, g *FriendGroup) error

	// Delete removes a group.
	Delete(ctx context.Context, id shared.GroupID) error
}
