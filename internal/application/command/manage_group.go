package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/group"
	"github.com/dailygames/games-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FRIEND GROUP COMMANDS
// Create, join, leave, rename and delete friend groups, and remove members.
// ══════════════════════════════════════════════════════════════════════════════

// ManageGroupHandler handles the friend group commands.
type ManageGroupHandler struct {
	store  port.Store
	logger *slog.Logger
}

// NewManageGroupHandler creates a new ManageGroupHandler.
func NewManageGroupHandler(store port.Store, logger *slog.Logger) *ManageGroupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManageGroupHandler{store: store, logger: logger}
}

// NewInviteCode returns the first InviteCodeLength characters of an
// upper-cased random UUID.
func NewInviteCode() string {
	return strings.ToUpper(uuid.NewString())[:group.InviteCodeLength]
}

// CreateGroupCommand creates a group owned by OwnerID.
type CreateGroupCommand struct {
	OwnerID string
	Name    string
}

// Create creates a new group whose only member is the owner.
func (h *ManageGroupHandler) Create(ctx context.Context, cmd CreateGroupCommand) (*group.FriendGroup, error) {
	ownerID, err := shared.NewUserID(cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	var created *group.FriendGroup
	err = h.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		if _, err := tx.Users.Get(ctx, ownerID); err != nil {
			return err
		}
		g, err := group.New(shared.GroupID(uuid.NewString()), cmd.Name, ownerID, NewInviteCode())
		if err != nil {
			return err
		}
		if err := tx.Groups.Save(ctx, g); err != nil {
			return fmt.Errorf("create_group: save: %w", err)
		}
		created = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("group created", "group_id", created.ID, "owner_id", ownerID)
	return created, nil
}

// JoinGroupCommand joins the group with InviteCode.
type JoinGroupCommand struct {
	UserID     string
	InviteCode string
}

// Join adds the user to the group the invite code belongs to.
func (h *ManageGroupHandler) Join(ctx context.Context, cmd JoinGroupCommand) (*group.FriendGroup, error) {
	userID, err := shared.NewUserID(cmd.UserID)
	if err != nil {
		return nil, err
	}

	var joined *group.FriendGroup
	err = h.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		if _, err := tx.Users.Get(ctx, userID); err != nil {
			return err
		}
		g, err := tx.Groups.GetByInviteCode(ctx, group.NormalizeInviteCode(cmd.InviteCode))
		if err != nil {
			return err
		}
		if err := g.Join(userID); err != nil {
			return err
		}
		joined = g
		return tx.Groups.Save(ctx, g)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("group joined", "group_id", joined.ID, "user_id", userID)
	return joined, nil
}

// GroupMemberCommand is an action by UserID on GroupID, optionally aimed at
// TargetID or carrying a new Name.
type GroupMemberCommand struct {
	UserID   string
	GroupID  string
	TargetID string
	Name     string
}

// Leave removes the caller from a group.
func (h *ManageGroupHandler) Leave(ctx context.Context, cmd GroupMemberCommand) error {
	return h.mutate(ctx, cmd, "leave", func(g *group.FriendGroup, by shared.UserID) error {
		return g.Leave(by)
	})
}

// Rename renames a group; owner only.
func (h *ManageGroupHandler) Rename(ctx context.Context, cmd GroupMemberCommand) error {
	return h.mutate(ctx, cmd, "rename", func(g *group.FriendGroup, by shared.UserID) error {
		return g.Rename(by, cmd.Name)
	})
}

// RemoveMember removes TargetID from a group; owner only.
func (h *ManageGroupHandler) RemoveMember(ctx context.Context, cmd GroupMemberCommand) error {
	target, err := shared.NewUserID(cmd.TargetID)
	if err != nil {
		return err
	}
	return h.mutate(ctx, cmd, "remove_member", func(g *group.FriendGroup, by shared.UserID) error {
		return g.RemoveMember(by, target)
	})
}

// Delete deletes a group; owner only.
func (h *ManageGroupHandler) Delete(ctx context.Context, cmd GroupMemberCommand) error {
	userID, groupID, err := parseMemberCommand(cmd)
	if err != nil {
		return err
	}
	err = h.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		g, err := tx.Groups.Get(ctx, groupID)
		if err != nil {
			return err
		}
		if !g.IsOwner(userID) {
			return shared.ErrNotGroupOwner
		}
		return tx.Groups.Delete(ctx, groupID)
	})
	if err != nil {
		return err
	}
	h.logger.Info("group deleted", "group_id", groupID, "user_id", userID)
	return nil
}

func (h *ManageGroupHandler) mutate(ctx context.Context, cmd GroupMemberCommand, action string, fn func(*group.FriendGroup, shared.UserID) error) error {
	userID, groupID, err := parseMemberCommand(cmd)
	if err != nil {
		return err
	}
	err = h.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		g, err := tx.Groups.Get(ctx, groupID)
		if err != nil {
			return err
		}
		if err := fn(g, userID); err != nil {
			return err
		}
		return tx.Groups.Save(ctx, g)
	})
	if err != nil {
		return err
	}
	h.logger.Info("group updated", "action", action, "group_id", groupID, "user_id", userID)
	return nil
}

func parseMemberCommand(cmd GroupMemberCommand) (shared.UserID, shared.GroupID, error) {
	userID, err := shared.NewUserID(cmd.UserID)
	if err != nil {
		return "", "", err
	}
	groupID, err := shared.NewGroupID(cmd.GroupID)
	if err != nil {
		return "", "", err
	}
	return userID, groupID, nil
}
