package command

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/user"
)

// RegisterUserCommand creates a player record. Credentials are handled by the
// account service in front of the hub.
type RegisterUserCommand struct {
	Username    string
	DisplayName string
}

// RegisterUserHandler handles RegisterUserCommand.
type RegisterUserHandler struct {
	users  user.Repository
	logger *slog.Logger
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(store port.Store, logger *slog.Logger) *RegisterUserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterUserHandler{users: store.Repositories().Users, logger: logger}
}

// Handle creates the user with a fresh ID and the starting average rating.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*user.User, error) {
	u, err := user.New(shared.UserID(uuid.NewString()), cmd.Username, cmd.DisplayName, rating.BaseRating)
	if err != nil {
		return nil, shared.WrapError("user", "Register", shared.ErrInvalidInput, "invalid user", err)
	}
	if err := h.users.Save(ctx, u); err != nil {
		return nil, err
	}
	h.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}
