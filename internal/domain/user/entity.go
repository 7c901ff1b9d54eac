// Package user holds the slice of the account that the scoring engine reads
// and updates: the global day streak and the cached average rating.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
)

var (
	// ErrEmptyUsername is returned when a username is blank.
	ErrEmptyUsername = errors.New("user: username cannot be empty")
	// ErrInvalidUserID is returned when the ID is not a UUID.
	ErrInvalidUserID = errors.New("user: invalid user id")
)

// User is a player. Identity fields are owned by the account subsystem.
type User struct {
	ID          shared.UserID
	Username    string
	DisplayName string

	// GlobalStreak counts consecutive days with at least one submission of any game.
	GlobalStreak streak.Counter

	// AverageRating is the mean rating over the whole game catalog.
	AverageRating int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a user with the catalog-wide starting average.
func New(id shared.UserID, username, displayName string, baseRating int) (*User, error) {
	if !id.IsValid() {
		return nil, ErrInvalidUserID
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	now := time.Now().UTC()
	return &User{
		ID:            id,
		Username:      username,
		DisplayName:   strings.TrimSpace(displayName),
		AverageRating: baseRating,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// RecordPlay advances the global day streak for a game played on date.
func (u *User) RecordPlay(date time.Time) bool {
	return u.GlobalStreak.Advance(date)
}

// LastActiveDate is the game date of the most recent submission of any game.
func (u *User) LastActiveDate() *time.Time {
	return u.GlobalStreak.LastDate
}

// Repository persists users.
type Repository interface {
	// Get returns the user or shared.ErrUserNotFound.
	Get(ctx context.Context, id shared.UserID) (*User, error)

	// GetMany returns the users that exist among ids, in the order of ids.
	GetMany(ctx context.Context, ids []shared.UserID) ([]*User, error)

	// Save creates or updates a user.
	Save(ctx context.Context, u *User) error
}
