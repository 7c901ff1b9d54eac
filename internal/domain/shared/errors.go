// Package shared contains the error model and small helpers shared by every
// domain package. It has no external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds, matched with errors.Is().
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrValueOutOfRange = errors.New("value out of range")

	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrRateLimited     = errors.New("rate limited")
	ErrConcurrentWrite = errors.New("concurrent modification detected")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "score", "rating", "group"
	Op      string // operation that failed, e.g. "Submit"
	Kind    error  // base kind for errors.Is()
	Message string
	Err     error // underlying cause, optional
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the cause, or the kind when there is no cause.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is reports whether target matches the kind or the cause.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// Score domain errors
var (
	ErrDuplicateSubmission = NewDomainError("score", "Submit", ErrAlreadyExists, "a score already exists for this game and date")
	ErrScoreNotFound       = NewDomainError("score", "Find", ErrNotFound, "score not found")
	ErrInvalidAttempts     = NewDomainError("score", "Validate", ErrValueOutOfRange, "attempts out of range")
	ErrInvalidScoreValue   = NewDomainError("score", "Validate", ErrValueOutOfRange, "score must be between 0 and 100")
	ErrSubmitRateLimited   = NewDomainError("score", "Submit", ErrRateLimited, "too many submissions, try again later")
)

// Game catalog errors
var (
	ErrUnknownGameType    = NewDomainError("game", "Lookup", ErrInvalidInput, "unknown game type")
	ErrInvalidDefinition  = NewDomainError("game", "Define", ErrValidation, "invalid game definition")
	ErrDuplicateGameEntry = NewDomainError("game", "Define", ErrAlreadyExists, "game defined twice")
)

// User, rating and streak errors
var (
	ErrUserNotFound   = NewDomainError("user", "Get", ErrNotFound, "user not found")
	ErrRatingNotFound = NewDomainError("rating", "Find", ErrNotFound, "rating not found")
	ErrStreakNotFound = NewDomainError("streak", "Find", ErrNotFound, "streak not found")
	ErrUsernameTaken  = NewDomainError("user", "Register", ErrAlreadyExists, "username already taken")
)

// Group errors
var (
	ErrGroupNotFound     = NewDomainError("group", "Get", ErrNotFound, "group not found")
	ErrInvalidInviteCode = NewDomainError("group", "Join", ErrNotFound, "invalid invite code")
	ErrAlreadyMember     = NewDomainError("group", "Join", ErrAlreadyExists, "already a member of this group")
	ErrNotMember         = NewDomainError("group", "Leave", ErrInvalidState, "not a member of this group")
	ErrOwnerCannotLeave  = NewDomainError("group", "Leave", ErrForbidden, "group owner cannot leave, delete the group instead")
	ErrNotGroupOwner     = NewDomainError("group", "Manage", ErrForbidden, "only the group owner can do this")
	ErrInvalidGroupName  = NewDomainError("group", "Validate", ErrInvalidInput, "group name must be 1-50 characters")
	ErrCannotRemoveOwner = NewDomainError("group", "RemoveMember", ErrForbidden, "the owner cannot be removed")
	ErrMembersOnly       = NewDomainError("group", "View", ErrForbidden, "only members can view this group")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsForbidden checks if the error denies the caller an action.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsRateLimited checks if the caller should back off.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
