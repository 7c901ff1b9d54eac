package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// UserID identifies a user (UUID format).
type UserID string

// IsValid checks if the user ID is a valid UUID.
func (u UserID) IsValid() bool {
	return uuidRegex.MatchString(string(u))
}

// String returns the string representation.
func (u UserID) String() string {
	return string(u)
}

// NewUserID parses and normalizes a user ID.
func NewUserID(id string) (UserID, error) {
	uid := UserID(strings.ToLower(strings.TrimSpace(id)))
	if !uid.IsValid() {
		return "", NewDomainError("shared", "NewUserID", ErrInvalidID, "invalid user ID format")
	}
	return uid, nil
}

// GroupID identifies a friend group (UUID format).
type GroupID string

// IsValid checks if the group ID is a valid UUID.
func (g GroupID) IsValid() bool {
	return uuidRegex.MatchString(string(g))
}

// String returns the string representation.
func (g GroupID) String() string {
	return string(g)
}

// NewGroupID parses and normalizes a group ID.
func NewGroupID(id string) (GroupID, error) {
	gid := GroupID(strings.ToLower(strings.TrimSpace(id)))
	if !gid.IsValid() {
		return "", NewDomainError("shared", "NewGroupID", ErrInvalidID, "invalid group ID format")
	}
	return gid, nil
}

// UserIDs converts a slice of IDs to plain strings, e.g. for a SQL ANY($1) argument.
func UserIDs(ids []UserID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
