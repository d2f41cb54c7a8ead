package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// ParseRole normalizes a role string and reports whether it is supported.
func ParseRole(value string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(value)))
	if r.Valid() {
		return r, true
	}
	return "", false
}

// Roles lists all supported roles, for form selects and validation.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTeacher, RoleStudent}
}

// Session is the client-held record of an authenticated identity.
// It is serialized into a signed cookie; the cookie is the sole source of
// truth, there is no server-side session table.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin returns true if the session role is admin.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// IsTeacher returns true if the session role is teacher.
func (s Session) IsTeacher() bool { return s.Role == RoleTeacher }

// IsStudent returns true if the session role is student.
func (s Session) IsStudent() bool { return s.Role == RoleStudent }

// Expired reports whether the session passed its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
