//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/classboard/classboard/internal/domain/auth"
)

const (
	maxUserNameLen = 255
	maxUsernameLen = 64
	minPasswordLen = 8
	maxPasswordLen = 128
)

// User represents an account that can sign in to the dashboard.
// PasswordHash is the Credential Store's salted scrypt hash and must never
// be rendered or serialized outward.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Name         string    `json:"name"       db:"name"`
	Username     string    `json:"username"   db:"username"`
	Role         auth.Role `json:"role"       db:"role"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UsersListOptions controls paging and filtering for listing users.
// Q matches name and username via ILIKE substring.
type UsersListOptions struct {
	Limit  int
	Offset int
	Q      *string
}

// CreateUserRequest represents parameters to create a User.
// Password is the plaintext submitted on the form; the service hashes it
// before anything touches the store.
type CreateUserRequest struct {
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
	Password string    `json:"password"`
}

// UpdateUserRequest represents parameters to update a User.
// A nil Password leaves the stored hash untouched.
type UpdateUserRequest struct {
	Name     *string    `json:"name,omitempty"`
	Username *string    `json:"username,omitempty"`
	Role     *auth.Role `json:"role,omitempty"`
	Password *string    `json:"password,omitempty"`
}

// Validate validates CreateUserRequest.
func (r *CreateUserRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Name) > maxUserNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return errors.New("username is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Username) > maxUsernameLen {
		return errors.New("username cannot exceed 64 characters")
	}
	if strings.ContainsAny(r.Username, " \t\n") {
		return errors.New("username cannot contain whitespace")
	}
	if !r.Role.Valid() {
		return errors.New("invalid role")
	}
	if err := validatePassword(r.Password); err != nil {
		return err
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateUserRequest.
func (r *UpdateUserRequest) HasUpdates() bool {
	return r.Name != nil || r.Username != nil || r.Role != nil || r.Password != nil
}

// Validate validates UpdateUserRequest, ensuring at least one field is set and values are sane.
func (r *UpdateUserRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxUserNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
		*r.Name = n
	}
	if r.Username != nil {
		u := strings.TrimSpace(*r.Username)
		if u == "" {
			return errors.New("username cannot be empty")
		}
		if utf8.RuneCountInString(u) > maxUsernameLen {
			return errors.New("username cannot exceed 64 characters")
		}
		if strings.ContainsAny(u, " \t\n") {
			return errors.New("username cannot contain whitespace")
		}
		*r.Username = u
	}
	if r.Role != nil && !r.Role.Valid() {
		return errors.New("invalid role")
	}
	if r.Password != nil {
		if err := validatePassword(*r.Password); err != nil {
			return err
		}
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if utf8.RuneCountInString(password) > maxPasswordLen {
		return errors.New("password cannot exceed 128 characters")
	}
	return nil
}
