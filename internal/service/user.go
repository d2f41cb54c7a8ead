package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/classboard/classboard/internal/core"
	"github.com/classboard/classboard/internal/data"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
	"github.com/classboard/classboard/internal/ports"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Users  core.UserRepository
	Hasher ports.PasswordHasher
}

// UserService orchestrates user CRUD. Plaintext passwords stop here: the
// service derives the credential hash before anything reaches the repository.
type UserService struct {
	users  core.UserRepository
	hasher ports.PasswordHasher
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	return &UserService{users: opts.Users, hasher: opts.Hasher}
}

// UserPage is one page of the users table.
type UserPage struct {
	Rows       []*model.User
	Total      int
	TotalPages int
}

// Page returns one page of users matching the keyword filter. Page numbers
// are 1-based; out-of-range pages return empty rows with the real page count.
func (s *UserService) Page(ctx context.Context, q string, page, pageSize int) (*UserPage, error) {
	limit, offset := pageWindow(page, pageSize)
	opts := model.UsersListOptions{Limit: limit, Offset: offset}
	if strings.TrimSpace(q) != "" {
		trimmed := strings.TrimSpace(q)
		opts.Q = &trimmed
	}

	rows, total, err := s.users.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserPage{Rows: rows, Total: total, TotalPages: pageCount(total, limit)}, nil
}

// Create validates the request, hashes the password, and inserts the user.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, apperrors.Validation("create user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, data.CreateUserParams{
		Name:         req.Name,
		Username:     req.Username,
		Role:         req.Role,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, mapUserWriteErr(err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserWriteErr(err)
	}
	return user, nil
}

// Update applies the set fields of the request. A set Password is re-hashed;
// a nil one leaves the stored credential untouched.
func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	params := data.UpdateUserParams{
		Name:     req.Name,
		Username: req.Username,
		Role:     req.Role,
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		params.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, id, params)
	if err != nil {
		return nil, mapUserWriteErr(err)
	}
	return user, nil
}

// Delete removes a user. Assignments authored by the user go with it.
func (s *UserService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return ok, nil
}

// mapUserWriteErr translates repository sentinels into the application error
// taxonomy so handlers can render them.
func mapUserWriteErr(err error) error {
	switch {
	case errors.Is(err, data.ErrUserNotFound):
		return apperrors.NotFound("User not found")
	case errors.Is(err, data.ErrUsernameExists):
		return apperrors.ConflictField("username", "This username is already taken.")
	default:
		return err
	}
}
