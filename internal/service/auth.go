package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/classboard/classboard/internal/core"
	"github.com/classboard/classboard/internal/data"
	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
	"github.com/classboard/classboard/internal/ports"
)

// invalidCredentialsMessage is deliberately identical for unknown usernames
// and wrong passwords so login responses do not leak which accounts exist.
const invalidCredentialsMessage = "Invalid username or password."

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users  core.UserRepository
	Hasher ports.PasswordHasher
}

// AuthService verifies credentials and builds the session identity that gets
// signed into the cookie. It holds no session state itself.
type AuthService struct {
	users  core.UserRepository
	hasher ports.PasswordHasher
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{users: opts.Users, hasher: opts.Hasher}
}

// Login checks a username/password pair and returns the session identity on
// success. ExpiresAt is left zero; the session codec stamps it at encode time.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domainauth.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.Unauthorized(invalidCredentialsMessage)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.Unauthorized(invalidCredentialsMessage)
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized(invalidCredentialsMessage)
	}

	sess := sessionForUser(user)
	return &sess, nil
}

// SignupRequest groups parameters for self-service registration.
type SignupRequest struct {
	Name     string
	Username string
	Password string
}

// Signup registers a new student account and returns its session identity so
// the caller can log the user straight in. Self-service signup never grants
// any role other than student.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domainauth.Session, error) {
	createReq := &model.CreateUserRequest{
		Name:     req.Name,
		Username: req.Username,
		Role:     domainauth.RoleStudent,
		Password: req.Password,
	}
	if err := createReq.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	hash, err := s.hasher.Hash(createReq.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, data.CreateUserParams{
		Name:         createReq.Name,
		Username:     createReq.Username,
		Role:         domainauth.RoleStudent,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, mapUserWriteErr(err)
	}

	sess := sessionForUser(user)
	return &sess, nil
}

func sessionForUser(user *model.User) domainauth.Session {
	return domainauth.Session{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}
}
