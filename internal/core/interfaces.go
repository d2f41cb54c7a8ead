package core

import (
	"context"

	"github.com/classboard/classboard/internal/data"
	"github.com/classboard/classboard/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// UserRepository defines the interface for user data operations.
// List returns a page of rows plus the total number of rows matching the
// filter, so callers can derive page counts.
type UserRepository interface {
	Create(ctx context.Context, params data.CreateUserParams) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, int, error)
	Update(ctx context.Context, id string, params data.UpdateUserParams) (*model.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AssignmentRepository defines the interface for assignment data operations.
type AssignmentRepository interface {
	Create(ctx context.Context, req *model.CreateAssignmentRequest) (*model.Assignment, error)
	GetByID(ctx context.Context, id string) (*model.AssignmentWithAuthor, error)
	List(ctx context.Context, opts model.AssignmentsListOptions) ([]*model.AssignmentWithAuthor, int, error)
	Update(ctx context.Context, id string, req model.UpdateAssignmentRequest) (*model.Assignment, error)
	Delete(ctx context.Context, id string) (bool, error)
}
