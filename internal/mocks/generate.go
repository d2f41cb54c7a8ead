// Package mocks provides mock implementations for testing the service layer.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockUserRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(user, nil)
package mocks

// Generate mock for UserRepository interface from internal/core package.
// This creates MockUserRepository with methods for all UserRepository interface methods:
// Create, GetByID, GetByUsername, List, Update, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=user_repository_mock.go github.com/classboard/classboard/internal/core UserRepository

// Generate mock for AssignmentRepository interface from internal/core package.
// This creates MockAssignmentRepository with methods for all AssignmentRepository interface methods:
// Create, GetByID, List, Update, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=assignment_repository_mock.go github.com/classboard/classboard/internal/core AssignmentRepository
