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
)

const assignmentForbiddenMessage = "You do not have permission to perform this action."

// AssignmentServiceOptions groups dependencies for AssignmentService.
type AssignmentServiceOptions struct {
	Assignments core.AssignmentRepository
}

// AssignmentService orchestrates assignment CRUD under the session's
// ownership policy: admins see and touch everything, teachers only their own
// rows, students only the read-only open listing.
type AssignmentService struct {
	assignments core.AssignmentRepository
}

// NewAssignmentService constructs a new AssignmentService.
func NewAssignmentService(opts AssignmentServiceOptions) *AssignmentService {
	return &AssignmentService{assignments: opts.Assignments}
}

// AssignmentPage is one page of the assignments table.
type AssignmentPage struct {
	Rows       []*model.AssignmentWithAuthor
	Total      int
	TotalPages int
}

// Page returns one page of the managed assignments table. Teachers are
// scoped to their own rows; students have no management listing at all.
func (s *AssignmentService) Page(
	ctx context.Context,
	sess domainauth.Session,
	q string,
	page, pageSize int,
) (*AssignmentPage, error) {
	if sess.IsStudent() {
		return nil, apperrors.Forbidden(assignmentForbiddenMessage)
	}

	opts := listOptionsFor(q, page, pageSize)
	if sess.IsTeacher() {
		authorID := sess.UserID
		opts.AuthorID = &authorID
	}
	return s.fetchPage(ctx, opts)
}

// OpenPage returns one page of open assignments, the read surface every
// authenticated role shares on the home screen.
func (s *AssignmentService) OpenPage(
	ctx context.Context,
	q string,
	page, pageSize int,
) (*AssignmentPage, error) {
	opts := listOptionsFor(q, page, pageSize)
	status := model.AssignmentStatusOpen
	opts.Status = &status
	return s.fetchPage(ctx, opts)
}

// Create inserts a new assignment. Teachers always author their own rows
// regardless of what the request claims; admins may author on their own
// behalf or leave AuthorID set for another user.
func (s *AssignmentService) Create(
	ctx context.Context,
	sess domainauth.Session,
	req *model.CreateAssignmentRequest,
) (*model.Assignment, error) {
	if req == nil {
		return nil, apperrors.Validation("create assignment request is required")
	}
	if sess.IsStudent() {
		return nil, apperrors.Forbidden(assignmentForbiddenMessage)
	}
	if sess.IsTeacher() || strings.TrimSpace(req.AuthorID) == "" {
		req.AuthorID = sess.UserID
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	created, err := s.assignments.Create(ctx, req)
	if err != nil {
		return nil, mapAssignmentErr(err)
	}
	return created, nil
}

// GetByID retrieves an assignment, enforcing the ownership policy.
func (s *AssignmentService) GetByID(
	ctx context.Context,
	sess domainauth.Session,
	id string,
) (*model.AssignmentWithAuthor, error) {
	return s.getOwned(ctx, sess, id)
}

// Update applies the set fields of the request to an owned assignment.
func (s *AssignmentService) Update(
	ctx context.Context,
	sess domainauth.Session,
	id string,
	req model.UpdateAssignmentRequest,
) (*model.Assignment, error) {
	if _, err := s.getOwned(ctx, sess, id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	updated, err := s.assignments.Update(ctx, id, req)
	if err != nil {
		return nil, mapAssignmentErr(err)
	}
	return updated, nil
}

// ToggleStatus flips an owned assignment between open and closed.
func (s *AssignmentService) ToggleStatus(
	ctx context.Context,
	sess domainauth.Session,
	id string,
) (*model.Assignment, error) {
	current, err := s.getOwned(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	next := current.Status.Toggled()
	updated, err := s.assignments.Update(ctx, id, model.UpdateAssignmentRequest{Status: &next})
	if err != nil {
		return nil, mapAssignmentErr(err)
	}
	return updated, nil
}

// Delete removes an owned assignment.
func (s *AssignmentService) Delete(
	ctx context.Context,
	sess domainauth.Session,
	id string,
) (bool, error) {
	if _, err := s.getOwned(ctx, sess, id); err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	ok, err := s.assignments.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete assignment: %w", err)
	}
	return ok, nil
}

// getOwned loads an assignment and checks the session may manage it. The
// ownership check runs before any mutation so teachers cannot reach rows
// they do not author, even by guessing IDs.
func (s *AssignmentService) getOwned(
	ctx context.Context,
	sess domainauth.Session,
	id string,
) (*model.AssignmentWithAuthor, error) {
	if sess.IsStudent() {
		return nil, apperrors.Forbidden(assignmentForbiddenMessage)
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, mapAssignmentErr(err)
	}
	if sess.IsTeacher() && assignment.AuthorID != sess.UserID {
		return nil, apperrors.Forbidden(assignmentForbiddenMessage)
	}
	return assignment, nil
}

func (s *AssignmentService) fetchPage(
	ctx context.Context,
	opts model.AssignmentsListOptions,
) (*AssignmentPage, error) {
	rows, total, err := s.assignments.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return &AssignmentPage{Rows: rows, Total: total, TotalPages: pageCount(total, opts.Limit)}, nil
}

func listOptionsFor(q string, page, pageSize int) model.AssignmentsListOptions {
	limit, offset := pageWindow(page, pageSize)
	opts := model.AssignmentsListOptions{Limit: limit, Offset: offset}
	if strings.TrimSpace(q) != "" {
		trimmed := strings.TrimSpace(q)
		opts.Q = &trimmed
	}
	return opts
}

func mapAssignmentErr(err error) error {
	if errors.Is(err, data.ErrAssignmentNotFound) {
		return apperrors.NotFound("Assignment not found")
	}
	return err
}
