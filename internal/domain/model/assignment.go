package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxAssignmentTitleLen = 255

// AssignmentType categorizes an assignment.
type AssignmentType string

const (
	AssignmentTypeHomework AssignmentType = "homework"
	AssignmentTypeQuiz     AssignmentType = "quiz"
	AssignmentTypeProject  AssignmentType = "project"
)

// Valid reports whether the assignment type is supported.
func (t AssignmentType) Valid() bool {
	switch t {
	case AssignmentTypeHomework, AssignmentTypeQuiz, AssignmentTypeProject:
		return true
	default:
		return false
	}
}

// ParseAssignmentType normalizes an assignment type string and reports whether it is supported.
func ParseAssignmentType(value string) (AssignmentType, bool) {
	t := AssignmentType(strings.ToLower(strings.TrimSpace(value)))
	if t.Valid() {
		return t, true
	}
	return "", false
}

// AssignmentTypes lists all supported types, for form selects.
func AssignmentTypes() []AssignmentType {
	return []AssignmentType{AssignmentTypeHomework, AssignmentTypeQuiz, AssignmentTypeProject}
}

// AssignmentStatus tracks whether an assignment accepts submissions.
type AssignmentStatus string

const (
	AssignmentStatusOpen   AssignmentStatus = "open"
	AssignmentStatusClosed AssignmentStatus = "closed"
)

// Valid reports whether the assignment status is supported.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusOpen, AssignmentStatusClosed:
		return true
	default:
		return false
	}
}

// ParseAssignmentStatus normalizes a status string and reports whether it is supported.
func ParseAssignmentStatus(value string) (AssignmentStatus, bool) {
	s := AssignmentStatus(strings.ToLower(strings.TrimSpace(value)))
	if s.Valid() {
		return s, true
	}
	return "", false
}

// Toggled returns the opposite status.
func (s AssignmentStatus) Toggled() AssignmentStatus {
	if s == AssignmentStatusOpen {
		return AssignmentStatusClosed
	}
	return AssignmentStatusOpen
}

// Assignment represents a unit of coursework authored by a user.
type Assignment struct {
	ID        string           `json:"id"         db:"id"`
	AuthorID  string           `json:"author_id"  db:"author_id"`
	Type      AssignmentType   `json:"type"       db:"type"`
	Status    AssignmentStatus `json:"status"     db:"status"`
	Title     string           `json:"title"      db:"title"`
	Content   string           `json:"content"    db:"content"`
	Points    int              `json:"points"     db:"points"`
	DueAt     time.Time        `json:"due_at"     db:"due_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// AssignmentWithAuthor is an Assignment joined with its author's display
// fields, as returned by list and detail queries.
type AssignmentWithAuthor struct {
	Assignment
	AuthorName     string `json:"author_name"     db:"author_name"`
	AuthorUsername string `json:"author_username" db:"author_username"`
}

// AssignmentsListOptions controls paging and filtering for listing assignments.
// Notes:
//   - Q matches title, content, author name and author username via ILIKE substring.
//   - AuthorID restricts results to one author (teacher owner scope).
//   - Status restricts to open/closed (student home listing).
type AssignmentsListOptions struct {
	Limit    int
	Offset   int
	Q        *string
	AuthorID *string
	Status   *AssignmentStatus
}

// CreateAssignmentRequest represents parameters to create an Assignment.
type CreateAssignmentRequest struct {
	AuthorID string           `json:"author_id"`
	Type     AssignmentType   `json:"type"`
	Status   AssignmentStatus `json:"status,omitempty"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Points   int              `json:"points"`
	DueAt    time.Time        `json:"due_at"`
}

// UpdateAssignmentRequest represents parameters to update an Assignment.
type UpdateAssignmentRequest struct {
	Type    *AssignmentType   `json:"type,omitempty"`
	Status  *AssignmentStatus `json:"status,omitempty"`
	Title   *string           `json:"title,omitempty"`
	Content *string           `json:"content,omitempty"`
	Points  *int              `json:"points,omitempty"`
	DueAt   *time.Time        `json:"due_at,omitempty"`
}

// Validate validates CreateAssignmentRequest.
func (r *CreateAssignmentRequest) Validate() error {
	if strings.TrimSpace(r.AuthorID) == "" {
		return errors.New("author_id is required")
	}
	if !r.Type.Valid() {
		return errors.New("invalid type")
	}
	if r.Status == "" {
		r.Status = AssignmentStatusOpen
	}
	if !r.Status.Valid() {
		return errors.New("invalid status")
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Title) > maxAssignmentTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required and cannot be empty")
	}
	if r.Points <= 0 {
		return errors.New("points must be > 0")
	}
	if r.DueAt.IsZero() {
		return errors.New("due_at is required")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateAssignmentRequest.
func (r *UpdateAssignmentRequest) HasUpdates() bool {
	return r.Type != nil || r.Status != nil || r.Title != nil || r.Content != nil ||
		r.Points != nil ||
		r.DueAt != nil
}

// Validate validates UpdateAssignmentRequest, ensuring at least one field is set and values are sane.
func (r *UpdateAssignmentRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Type != nil && !r.Type.Valid() {
		return errors.New("invalid type")
	}
	if r.Status != nil && !r.Status.Valid() {
		return errors.New("invalid status")
	}
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxAssignmentTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
		*r.Title = title
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		return errors.New("content cannot be empty")
	}
	if r.Points != nil && *r.Points <= 0 {
		return errors.New("points must be > 0")
	}
	if r.DueAt != nil && r.DueAt.IsZero() {
		return errors.New("due_at cannot be empty")
	}
	return nil
}
