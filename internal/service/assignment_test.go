package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/classboard/classboard/internal/data"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
	"github.com/classboard/classboard/internal/mocks"
)

const testAssignmentID = "assignment-123"

// newAssignmentService creates a mock repository and service for testing.
func newAssignmentService(t *testing.T) (*mocks.MockAssignmentRepository, *AssignmentService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockAssignmentRepository(ctrl)
	service := NewAssignmentService(AssignmentServiceOptions{Assignments: repo})
	return repo, service
}

func ownedAssignment(authorID string, status model.AssignmentStatus) *model.AssignmentWithAuthor {
	return &model.AssignmentWithAuthor{
		Assignment: model.Assignment{
			ID:       testAssignmentID,
			AuthorID: authorID,
			Type:     model.AssignmentTypeHomework,
			Status:   status,
			Title:    "Fractions worksheet",
			Content:  "Complete problems 1-20.",
			Points:   50,
			DueAt:    time.Now().Add(72 * time.Hour),
		},
		AuthorName:     "T. Gray",
		AuthorUsername: "tgray",
	}
}

func TestAssignmentService_Page_AdminSeesAll(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	ctx := context.Background()
	repo.EXPECT().
		List(ctx, model.AssignmentsListOptions{Limit: 10, Offset: 0}).
		Return([]*model.AssignmentWithAuthor{ownedAssignment("teacher-1", model.AssignmentStatusOpen)}, 31, nil).
		Times(1)

	page, err := service.Page(ctx, adminSession(), "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Rows, 1)
	assert.Equal(t, 31, page.Total)
	assert.Equal(t, 4, page.TotalPages)
}

func TestAssignmentService_Page_TeacherScopedToOwnRows(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	ctx := context.Background()
	repo.EXPECT().
		List(ctx, model.AssignmentsListOptions{
			Limit:    10,
			Offset:   10,
			Q:        strPtr("fractions"),
			AuthorID: strPtr("teacher-1"),
		}).
		Return([]*model.AssignmentWithAuthor{}, 12, nil).
		Times(1)

	page, err := service.Page(ctx, teacherSession(), "fractions", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
}

func TestAssignmentService_Page_StudentForbidden(t *testing.T) {
	t.Parallel()
	_, service := newAssignmentService(t)

	_, err := service.Page(context.Background(), studentSession(), "", 1, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAssignmentService_OpenPage_FiltersToOpen(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	ctx := context.Background()
	open := model.AssignmentStatusOpen
	repo.EXPECT().
		List(ctx, model.AssignmentsListOptions{Limit: 10, Offset: 0, Status: &open}).
		Return([]*model.AssignmentWithAuthor{}, 0, nil).
		Times(1)

	page, err := service.OpenPage(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, 0, page.TotalPages)
}

func TestAssignmentService_Create_TeacherForcedAsAuthor(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	ctx := context.Background()
	due := time.Now().Add(72 * time.Hour)

	repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateAssignmentRequest) (*model.Assignment, error) {
			assert.Equal(t, "teacher-1", req.AuthorID, "teacher cannot author for someone else")
			return &model.Assignment{ID: testAssignmentID, AuthorID: req.AuthorID}, nil
		}).
		Times(1)

	created, err := service.Create(ctx, teacherSession(), &model.CreateAssignmentRequest{
		AuthorID: "someone-else",
		Type:     model.AssignmentTypeQuiz,
		Title:    "Pop quiz",
		Content:  "Ten questions.",
		Points:   20,
		DueAt:    due,
	})
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", created.AuthorID)
}

func TestAssignmentService_Create_AdminDefaultsToSelf(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	ctx := context.Background()
	repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateAssignmentRequest) (*model.Assignment, error) {
			assert.Equal(t, "admin-1", req.AuthorID)
			return &model.Assignment{ID: testAssignmentID, AuthorID: req.AuthorID}, nil
		}).
		Times(1)

	_, err := service.Create(ctx, adminSession(), &model.CreateAssignmentRequest{
		Type:    model.AssignmentTypeProject,
		Title:   "Term project",
		Content: "Build something.",
		Points:  100,
		DueAt:   time.Now().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
}

func TestAssignmentService_Create_StudentForbidden(t *testing.T) {
	t.Parallel()
	_, service := newAssignmentService(t)

	_, err := service.Create(context.Background(), studentSession(), &model.CreateAssignmentRequest{
		Type:    model.AssignmentTypeHomework,
		Title:   "Nope",
		Content: "Nope.",
		Points:  1,
		DueAt:   time.Now(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAssignmentService_GetByID_TeacherNotOwner(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	repo.EXPECT().
		GetByID(gomock.Any(), testAssignmentID).
		Return(ownedAssignment("other-teacher", model.AssignmentStatusOpen), nil).
		Times(1)

	_, err := service.GetByID(context.Background(), teacherSession(), testAssignmentID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAssignmentService_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	repo.EXPECT().
		GetByID(gomock.Any(), "missing").
		Return(nil, data.ErrAssignmentNotFound).
		Times(1)

	_, err := service.GetByID(context.Background(), adminSession(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAssignmentService_Update_ChecksOwnershipFirst(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	ctx := context.Background()
	title := "Fractions worksheet v2"

	repo.EXPECT().
		GetByID(ctx, testAssignmentID).
		Return(ownedAssignment("teacher-1", model.AssignmentStatusOpen), nil).
		Times(1)
	repo.EXPECT().
		Update(ctx, testAssignmentID, model.UpdateAssignmentRequest{Title: &title}).
		Return(&model.Assignment{ID: testAssignmentID, Title: title}, nil).
		Times(1)

	updated, err := service.Update(ctx, teacherSession(), testAssignmentID, model.UpdateAssignmentRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
}

func TestAssignmentService_ToggleStatus(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	ctx := context.Background()
	closed := model.AssignmentStatusClosed

	repo.EXPECT().
		GetByID(ctx, testAssignmentID).
		Return(ownedAssignment("teacher-1", model.AssignmentStatusOpen), nil).
		Times(1)
	repo.EXPECT().
		Update(ctx, testAssignmentID, model.UpdateAssignmentRequest{Status: &closed}).
		Return(&model.Assignment{ID: testAssignmentID, Status: closed}, nil).
		Times(1)

	updated, err := service.ToggleStatus(ctx, teacherSession(), testAssignmentID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentStatusClosed, updated.Status)
}

func TestAssignmentService_Delete_MissingRowIsNotAnError(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	repo.EXPECT().
		GetByID(gomock.Any(), "missing").
		Return(nil, data.ErrAssignmentNotFound).
		Times(1)

	ok, err := service.Delete(context.Background(), adminSession(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssignmentService_Delete(t *testing.T) {
	t.Parallel()
	repo, service := newAssignmentService(t)

	ctx := context.Background()
	repo.EXPECT().
		GetByID(ctx, testAssignmentID).
		Return(ownedAssignment("teacher-1", model.AssignmentStatusOpen), nil).
		Times(1)
	repo.EXPECT().
		Delete(ctx, testAssignmentID).
		Return(true, nil).
		Times(1)

	ok, err := service.Delete(ctx, teacherSession(), testAssignmentID)
	require.NoError(t, err)
	assert.True(t, ok)
}
