package data

import (
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
)

func TestAssignmentRepo_MapWriteErr_ForeignKeyViolation(t *testing.T) {
	r := NewAssignmentRepo(nil)

	pgErr := &pgconn.PgError{
		Code:   pgerrcode.ForeignKeyViolation,
		Detail: `Key (author_id)=(abc) is not present in table "users".`,
	}
	err := r.mapWriteErr(fmt.Errorf("insert assignment: %w", pgErr), false)

	assert.True(t, apperrors.IsForeignKey(err))
	assert.Contains(t, err.Error(), "User")
}

func TestAssignmentRepo_MapWriteErr_CheckViolation(t *testing.T) {
	r := NewAssignmentRepo(nil)

	pgErr := &pgconn.PgError{
		Code:           pgerrcode.CheckViolation,
		ConstraintName: "assignments_points_check",
	}
	err := r.mapWriteErr(pgErr, true)

	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "points", apperrors.GetField(err))
}

func TestAssignmentRepo_MapWriteErr_NoRows(t *testing.T) {
	r := NewAssignmentRepo(nil)

	assert.ErrorIs(t, r.mapWriteErr(pgx.ErrNoRows, true), ErrAssignmentNotFound)
}

func TestAssignmentRepo_BuildUpdateClause_UsesInjectedClock(t *testing.T) {
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	r := NewAssignmentRepoWithClock(nil, frozenClock{at: at})

	title := "  Week 3 quiz  "
	clause, args := r.buildUpdateClause(model.UpdateAssignmentRequest{Title: &title})

	assert.Equal(t, "title = $1, updated_at = $2", clause)
	require.Len(t, args, 2)
	assert.Equal(t, "Week 3 quiz", args[0])
	assert.Equal(t, at, args[1])
}
