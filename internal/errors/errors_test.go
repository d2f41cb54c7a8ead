package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ErrCodeInternal, "save user")

	assert.Equal(t, "save user: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestAppError_ErrorWithoutCause(t *testing.T) {
	err := NotFound("user not found")
	assert.Equal(t, "user not found", err.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "x"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "x %d", 1))
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		err  error
		pred func(error) bool
	}{
		{NotFound("x"), IsNotFound},
		{Conflict("x"), IsConflict},
		{Validation("x"), IsValidation},
		{ForeignKey("x"), IsForeignKey},
		{Unauthorized("x"), IsUnauthorized},
		{Forbidden("x"), IsForbidden},
		{Internal("x"), IsInternal},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.True(t, tt.pred(tt.err))
		})
	}
	assert.False(t, IsConflict(NotFound("x")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	inner := ConflictField("username", "This username is already taken.")
	outer := fmt.Errorf("create user: %w", inner)

	assert.True(t, IsConflict(outer))
	assert.Equal(t, "username", GetField(outer))
	assert.Equal(t, ErrCodeConflict, GetCode(outer))
}

func TestGetCodeAndField_NonAppError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, "", GetField(errors.New("plain")))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("points", "Must be a positive number.")
	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.Equal(t, "points", err.Field)
}
