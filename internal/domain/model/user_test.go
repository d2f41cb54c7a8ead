package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classboard/classboard/internal/domain/auth"
)

func validCreateUser() CreateUserRequest {
	return CreateUserRequest{
		Name:     "Jane Doe",
		Username: "jdoe",
		Role:     auth.RoleTeacher,
		Password: "correct-horse",
	}
}

func TestCreateUserRequest_Validate(t *testing.T) {
	req := validCreateUser()
	assert.NoError(t, req.Validate())
}

func TestCreateUserRequest_Validate_TrimsFields(t *testing.T) {
	req := validCreateUser()
	req.Name = "  Jane Doe  "
	req.Username = " jdoe "
	assert.NoError(t, req.Validate())
	assert.Equal(t, "Jane Doe", req.Name)
	assert.Equal(t, "jdoe", req.Username)
}

func TestCreateUserRequest_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateUserRequest)
	}{
		{"empty name", func(r *CreateUserRequest) { r.Name = "  " }},
		{"empty username", func(r *CreateUserRequest) { r.Username = "" }},
		{"username with spaces", func(r *CreateUserRequest) { r.Username = "j doe" }},
		{"bad role", func(r *CreateUserRequest) { r.Role = "principal" }},
		{"empty password", func(r *CreateUserRequest) { r.Password = "" }},
		{"short password", func(r *CreateUserRequest) { r.Password = "short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateUser()
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestUpdateUserRequest_Validate(t *testing.T) {
	empty := UpdateUserRequest{}
	assert.Error(t, empty.Validate())

	name := "New Name"
	req := UpdateUserRequest{Name: &name}
	assert.NoError(t, req.Validate())

	badRole := auth.Role("wizard")
	req = UpdateUserRequest{Role: &badRole}
	assert.Error(t, req.Validate())

	shortPw := "short"
	req = UpdateUserRequest{Password: &shortPw}
	assert.Error(t, req.Validate())
}
