package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
	"github.com/classboard/classboard/internal/service"
)

func TestUsersList_RendersRowsAndPagination(t *testing.T) {
	f := newUIFixture(t)
	f.users.PageFunc = func(_ context.Context, q string, page, pageSize int) (*service.UserPage, error) {
		assert.Equal(t, "doe", q)
		assert.Equal(t, 2, page)
		assert.Equal(t, 10, pageSize)
		return &service.UserPage{
			Rows: []*model.User{
				{ID: "u1", Name: "Jane Doe", Username: "jane"},
				{ID: "u2", Name: "John Doe", Username: "john"},
			},
			Total:      25,
			TotalPages: 3,
		}, nil
	}

	sess := adminTestSession()
	rec := httptest.NewRecorder()
	f.ui.UsersList(rec, getRequest("/users?q=doe&page=2", &sess))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "users:2:q=doe:tp=3")
}

func TestUsersList_DefaultsPageParams(t *testing.T) {
	f := newUIFixture(t)
	f.users.PageFunc = func(_ context.Context, q string, page, pageSize int) (*service.UserPage, error) {
		assert.Empty(t, q)
		assert.Equal(t, 1, page)
		assert.Equal(t, 10, pageSize)
		return &service.UserPage{}, nil
	}

	sess := adminTestSession()
	rec := httptest.NewRecorder()
	f.ui.UsersList(rec, getRequest("/users", &sess))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserView_RendersUser(t *testing.T) {
	f := newUIFixture(t)
	f.users.GetByIDFunc = func(_ context.Context, id string) (*model.User, error) {
		assert.Equal(t, "u1", id)
		return &model.User{ID: "u1", Name: "Jane Doe", Username: "jane", Role: domainauth.RoleTeacher}, nil
	}

	sess := adminTestSession()
	r := getRequest("/users/u1", &sess)
	r.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	f.ui.UserView(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user:jane")
}

func TestUserView_MissingUserRendersNotFound(t *testing.T) {
	f := newUIFixture(t)
	f.users.GetByIDFunc = func(context.Context, string) (*model.User, error) {
		return nil, apperrors.NotFound("User not found")
	}

	sess := adminTestSession()
	r := getRequest("/users/nope", &sess)
	r.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	f.ui.UserView(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error:404")
}

func TestUserCreate_Success(t *testing.T) {
	f := newUIFixture(t)
	f.users.CreateFunc = func(_ context.Context, req *model.CreateUserRequest) (*model.User, error) {
		assert.Equal(t, "Jane Doe", req.Name)
		assert.Equal(t, "jane", req.Username)
		assert.Equal(t, domainauth.RoleTeacher, req.Role)
		assert.Equal(t, "supersecret", req.Password)
		return &model.User{ID: "u1"}, nil
	}

	form := url.Values{
		"name":     {"Jane Doe"},
		"username": {"jane"},
		"role":     {"teacher"},
		"password": {"supersecret"},
	}
	sess := adminTestSession()
	rec := httptest.NewRecorder()
	f.ui.UserCreate(rec, formRequest("/users", form, &sess))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/u1", rec.Header().Get("Location"))
}

func TestUserCreate_MissingFieldsRerenderForm(t *testing.T) {
	f := newUIFixture(t)
	called := false
	f.users.CreateFunc = func(context.Context, *model.CreateUserRequest) (*model.User, error) {
		called = true
		return nil, nil
	}

	form := url.Values{"role": {"teacher"}}
	sess := adminTestSession()
	rec := httptest.NewRecorder()
	f.ui.UserCreate(rec, formRequest("/users", form, &sess))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "user-form:create")
	assert.Contains(t, body, "name=Name is required.")
	assert.Contains(t, body, "username=Username is required.")
	assert.False(t, called)
}

func TestUserCreate_DuplicateUsernameRerendersWithConflict(t *testing.T) {
	f := newUIFixture(t)
	f.users.CreateFunc = func(context.Context, *model.CreateUserRequest) (*model.User, error) {
		return nil, apperrors.ConflictField("username", "This username is already taken.")
	}

	form := url.Values{
		"name":     {"Jane Doe"},
		"username": {"jane"},
		"role":     {"teacher"},
		"password": {"supersecret"},
	}
	sess := adminTestSession()
	rec := httptest.NewRecorder()
	f.ui.UserCreate(rec, formRequest("/users", form, &sess))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "username=This username is already taken.")
}

func TestUserUpdate_BlankPasswordKeepsCredential(t *testing.T) {
	f := newUIFixture(t)
	f.users.UpdateFunc = func(_ context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
		assert.Equal(t, "u1", id)
		require.NotNil(t, req.Name)
		assert.Equal(t, "Jane Smith", *req.Name)
		assert.Nil(t, req.Password)
		return &model.User{ID: "u1"}, nil
	}

	form := url.Values{
		"name":     {"Jane Smith"},
		"username": {"jane"},
		"role":     {"teacher"},
		"password": {""},
	}
	sess := adminTestSession()
	r := formRequest("/users/u1", form, &sess)
	r.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	f.ui.UserUpdate(rec, r)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/u1", rec.Header().Get("Location"))
}

func TestUserUpdate_NewPasswordIsPassedThrough(t *testing.T) {
	f := newUIFixture(t)
	f.users.UpdateFunc = func(_ context.Context, _ string, req model.UpdateUserRequest) (*model.User, error) {
		require.NotNil(t, req.Password)
		assert.Equal(t, "newpassword1", *req.Password)
		return &model.User{ID: "u1"}, nil
	}

	form := url.Values{
		"name":     {"Jane Smith"},
		"username": {"jane"},
		"role":     {"teacher"},
		"password": {"newpassword1"},
	}
	sess := adminTestSession()
	r := formRequest("/users/u1", form, &sess)
	r.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	f.ui.UserUpdate(rec, r)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestUserDelete_RedirectsToTable(t *testing.T) {
	f := newUIFixture(t)
	f.users.DeleteFunc = func(_ context.Context, id string) (bool, error) {
		assert.Equal(t, "u1", id)
		return true, nil
	}

	sess := adminTestSession()
	r := formRequest("/users/u1/delete", url.Values{}, &sess)
	r.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	f.ui.UserDelete(rec, r)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users", rec.Header().Get("Location"))
}
