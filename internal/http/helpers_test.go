package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
	mockauth "github.com/classboard/classboard/internal/mocks/auth"
	"github.com/classboard/classboard/internal/service"
)

const testCookieName = "__user_session"

// Minimal template set exposing just enough of the data for assertions.
const testPagesTmpl = `
{{define "home-content"}}home:{{len .Assignments}}{{end}}
{{define "users-content"}}users:{{len .Users}}:q={{.Query}}:tp={{.Pagination.TotalPages}}{{end}}
{{define "user-view-content"}}user:{{.User.Username}}{{end}}
{{define "user-form-content"}}user-form:{{.Mode}}{{if .Error}}:err={{.ErrorMessage}}{{end}}{{range $f, $m := .Errors}}:{{$f}}={{$m}}{{end}}{{end}}
{{define "assignments-content"}}assignments:{{len .Assignments}}:tp={{.Pagination.TotalPages}}{{end}}
{{define "assignment-view-content"}}assignment:{{.Assignment.Title}}{{end}}
{{define "assignment-form-content"}}assignment-form:{{.Mode}}{{if .Error}}:err={{.ErrorMessage}}{{end}}{{range $f, $m := .Errors}}:{{$f}}={{$m}}{{end}}{{end}}
{{define "login-content"}}login:rt={{.RedirectTo}}{{if .Error}}:err={{.ErrorMessage}}{{end}}{{range $f, $m := .Errors}}:{{$f}}={{$m}}{{end}}{{end}}
{{define "signup-content"}}signup{{if .Error}}:err={{.ErrorMessage}}{{end}}{{range $f, $m := .Errors}}:{{$f}}={{$m}}{{end}}{{end}}
{{define "unauthorized-content"}}unauthorized{{end}}
`

func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	fsys := fstest.MapFS{
		"layout.tmpl": {Data: []byte(
			`{{define "layout"}}[{{.Layout.Title}}]{{renderSection .Layout.CurrentPage .}}{{end}}`,
		)},
		"error.tmpl": {Data: []byte(
			`{{define "error-layout"}}error:{{.StatusCode}}:{{.Message}}{{end}}`,
		)},
		"pages/pages.tmpl":   {Data: []byte(testPagesTmpl)},
		"partials/noop.tmpl": {Data: []byte(`{{define "noop"}}{{end}}`)},
	}
	r, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fsys})
	require.NoError(t, err)
	return r
}

// fakeUsers implements UserProvider with overridable funcs.
type fakeUsers struct {
	PageFunc    func(ctx context.Context, q string, page, pageSize int) (*service.UserPage, error)
	CreateFunc  func(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetByIDFunc func(ctx context.Context, id string) (*model.User, error)
	UpdateFunc  func(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error)
	DeleteFunc  func(ctx context.Context, id string) (bool, error)
}

func (f *fakeUsers) Page(ctx context.Context, q string, page, pageSize int) (*service.UserPage, error) {
	if f.PageFunc == nil {
		return &service.UserPage{}, nil
	}
	return f.PageFunc(ctx, q, page, pageSize)
}

func (f *fakeUsers) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if f.CreateFunc == nil {
		return nil, apperrors.Internal("create not stubbed")
	}
	return f.CreateFunc(ctx, req)
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.GetByIDFunc == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeUsers) Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
	if f.UpdateFunc == nil {
		return nil, apperrors.Internal("update not stubbed")
	}
	return f.UpdateFunc(ctx, id, req)
}

func (f *fakeUsers) Delete(ctx context.Context, id string) (bool, error) {
	if f.DeleteFunc == nil {
		return true, nil
	}
	return f.DeleteFunc(ctx, id)
}

// fakeAssignments implements AssignmentProvider with overridable funcs.
type fakeAssignments struct {
	PageFunc    func(ctx context.Context, sess domainauth.Session, q string, page, pageSize int) (*service.AssignmentPage, error)
	OpenFunc    func(ctx context.Context, q string, page, pageSize int) (*service.AssignmentPage, error)
	CreateFunc  func(ctx context.Context, sess domainauth.Session, req *model.CreateAssignmentRequest) (*model.Assignment, error)
	GetByIDFunc func(ctx context.Context, sess domainauth.Session, id string) (*model.AssignmentWithAuthor, error)
	UpdateFunc  func(ctx context.Context, sess domainauth.Session, id string, req model.UpdateAssignmentRequest) (*model.Assignment, error)
	ToggleFunc  func(ctx context.Context, sess domainauth.Session, id string) (*model.Assignment, error)
	DeleteFunc  func(ctx context.Context, sess domainauth.Session, id string) (bool, error)
}

func (f *fakeAssignments) Page(
	ctx context.Context, sess domainauth.Session, q string, page, pageSize int,
) (*service.AssignmentPage, error) {
	if f.PageFunc == nil {
		return &service.AssignmentPage{}, nil
	}
	return f.PageFunc(ctx, sess, q, page, pageSize)
}

func (f *fakeAssignments) OpenPage(ctx context.Context, q string, page, pageSize int) (*service.AssignmentPage, error) {
	if f.OpenFunc == nil {
		return &service.AssignmentPage{}, nil
	}
	return f.OpenFunc(ctx, q, page, pageSize)
}

func (f *fakeAssignments) Create(
	ctx context.Context, sess domainauth.Session, req *model.CreateAssignmentRequest,
) (*model.Assignment, error) {
	if f.CreateFunc == nil {
		return nil, apperrors.Internal("create not stubbed")
	}
	return f.CreateFunc(ctx, sess, req)
}

func (f *fakeAssignments) GetByID(
	ctx context.Context, sess domainauth.Session, id string,
) (*model.AssignmentWithAuthor, error) {
	if f.GetByIDFunc == nil {
		return nil, apperrors.NotFound("Assignment not found")
	}
	return f.GetByIDFunc(ctx, sess, id)
}

func (f *fakeAssignments) Update(
	ctx context.Context, sess domainauth.Session, id string, req model.UpdateAssignmentRequest,
) (*model.Assignment, error) {
	if f.UpdateFunc == nil {
		return nil, apperrors.Internal("update not stubbed")
	}
	return f.UpdateFunc(ctx, sess, id, req)
}

func (f *fakeAssignments) ToggleStatus(
	ctx context.Context, sess domainauth.Session, id string,
) (*model.Assignment, error) {
	if f.ToggleFunc == nil {
		return nil, apperrors.Internal("toggle not stubbed")
	}
	return f.ToggleFunc(ctx, sess, id)
}

func (f *fakeAssignments) Delete(ctx context.Context, sess domainauth.Session, id string) (bool, error) {
	if f.DeleteFunc == nil {
		return true, nil
	}
	return f.DeleteFunc(ctx, sess, id)
}

// fakeAuth implements AuthProvider with overridable funcs.
type fakeAuth struct {
	LoginFunc  func(ctx context.Context, username, password string) (*domainauth.Session, error)
	SignupFunc func(ctx context.Context, req service.SignupRequest) (*domainauth.Session, error)
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*domainauth.Session, error) {
	if f.LoginFunc == nil {
		return nil, apperrors.Unauthorized("Invalid username or password.")
	}
	return f.LoginFunc(ctx, username, password)
}

func (f *fakeAuth) Signup(ctx context.Context, req service.SignupRequest) (*domainauth.Session, error) {
	if f.SignupFunc == nil {
		return nil, apperrors.Internal("signup not stubbed")
	}
	return f.SignupFunc(ctx, req)
}

// uiFixture bundles a handler set with its fakes for direct handler tests.
type uiFixture struct {
	ui          *UIHandlers
	users       *fakeUsers
	assignments *fakeAssignments
	auth        *fakeAuth
	codec       *mockauth.FakeCodec
	sessions    SessionAuth
}

func newUIFixture(t *testing.T) *uiFixture {
	t.Helper()
	codec := mockauth.NewFakeCodec()
	sessions := SessionAuth{Codec: codec, CookieName: testCookieName}
	users := &fakeUsers{}
	assignments := &fakeAssignments{}
	auth := &fakeAuth{}
	ui := NewUIHandlers(UIHandlersOptions{
		Renderer:    newTestRenderer(t),
		Users:       users,
		Assignments: assignments,
		Auth:        auth,
		Sessions:    sessions,
	})
	return &uiFixture{
		ui:          ui,
		users:       users,
		assignments: assignments,
		auth:        auth,
		codec:       codec,
		sessions:    sessions,
	}
}

func adminTestSession() domainauth.Session {
	return domainauth.Session{UserID: "admin-1", Username: "root", Name: "Admin", Role: domainauth.RoleAdmin}
}

func teacherTestSession() domainauth.Session {
	return domainauth.Session{UserID: "teacher-1", Username: "tina", Name: "Tina", Role: domainauth.RoleTeacher}
}

func studentTestSession() domainauth.Session {
	return domainauth.Session{UserID: "student-1", Username: "sam", Name: "Sam", Role: domainauth.RoleStudent}
}

// getRequest builds a GET request carrying the given session in its context.
func getRequest(target string, sess *domainauth.Session) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if sess != nil {
		r = r.WithContext(SetSessionInContext(r.Context(), sess))
	}
	return r
}

// formRequest builds a POST request with form-encoded values and an optional session.
func formRequest(target string, values url.Values, sess *domainauth.Session) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sess != nil {
		r = r.WithContext(SetSessionInContext(r.Context(), sess))
	}
	return r
}

// withCookie attaches an encoded session cookie to the request.
func withCookie(t *testing.T, r *http.Request, codec *mockauth.FakeCodec, sess domainauth.Session) *http.Request {
	t.Helper()
	token, err := codec.Encode(sess)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	return r
}
