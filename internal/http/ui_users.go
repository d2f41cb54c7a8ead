package httpx

import (
	"net/http"
	"strings"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
	"github.com/classboard/classboard/internal/http/validation"
)

// userFormValues carries submitted user form fields for re-render on error.
type userFormValues struct {
	Name     string
	Username string
	Role     string
}

// UsersList renders the searchable, paginated users table.
func (h *UIHandlers) UsersList(w http.ResponseWriter, r *http.Request) {
	opts := listParams(r)
	page, err := h.users.Page(r.Context(), opts.Q, opts.Page, opts.PageSize)
	if err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}

	meta := PageMeta{Title: "Users", PageTitle: "Users", CurrentPage: PageUsers}
	data := NewTemplateData(r, meta).
		With("Users", page.Rows).
		With("Query", opts.Q).
		WithPagination(paginationFor("/users", opts, len(page.Rows), page.Total, page.TotalPages)).
		Build()
	h.renderPage(w, r, data)
}

// UserView renders one user's detail page.
func (h *UIHandlers) UserView(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}

	meta := PageMeta{Title: user.Name, PageTitle: user.Name, CurrentPage: PageUser}
	data := NewTemplateData(r, meta).
		With("User", user).
		Build()
	h.renderPage(w, r, data)
}

// UserNew renders the blank create form.
func (h *UIHandlers) UserNew(w http.ResponseWriter, r *http.Request) {
	data := h.userFormData(r, FormModeCreate, "", userFormValues{Role: string(domainauth.RoleStudent)}).Build()
	h.renderPage(w, r, data)
}

// UserCreate handles the create form submission.
func (h *UIHandlers) UserCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	values := userFormValuesFrom(r)
	password := r.PostFormValue("password")

	fieldErrors := h.validateUserForm(values, password, true)
	if len(fieldErrors) > 0 {
		h.renderError(w, r, errorOpts{
			Err:         apperrors.Validation(errMsgFixBelow),
			Data:        h.userFormData(r, FormModeCreate, "", values),
			FieldErrors: fieldErrors,
		})
		return
	}

	role, _ := domainauth.ParseRole(values.Role)
	user, err := h.users.Create(r.Context(), &model.CreateUserRequest{
		Name:     values.Name,
		Username: values.Username,
		Role:     role,
		Password: password,
	})
	if err != nil {
		h.renderError(w, r, errorOpts{
			Err:  err,
			Data: h.userFormData(r, FormModeCreate, "", values),
		})
		return
	}
	http.Redirect(w, r, "/users/"+user.ID, http.StatusSeeOther)
}

// UserEdit renders the edit form pre-filled with the stored values.
func (h *UIHandlers) UserEdit(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}

	values := userFormValues{Name: user.Name, Username: user.Username, Role: string(user.Role)}
	data := h.userFormData(r, FormModeEdit, user.ID, values).Build()
	h.renderPage(w, r, data)
}

// UserUpdate handles the edit form submission. A blank password field leaves
// the stored credential untouched.
func (h *UIHandlers) UserUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	values := userFormValuesFrom(r)
	password := r.PostFormValue("password")

	fieldErrors := h.validateUserForm(values, password, false)
	if len(fieldErrors) > 0 {
		h.renderError(w, r, errorOpts{
			Err:         apperrors.Validation(errMsgFixBelow),
			Data:        h.userFormData(r, FormModeEdit, id, values),
			FieldErrors: fieldErrors,
		})
		return
	}

	role, _ := domainauth.ParseRole(values.Role)
	req := model.UpdateUserRequest{
		Name:     &values.Name,
		Username: &values.Username,
		Role:     &role,
	}
	if password != "" {
		req.Password = &password
	}

	user, err := h.users.Update(r.Context(), id, req)
	if err != nil {
		h.renderError(w, r, errorOpts{
			Err:  err,
			Data: h.userFormData(r, FormModeEdit, id, values),
		})
		return
	}
	http.Redirect(w, r, "/users/"+user.ID, http.StatusSeeOther)
}

// UserDelete removes a user and returns to the table.
func (h *UIHandlers) UserDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.users.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// validateUserForm checks the submitted fields before they reach the service,
// so users get per-field messages instead of a single banner. The password is
// required on create but optional on edit.
func (h *UIHandlers) validateUserForm(values userFormValues, password string, requirePassword bool) map[string]string {
	roleOptions := make([]string, 0, len(domainauth.Roles()))
	for _, role := range domainauth.Roles() {
		roleOptions = append(roleOptions, string(role))
	}

	fv := validation.New().
		Validate("name", values.Name, validation.Required("Name", 255)).
		Validate("username", values.Username, validation.Required("Username", 64)).
		Validate("role", values.Role, validation.OneOf("Role", roleOptions))
	if requirePassword || password != "" {
		fv = fv.Validate("password", password, validation.RequiredRange("Password", 8, 128))
	}
	return fv.Errors()
}

func userFormValuesFrom(r *http.Request) userFormValues {
	return userFormValues{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Role:     strings.TrimSpace(r.PostFormValue("role")),
	}
}

func (h *UIHandlers) userFormData(r *http.Request, mode FormMode, id string, values userFormValues) *TemplateDataBuilder {
	title := "New user"
	if mode == FormModeEdit {
		title = "Edit user"
	}
	meta := PageMeta{Title: title, PageTitle: title, CurrentPage: PageUserForm}
	return NewTemplateData(r, meta).
		With("Mode", mode).
		With("UserID", id).
		With("Form", values).
		With("Roles", domainauth.Roles())
}
