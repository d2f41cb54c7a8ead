package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
	"github.com/classboard/classboard/internal/http/validation"
)

// dueAtLayout matches the value format of <input type="datetime-local">.
const dueAtLayout = "2006-01-02T15:04"

// assignmentFormValues carries submitted assignment form fields for re-render on error.
type assignmentFormValues struct {
	Title   string
	Type    string
	Status  string
	Content string
	Points  string
	DueAt   string
}

// AssignmentsList renders the managed assignments table. Teachers see only
// their own rows; the service enforces that scope.
func (h *UIHandlers) AssignmentsList(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}

	opts := listParams(r)
	page, err := h.assignments.Page(r.Context(), *sess, opts.Q, opts.Page, opts.PageSize)
	if err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}

	meta := PageMeta{Title: "Assignments", PageTitle: "Assignments", CurrentPage: PageAssignments}
	data := NewTemplateData(r, meta).
		With("Assignments", page.Rows).
		With("Query", opts.Q).
		WithPagination(paginationFor("/assignments", opts, len(page.Rows), page.Total, page.TotalPages)).
		Build()
	h.renderPage(w, r, data)
}

// AssignmentView renders one assignment's detail page.
func (h *UIHandlers) AssignmentView(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}

	assignment, err := h.assignments.GetByID(r.Context(), *sess, r.PathValue("id"))
	if err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}

	meta := PageMeta{Title: assignment.Title, PageTitle: assignment.Title, CurrentPage: PageAssignment}
	data := NewTemplateData(r, meta).
		With("Assignment", assignment).
		Build()
	h.renderPage(w, r, data)
}

// AssignmentNew renders the blank create form.
func (h *UIHandlers) AssignmentNew(w http.ResponseWriter, r *http.Request) {
	values := assignmentFormValues{
		Type:   string(model.AssignmentTypeHomework),
		Status: string(model.AssignmentStatusOpen),
	}
	data := h.assignmentFormData(r, FormModeCreate, "", values).Build()
	h.renderPage(w, r, data)
}

// AssignmentCreate handles the create form submission. The author is always
// the signed-in user; the form carries no author field.
func (h *UIHandlers) AssignmentCreate(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	values := assignmentFormValuesFrom(r)

	fieldErrors := h.validateAssignmentForm(values)
	if len(fieldErrors) > 0 {
		h.renderError(w, r, errorOpts{
			Err:         apperrors.Validation(errMsgFixBelow),
			Data:        h.assignmentFormData(r, FormModeCreate, "", values),
			FieldErrors: fieldErrors,
		})
		return
	}

	req, err := values.toCreateRequest()
	if err != nil {
		h.renderError(w, r, errorOpts{
			Err:  apperrors.Validation(err.Error()),
			Data: h.assignmentFormData(r, FormModeCreate, "", values),
		})
		return
	}

	created, err := h.assignments.Create(r.Context(), *sess, req)
	if err != nil {
		h.renderError(w, r, errorOpts{
			Err:  err,
			Data: h.assignmentFormData(r, FormModeCreate, "", values),
		})
		return
	}
	http.Redirect(w, r, "/assignments/"+created.ID, http.StatusSeeOther)
}

// AssignmentEdit renders the edit form pre-filled with the stored values.
func (h *UIHandlers) AssignmentEdit(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}

	assignment, err := h.assignments.GetByID(r.Context(), *sess, r.PathValue("id"))
	if err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}

	values := assignmentFormValues{
		Title:   assignment.Title,
		Type:    string(assignment.Type),
		Status:  string(assignment.Status),
		Content: assignment.Content,
		Points:  strconv.Itoa(assignment.Points),
		DueAt:   assignment.DueAt.Local().Format(dueAtLayout),
	}
	data := h.assignmentFormData(r, FormModeEdit, assignment.ID, values).Build()
	h.renderPage(w, r, data)
}

// AssignmentUpdate handles the edit form submission.
func (h *UIHandlers) AssignmentUpdate(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	values := assignmentFormValuesFrom(r)

	fieldErrors := h.validateAssignmentForm(values)
	if len(fieldErrors) > 0 {
		h.renderError(w, r, errorOpts{
			Err:         apperrors.Validation(errMsgFixBelow),
			Data:        h.assignmentFormData(r, FormModeEdit, id, values),
			FieldErrors: fieldErrors,
		})
		return
	}

	req, err := values.toUpdateRequest()
	if err != nil {
		h.renderError(w, r, errorOpts{
			Err:  apperrors.Validation(err.Error()),
			Data: h.assignmentFormData(r, FormModeEdit, id, values),
		})
		return
	}

	updated, err := h.assignments.Update(r.Context(), *sess, id, req)
	if err != nil {
		h.renderError(w, r, errorOpts{
			Err:  err,
			Data: h.assignmentFormData(r, FormModeEdit, id, values),
		})
		return
	}
	http.Redirect(w, r, "/assignments/"+updated.ID, http.StatusSeeOther)
}

// AssignmentToggleStatus flips an assignment between open and closed and
// returns to its detail page.
func (h *UIHandlers) AssignmentToggleStatus(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}

	updated, err := h.assignments.ToggleStatus(r.Context(), *sess, r.PathValue("id"))
	if err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}
	http.Redirect(w, r, "/assignments/"+updated.ID, http.StatusSeeOther)
}

// AssignmentDelete removes an assignment and returns to the table. Deleting a
// row that is already gone still lands on the table.
func (h *UIHandlers) AssignmentDelete(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}

	if _, err := h.assignments.Delete(r.Context(), *sess, r.PathValue("id")); err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}
	http.Redirect(w, r, "/assignments", http.StatusSeeOther)
}

// validateAssignmentForm checks the submitted fields before parsing, so users
// get per-field messages with their input preserved.
func (h *UIHandlers) validateAssignmentForm(values assignmentFormValues) map[string]string {
	typeOptions := make([]string, 0, len(model.AssignmentTypes()))
	for _, t := range model.AssignmentTypes() {
		typeOptions = append(typeOptions, string(t))
	}

	fv := validation.New().
		Validate("title", values.Title, validation.Required("Title", 255)).
		Validate("type", values.Type, validation.OneOf("Type", typeOptions)).
		Validate("status", values.Status, validation.OneOf("Status", []string{
			string(model.AssignmentStatusOpen), string(model.AssignmentStatusClosed),
		})).
		Validate("content", values.Content, validation.Required("Content", 10000)).
		Validate("points", values.Points, validation.IntRange("Points", 1, 1000))

	fieldErrors := fv.Errors()
	if _, err := time.Parse(dueAtLayout, values.DueAt); err != nil {
		fieldErrors["due_at"] = "Due date is required."
	}
	return fieldErrors
}

func assignmentFormValuesFrom(r *http.Request) assignmentFormValues {
	return assignmentFormValues{
		Title:   strings.TrimSpace(r.PostFormValue("title")),
		Type:    strings.TrimSpace(r.PostFormValue("type")),
		Status:  strings.TrimSpace(r.PostFormValue("status")),
		Content: strings.TrimSpace(r.PostFormValue("content")),
		Points:  strings.TrimSpace(r.PostFormValue("points")),
		DueAt:   strings.TrimSpace(r.PostFormValue("due_at")),
	}
}

func (v assignmentFormValues) toCreateRequest() (*model.CreateAssignmentRequest, error) {
	points, err := strconv.Atoi(v.Points)
	if err != nil {
		return nil, err
	}
	dueAt, err := time.ParseInLocation(dueAtLayout, v.DueAt, time.Local)
	if err != nil {
		return nil, err
	}
	return &model.CreateAssignmentRequest{
		Type:    model.AssignmentType(v.Type),
		Status:  model.AssignmentStatus(v.Status),
		Title:   v.Title,
		Content: v.Content,
		Points:  points,
		DueAt:   dueAt,
	}, nil
}

func (v assignmentFormValues) toUpdateRequest() (model.UpdateAssignmentRequest, error) {
	points, err := strconv.Atoi(v.Points)
	if err != nil {
		return model.UpdateAssignmentRequest{}, err
	}
	dueAt, err := time.ParseInLocation(dueAtLayout, v.DueAt, time.Local)
	if err != nil {
		return model.UpdateAssignmentRequest{}, err
	}
	typ := model.AssignmentType(v.Type)
	status := model.AssignmentStatus(v.Status)
	return model.UpdateAssignmentRequest{
		Type:    &typ,
		Status:  &status,
		Title:   &v.Title,
		Content: &v.Content,
		Points:  &points,
		DueAt:   &dueAt,
	}, nil
}

func (h *UIHandlers) assignmentFormData(r *http.Request, mode FormMode, id string, values assignmentFormValues) *TemplateDataBuilder {
	title := "New assignment"
	if mode == FormModeEdit {
		title = "Edit assignment"
	}
	meta := PageMeta{Title: title, PageTitle: title, CurrentPage: PageAssignmentForm}
	return NewTemplateData(r, meta).
		With("Mode", mode).
		With("AssignmentID", id).
		With("Form", values).
		With("Types", model.AssignmentTypes())
}
