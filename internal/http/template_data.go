package httpx

import (
	"net/http"

	"github.com/classboard/classboard/internal/http/ui/viewmodel"
)

// TemplateData is the map handed to templates. Keys are referenced by name in
// the template files, so additions are cheap but renames are not.
type TemplateData map[string]any

// TemplateDataBuilder accumulates template data for a page render.
type TemplateDataBuilder struct {
	data TemplateData
}

// NewTemplateData starts a builder pre-populated with the layout view model
// derived from the request (session, CSRF token) and the page metadata.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	b := &TemplateDataBuilder{data: TemplateData{}}
	b.data["Layout"] = buildLayout(r, meta)
	b.data["CSRFToken"] = GetCSRFToken(r)
	// Always present so templates can index fields without nil checks.
	b.data["Errors"] = map[string]string{}
	return b
}

// With sets an arbitrary key.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// WithPagination sets the pagination view model under "Pagination".
func (b *TemplateDataBuilder) WithPagination(p viewmodel.Pagination) *TemplateDataBuilder {
	b.data["Pagination"] = p
	return b
}

// WithError flags the render as carrying a user-facing error message.
func (b *TemplateDataBuilder) WithError(message string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = message
	return b
}

// WithFieldErrors attaches per-field validation messages under "Errors".
func (b *TemplateDataBuilder) WithFieldErrors(fieldErrors map[string]string) *TemplateDataBuilder {
	if len(fieldErrors) > 0 {
		b.data["Errors"] = fieldErrors
	}
	return b
}

// WithFlash attaches a one-off success message under "Flash".
func (b *TemplateDataBuilder) WithFlash(message string) *TemplateDataBuilder {
	if message != "" {
		b.data["Flash"] = message
	}
	return b
}

// Build returns the accumulated data map.
func (b *TemplateDataBuilder) Build() TemplateData {
	return b.data
}

// buildLayout derives the layout view model from the request context.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}

	if sess := GetSessionFromContext(r.Context()); sess != nil {
		layout.IsAuthenticated = true
		layout.IsAdmin = sess.IsAdmin()
		layout.IsTeacher = sess.IsTeacher()
		layout.IsStudent = sess.IsStudent()
		layout.User = &viewmodel.User{
			Name:     sess.Name,
			Username: sess.Username,
			Role:     string(sess.Role),
		}
	}
	return layout
}
