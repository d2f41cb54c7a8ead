package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/classboard/classboard/internal/errors"
)

// errMsgFixBelow is shown above a form when one or more fields failed validation.
const errMsgFixBelow = "Please fix the errors below."

// errorOpts configures how a failed operation is rendered.
type errorOpts struct {
	// Err is the failure being rendered.
	Err error
	// Meta and Data re-render the originating form for validation and
	// conflict errors. When Data is nil those errors fall through to the
	// generic error page instead.
	Meta PageMeta
	Data *TemplateDataBuilder
	// FieldErrors overrides the message-to-field attribution derived from Err.
	FieldErrors map[string]string
}

// renderError routes a service error to the right response: form re-renders
// for user-correctable input, the unauthorized page for role failures, a
// login redirect for anonymous sessions, and a logged 500 for the rest.
func (h *UIHandlers) renderError(w http.ResponseWriter, r *http.Request, opts errorOpts) {
	err := opts.Err
	switch {
	case apperrors.IsValidation(err), apperrors.IsConflict(err), apperrors.IsForeignKey(err):
		if opts.Data != nil {
			h.renderFormError(w, r, opts)
			return
		}
		h.renderErrorPage(w, r, http.StatusBadRequest, "Invalid request", errorMessage(err))
	case apperrors.IsNotFound(err):
		h.renderErrorPage(w, r, http.StatusNotFound, "Not found", errorMessage(err))
	case apperrors.IsForbidden(err):
		h.Unauthorized(w, r)
	case apperrors.IsUnauthorized(err):
		redirectToLogin(w, r)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("method", r.Method),
			slog.Any("error", err),
		)
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Something went wrong",
			"An unexpected error occurred. Please try again.")
	}
}

// renderFormError re-renders the originating form with the failure attached.
// Field-attributed errors highlight the field; the rest surface as a banner.
func (h *UIHandlers) renderFormError(w http.ResponseWriter, r *http.Request, opts errorOpts) {
	status := http.StatusUnprocessableEntity
	if apperrors.IsConflict(opts.Err) {
		status = http.StatusConflict
	}

	fieldErrors := opts.FieldErrors
	if fieldErrors == nil {
		if field := apperrors.GetField(opts.Err); field != "" {
			fieldErrors = map[string]string{field: errorMessage(opts.Err)}
		}
	}

	builder := opts.Data
	if len(fieldErrors) > 0 {
		builder = builder.WithFieldErrors(fieldErrors).WithError(errMsgFixBelow)
	} else {
		builder = builder.WithError(errorMessage(opts.Err))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	h.renderPage(w, r, builder.Build())
}

// errorMessage extracts the user-facing message from an application error.
// Unknown errors get a generic message so internals never leak into HTML.
func errorMessage(err error) string {
	if code := apperrors.GetCode(err); code != "" {
		return err.Error()
	}
	return "An unexpected error occurred. Please try again."
}
