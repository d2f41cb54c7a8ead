package httpx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	apperrors "github.com/classboard/classboard/internal/errors"
	"github.com/classboard/classboard/internal/http/validation"
	"github.com/classboard/classboard/internal/service"
)

// safeRedirectPath validates a redirectTo candidate. Only same-site absolute
// paths survive; anything that could send the browser off-site collapses to "/".
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	if !strings.HasPrefix(candidate, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	if strings.Contains(candidate, "\\") {
		return "/"
	}
	return candidate
}

// setSessionCookie encodes the session and writes the signed cookie.
// SameSite=Lax keeps the cookie on top-level navigations, which is what lets
// the redirectTo flow resume after login.
func (h *UIHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, sess domainauth.Session) error {
	value, err := h.sessions.Codec.Encode(sess)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     h.sessions.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isRequestSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
	if h.sessionTTL > 0 {
		cookie.MaxAge = int(h.sessionTTL.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// clearSessionCookie expires the session cookie immediately.
func (h *UIHandlers) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessions.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isRequestSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// LoginPage renders the login form. Signed-in users are sent home instead.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.sessions.SessionFromRequest(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	redirectTo := safeRedirectPath(r.URL.Query().Get("redirectTo"))
	data := h.loginFormData(r, redirectTo, "").Build()
	h.renderPage(w, r, data)
}

// LoginSubmit verifies the credentials, sets the session cookie, and resumes
// the redirectTo continuation.
func (h *UIHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	redirectTo := safeRedirectPath(r.PostFormValue("redirectTo"))

	sess, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			// The same generic message lands on both fields so the form
			// cannot reveal which half of the credential was wrong.
			msg := err.Error()
			data := h.loginFormData(r, redirectTo, username).
				WithError(msg).
				WithFieldErrors(map[string]string{"username": msg, "password": msg}).
				Build()
			h.renderPage(w, r, data)
			return
		}
		h.renderError(w, r, errorOpts{Err: err})
		return
	}

	if err := h.setSessionCookie(w, r, *sess); err != nil {
		h.logger.ErrorContext(r.Context(), "session cookie encode failed", slog.Any("error", err))
		h.renderError(w, r, errorOpts{Err: err})
		return
	}
	http.Redirect(w, r, redirectTo, http.StatusSeeOther)
}

func (h *UIHandlers) loginFormData(r *http.Request, redirectTo, username string) *TemplateDataBuilder {
	meta := PageMeta{Title: "Sign in", PageTitle: "Sign in", CurrentPage: PageLogin}
	return NewTemplateData(r, meta).
		With("RedirectTo", redirectTo).
		With("Username", username)
}

// SignupPage renders the self-service registration form.
func (h *UIHandlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	if h.sessions.SessionFromRequest(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := h.signupFormData(r, "", "").Build()
	h.renderPage(w, r, data)
}

// SignupSubmit registers a student account and logs the new user in.
func (h *UIHandlers) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	fieldErrors := validation.New().
		Validate("name", name, validation.Required("Name", 128)).
		Validate("username", username, validation.Required("Username", 64)).
		Validate("password", password, validation.RequiredRange("Password", 8, 128)).
		Errors()
	if len(fieldErrors) > 0 {
		h.renderError(w, r, errorOpts{
			Err:         apperrors.Validation(errMsgFixBelow),
			Data:        h.signupFormData(r, name, username),
			FieldErrors: fieldErrors,
		})
		return
	}

	sess, err := h.auth.Signup(r.Context(), service.SignupRequest{
		Name:     name,
		Username: username,
		Password: password,
	})
	if err != nil {
		h.renderError(w, r, errorOpts{
			Err:  err,
			Data: h.signupFormData(r, name, username),
		})
		return
	}

	if err := h.setSessionCookie(w, r, *sess); err != nil {
		h.logger.ErrorContext(r.Context(), "session cookie encode failed", slog.Any("error", err))
		h.renderError(w, r, errorOpts{Err: err})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *UIHandlers) signupFormData(r *http.Request, name, username string) *TemplateDataBuilder {
	meta := PageMeta{Title: "Sign up", PageTitle: "Create your account", CurrentPage: PageSignup}
	return NewTemplateData(r, meta).
		With("Name", name).
		With("Username", username)
}

// Logout clears the session cookie and returns to the login page.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
