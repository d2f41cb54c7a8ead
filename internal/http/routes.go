package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
)

// RouterOptions groups everything NewRouter needs to build the UI surface.
type RouterOptions struct {
	Users        UserProvider
	Assignments  AssignmentProvider
	Auth         AuthProvider
	Sessions     SessionAuth
	SessionTTL   time.Duration
	Renderer     *TemplateRenderer
	StaticFS     fs.FS
	CookieDomain string
	IsDev        bool
	Logger       *slog.Logger
}

type routeConfig struct {
	sessions SessionAuth
	csrf     func(http.Handler) http.Handler
}

// authWrap requires any valid session plus CSRF protection.
func (c routeConfig) authWrap(h http.HandlerFunc) http.Handler {
	return RequireAuthBrowser(c.sessions)(c.csrf(h))
}

// adminWrap restricts a route to admins.
func (c routeConfig) adminWrap(h http.HandlerFunc) http.Handler {
	return RequireRoleBrowser(c.sessions, domainauth.RoleAdmin)(c.csrf(h))
}

// manageWrap restricts a route to the roles that manage assignments.
func (c routeConfig) manageWrap(h http.HandlerFunc) http.Handler {
	return RequireRoleBrowser(c.sessions, domainauth.RoleAdmin, domainauth.RoleTeacher)(c.csrf(h))
}

// anonWrap leaves a route open but still decodes the session and issues the
// CSRF cookie, so login and signup forms can carry a token.
func (c routeConfig) anonWrap(h http.HandlerFunc) http.Handler {
	return OptionalAuth(c.sessions)(c.csrf(h))
}

// NewRouter builds the HTTP handler tree: health, static assets, auth pages,
// and the role-gated dashboard routes. Unmatched paths render the custom 404.
func NewRouter(opts RouterOptions) http.Handler {
	ui := NewUIHandlers(UIHandlersOptions{
		Renderer:    opts.Renderer,
		Users:       opts.Users,
		Assignments: opts.Assignments,
		Auth:        opts.Auth,
		Sessions:    opts.Sessions,
		SessionTTL:  opts.SessionTTL,
		IsDev:       opts.IsDev,
		Logger:      opts.Logger,
	})

	cfg := routeConfig{
		sessions: opts.Sessions,
		csrf: CSRFProtection(CSRFConfig{
			CookieDomain: opts.CookieDomain,
		}),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Health)
	mux.HandleFunc("HEAD /healthz", Health)

	if opts.StaticFS != nil {
		mux.Handle("GET /static/", staticWithCacheHeaders(opts.StaticFS, opts.IsDev))
	}

	registerUIAuthRoutes(mux, cfg, ui)
	registerUIUserRoutes(mux, cfg, ui)
	registerUIAssignmentRoutes(mux, cfg, ui)

	mux.Handle("GET /{$}", cfg.authWrap(ui.Home))
	mux.Handle("GET /unauthorized", cfg.anonWrap(ui.Unauthorized))

	return notFoundHandler(mux, ui)
}

func registerUIAuthRoutes(mux *http.ServeMux, cfg routeConfig, ui *UIHandlers) {
	mux.Handle("GET /login", cfg.anonWrap(ui.LoginPage))
	mux.Handle("POST /login", cfg.anonWrap(ui.LoginSubmit))
	mux.Handle("GET /signup", cfg.anonWrap(ui.SignupPage))
	mux.Handle("POST /signup", cfg.anonWrap(ui.SignupSubmit))
	mux.Handle("POST /logout", cfg.anonWrap(ui.Logout))
}

func registerUIUserRoutes(mux *http.ServeMux, cfg routeConfig, ui *UIHandlers) {
	mux.Handle("GET /users", cfg.adminWrap(ui.UsersList))
	mux.Handle("GET /users/new", cfg.adminWrap(ui.UserNew))
	mux.Handle("POST /users", cfg.adminWrap(ui.UserCreate))
	mux.Handle("GET /users/{id}", cfg.adminWrap(ui.UserView))
	mux.Handle("GET /users/{id}/edit", cfg.adminWrap(ui.UserEdit))
	mux.Handle("POST /users/{id}", cfg.adminWrap(ui.UserUpdate))
	mux.Handle("POST /users/{id}/delete", cfg.adminWrap(ui.UserDelete))
}

func registerUIAssignmentRoutes(mux *http.ServeMux, cfg routeConfig, ui *UIHandlers) {
	mux.Handle("GET /assignments", cfg.manageWrap(ui.AssignmentsList))
	mux.Handle("GET /assignments/new", cfg.manageWrap(ui.AssignmentNew))
	mux.Handle("POST /assignments", cfg.manageWrap(ui.AssignmentCreate))
	mux.Handle("GET /assignments/{id}", cfg.manageWrap(ui.AssignmentView))
	mux.Handle("GET /assignments/{id}/edit", cfg.manageWrap(ui.AssignmentEdit))
	mux.Handle("POST /assignments/{id}", cfg.manageWrap(ui.AssignmentUpdate))
	mux.Handle("POST /assignments/{id}/toggle", cfg.manageWrap(ui.AssignmentToggleStatus))
	mux.Handle("POST /assignments/{id}/delete", cfg.manageWrap(ui.AssignmentDelete))
}

// notFoundHandler routes unmatched paths to the custom 404 page instead of
// the mux's plain-text default.
func notFoundHandler(mux *http.ServeMux, ui *UIHandlers) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern == "" {
			ui.NotFound(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// staticWithCacheHeaders serves embedded assets. Production responses get a
// long max-age; dev responses stay uncached so edits show up on reload.
func staticWithCacheHeaders(staticFS fs.FS, isDev bool) http.Handler {
	fileServer := http.StripPrefix("/static/", http.FileServerFS(staticFS))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-store")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		}
		fileServer.ServeHTTP(w, r)
	})
}
