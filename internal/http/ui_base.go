package httpx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/domain/model"
	"github.com/classboard/classboard/internal/http/ui/viewmodel"
	"github.com/classboard/classboard/internal/service"
)

// UserProvider is the slice of the user service the UI handlers consume.
type UserProvider interface {
	Page(ctx context.Context, q string, page, pageSize int) (*service.UserPage, error)
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AssignmentProvider is the slice of the assignment service the UI handlers consume.
type AssignmentProvider interface {
	Page(ctx context.Context, sess domainauth.Session, q string, page, pageSize int) (*service.AssignmentPage, error)
	OpenPage(ctx context.Context, q string, page, pageSize int) (*service.AssignmentPage, error)
	Create(ctx context.Context, sess domainauth.Session, req *model.CreateAssignmentRequest) (*model.Assignment, error)
	GetByID(ctx context.Context, sess domainauth.Session, id string) (*model.AssignmentWithAuthor, error)
	Update(ctx context.Context, sess domainauth.Session, id string, req model.UpdateAssignmentRequest) (*model.Assignment, error)
	ToggleStatus(ctx context.Context, sess domainauth.Session, id string) (*model.Assignment, error)
	Delete(ctx context.Context, sess domainauth.Session, id string) (bool, error)
}

// AuthProvider is the slice of the auth service the UI handlers consume.
type AuthProvider interface {
	Login(ctx context.Context, username, password string) (*domainauth.Session, error)
	Signup(ctx context.Context, req service.SignupRequest) (*domainauth.Session, error)
}

// UIHandlersOptions groups dependencies for UIHandlers.
type UIHandlersOptions struct {
	Renderer    *TemplateRenderer
	Users       UserProvider
	Assignments AssignmentProvider
	Auth        AuthProvider
	Sessions    SessionAuth
	SessionTTL  time.Duration
	IsDev       bool
	Logger      *slog.Logger
}

// UIHandlers renders the server-side HTML views.
type UIHandlers struct {
	t           *TemplateRenderer
	users       UserProvider
	assignments AssignmentProvider
	auth        AuthProvider
	sessions    SessionAuth
	sessionTTL  time.Duration
	isDev       bool
	logger      *slog.Logger
}

// NewUIHandlers constructs the UI handler set.
func NewUIHandlers(opts UIHandlersOptions) *UIHandlers {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UIHandlers{
		t:           opts.Renderer,
		users:       opts.Users,
		assignments: opts.Assignments,
		auth:        opts.Auth,
		sessions:    opts.Sessions,
		sessionTTL:  opts.SessionTTL,
		isDev:       opts.IsDev,
		logger:      logger,
	}
}

// PageMeta describes the page chrome for a render.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// pageOpts carries the parsed list query parameters.
type pageOpts struct {
	Page     int
	PageSize int
	Q        string
}

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// getPageParams parses page and page_size, clamping them to sane bounds so a
// crafted URL cannot request an enormous page.
func getPageParams(q url.Values) (page, pageSize int) {
	page = parseIntQuery(q.Get("page"), defaultPage)
	if page < 1 {
		page = defaultPage
	}
	pageSize = parseIntQuery(q.Get("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func parseIntQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// listParams parses the full set of list query parameters for table pages.
func listParams(r *http.Request) pageOpts {
	q := r.URL.Query()
	page, pageSize := getPageParams(q)
	return pageOpts{Page: page, PageSize: pageSize, Q: q.Get("q")}
}

// buildPageURL rebuilds a list URL for a given page, preserving the filter
// parameters and dropping empties so URLs stay readable.
func buildPageURL(basePath string, opts pageOpts, page int) string {
	values := url.Values{}
	if opts.Q != "" {
		values.Set("q", opts.Q)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if opts.PageSize != defaultPageSize {
		values.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if len(values) == 0 {
		return basePath
	}
	return basePath + "?" + values.Encode()
}

// paginationFor derives the pagination view model for a rendered page of rows.
func paginationFor(basePath string, opts pageOpts, rowCount, total, totalPages int) viewmodel.Pagination {
	p := viewmodel.Pagination{
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalCount: total,
		TotalPages: totalPages,
		HasPrev:    opts.Page > 1,
		HasNext:    opts.Page < totalPages,
	}
	if rowCount > 0 {
		p.StartIndex = (opts.Page-1)*opts.PageSize + 1
		p.EndIndex = p.StartIndex + rowCount - 1
	}
	if p.HasPrev {
		p.PrevURL = buildPageURL(basePath, opts, opts.Page-1)
	}
	if p.HasNext {
		p.NextURL = buildPageURL(basePath, opts, opts.Page+1)
	}
	return p
}

// renderPage executes the full layout with the given data.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data TemplateData) {
	if err := h.t.RenderFull(w, r, data); err != nil {
		h.logAndRenderTemplateError(w, r, err)
	}
}

// logAndRenderTemplateError reports a failed template execution. The detail
// only reaches the response in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "render failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if h.isDev {
		fmt.Fprintf(w, "<h1>Template error</h1><pre>%s</pre>", err)
		return
	}
	fmt.Fprint(w, "<h1>Something went wrong</h1>")
}

// Home renders the dashboard with the shared open-assignments listing.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	opts := listParams(r)
	page, err := h.assignments.OpenPage(r.Context(), opts.Q, opts.Page, opts.PageSize)
	if err != nil {
		h.renderError(w, r, errorOpts{Err: err})
		return
	}

	meta := PageMeta{Title: "Dashboard", PageTitle: "Open Assignments", CurrentPage: PageHome}
	data := NewTemplateData(r, meta).
		With("Assignments", page.Rows).
		With("Query", opts.Q).
		WithPagination(paginationFor("/", opts, len(page.Rows), page.Total, page.TotalPages)).
		Build()
	h.renderPage(w, r, data)
}

// NotFound renders the custom 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderErrorPage(w, r, http.StatusNotFound, "Page not found",
		"The page you are looking for does not exist.")
}

// Unauthorized renders the page shown when a signed-in user lacks the role a
// route requires.
func (h *UIHandlers) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.renderErrorPage(w, r, http.StatusForbidden, "Unauthorized",
		"You do not have permission to view this page.")
}

func (h *UIHandlers) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	meta := PageMeta{Title: title, PageTitle: title, CurrentPage: PageUnauthorized}
	data := NewTemplateData(r, meta).
		With("StatusCode", status).
		With("Message", message).
		Build()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.t.RenderError(w, r, data); err != nil {
		h.logger.ErrorContext(r.Context(), "error page render failed", slog.Any("error", err))
	}
}
