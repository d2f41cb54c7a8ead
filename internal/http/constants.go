package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
// These constants ensure consistency across UI handlers and template mapping.
const (
	// Main navigation pages.
	PageHome = "home"

	// User management pages (admin only).
	PageUsers    = "users"
	PageUser     = "user" // detail view
	PageUserForm = "user-form"

	// Assignment pages.
	PageAssignments    = "assignments"
	PageAssignment     = "assignment" // detail view
	PageAssignmentForm = "assignment-form"

	// Auth pages.
	PageLogin  = "login"
	PageSignup = "signup"

	// Error pages.
	PageUnauthorized = "unauthorized"
)

// FormMode represents the mode of a form (create or edit).
// Using a dedicated type improves compile-time checks and prevents typos.
type FormMode string

const (
	// FormModeEdit indicates the form is in edit mode.
	FormModeEdit FormMode = "edit"
	// FormModeCreate indicates the form is in create mode.
	FormModeCreate FormMode = "create"
)

// Content templates are defined once and reused to avoid per-call allocations.
//
//nolint:gochecknoglobals // static read-only lookup for templates; avoids per-call allocations
var contentTemplates = map[string]string{
	PageHome:           "home-content",
	PageUsers:          "users-content",
	PageUser:           "user-view-content",
	PageUserForm:       "user-form-content",
	PageAssignments:    "assignments-content",
	PageAssignment:     "assignment-view-content",
	PageAssignmentForm: "assignment-form-content",
	PageLogin:          "login-content",
	PageSignup:         "signup-content",
	PageUnauthorized:   "unauthorized-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
// This is the single source of truth for page-to-template mapping.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to home-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "home-content"
}
