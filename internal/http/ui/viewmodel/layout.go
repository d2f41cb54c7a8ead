package viewmodel

// User represents the authenticated user context exposed to templates.
type User struct {
	Name     string
	Username string
	Role     string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	IsAdmin         bool
	IsTeacher       bool
	IsStudent       bool
	User            *User
}
