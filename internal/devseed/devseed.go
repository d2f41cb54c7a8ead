// Package devseed populates a development database with sample accounts and
// assignments. Seeding is idempotent: rows that already exist are skipped.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/classboard/classboard/internal/data"
	"github.com/classboard/classboard/internal/data/cryptoutil"
	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
	"github.com/classboard/classboard/internal/service"
)

// DefaultPassword is the password assigned to every seeded account.
const DefaultPassword = "classboard-dev"

// Services bundles the dependencies needed for development seeding.
type Services struct {
	DB          *sql.DB
	users       *service.UserService
	assignments *service.AssignmentService
	userRepo    *data.UserRepo
}

// NewServices constructs the services required for seeding using the provided DB.
func NewServices(db *sql.DB) Services {
	userRepo := data.NewUserRepo(db)
	assignmentRepo := data.NewAssignmentRepo(db)
	hasher := cryptoutil.NewScryptHasher()

	return Services{
		DB:          db,
		users:       service.NewUserService(service.UserServiceOptions{Users: userRepo, Hasher: hasher}),
		assignments: service.NewAssignmentService(service.AssignmentServiceOptions{Assignments: assignmentRepo}),
		userRepo:    userRepo,
	}
}

type seedUser struct {
	Name     string
	Username string
	Role     domainauth.Role
}

type seedAssignment struct {
	Author  string // username of the authoring teacher
	Type    model.AssignmentType
	Status  model.AssignmentStatus
	Title   string
	Content string
	Points  int
	DueIn   time.Duration
}

func seedUsers() []seedUser {
	return []seedUser{
		{Name: "Site Admin", Username: "admin", Role: domainauth.RoleAdmin},
		{Name: "Grace Hopper", Username: "ghopper", Role: domainauth.RoleTeacher},
		{Name: "Alan Turing", Username: "aturing", Role: domainauth.RoleTeacher},
		{Name: "Ada Lovelace", Username: "alovelace", Role: domainauth.RoleStudent},
		{Name: "Katherine Johnson", Username: "kjohnson", Role: domainauth.RoleStudent},
		{Name: "Edsger Dijkstra", Username: "edijkstra", Role: domainauth.RoleStudent},
	}
}

func seedAssignments() []seedAssignment {
	return []seedAssignment{
		{
			Author: "ghopper", Type: model.AssignmentTypeHomework, Status: model.AssignmentStatusOpen,
			Title:   "Compilers: lexing warm-up",
			Content: "Write a tokenizer for a small arithmetic language. Submit source plus a short design note.",
			Points:  50, DueIn: 7 * 24 * time.Hour,
		},
		{
			Author: "ghopper", Type: model.AssignmentTypeQuiz, Status: model.AssignmentStatusOpen,
			Title:   "Quiz 1: grammars and automata",
			Content: "Twenty questions covering regular languages, NFAs, and pumping lemma basics.",
			Points:  20, DueIn: 3 * 24 * time.Hour,
		},
		{
			Author: "aturing", Type: model.AssignmentTypeProject, Status: model.AssignmentStatusOpen,
			Title:   "Build a tiny state machine simulator",
			Content: "Implement a deterministic state machine runner with a transition table loaded from a file. Include tests.",
			Points:  100, DueIn: 21 * 24 * time.Hour,
		},
		{
			Author: "aturing", Type: model.AssignmentTypeHomework, Status: model.AssignmentStatusClosed,
			Title:   "Reading: decidability notes",
			Content: "Read the provided notes on decidability and write a one-page summary.",
			Points:  10, DueIn: -7 * 24 * time.Hour,
		},
	}
}

// Run executes the full development seeding workflow against the provided DB.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	byUsername, err := ensureUsers(ctx, svcs, logger)
	if err != nil {
		return err
	}
	return ensureAssignments(ctx, svcs, byUsername, logger)
}

// ensureUsers creates the sample accounts, skipping any that already exist,
// and returns the full set keyed by username.
func ensureUsers(ctx context.Context, svcs Services, logger *slog.Logger) (map[string]*model.User, error) {
	byUsername := make(map[string]*model.User)
	for _, su := range seedUsers() {
		created, err := svcs.users.Create(ctx, &model.CreateUserRequest{
			Name:     su.Name,
			Username: su.Username,
			Role:     su.Role,
			Password: DefaultPassword,
		})
		if err == nil {
			byUsername[su.Username] = created
			if logger != nil {
				logger.InfoContext(ctx, "seeded user", "username", su.Username, "role", su.Role)
			}
			continue
		}
		if !apperrors.IsConflict(err) {
			return nil, fmt.Errorf("seed user %q: %w", su.Username, err)
		}

		existing, getErr := svcs.userRepo.GetByUsername(ctx, su.Username)
		if getErr != nil {
			return nil, fmt.Errorf("lookup existing user %q: %w", su.Username, getErr)
		}
		byUsername[su.Username] = existing
		if logger != nil {
			logger.DebugContext(ctx, "user already seeded", "username", su.Username)
		}
	}
	return byUsername, nil
}

// ensureAssignments creates the sample assignments under each author's
// session. Titles already present for the author are skipped.
func ensureAssignments(
	ctx context.Context,
	svcs Services,
	byUsername map[string]*model.User,
	logger *slog.Logger,
) error {
	for _, sa := range seedAssignments() {
		author, ok := byUsername[sa.Author]
		if !ok || author == nil {
			return fmt.Errorf("seed assignment %q: author %q not seeded", sa.Title, sa.Author)
		}

		exists, err := assignmentExists(ctx, svcs.DB, author.ID, sa.Title)
		if err != nil {
			return fmt.Errorf("check assignment %q: %w", sa.Title, err)
		}
		if exists {
			if logger != nil {
				logger.DebugContext(ctx, "assignment already seeded", "title", sa.Title)
			}
			continue
		}

		sess := domainauth.Session{
			UserID:   author.ID,
			Username: author.Username,
			Name:     author.Name,
			Role:     author.Role,
		}
		if _, err = svcs.assignments.Create(ctx, sess, &model.CreateAssignmentRequest{
			AuthorID: author.ID,
			Type:     sa.Type,
			Status:   sa.Status,
			Title:    sa.Title,
			Content:  sa.Content,
			Points:   sa.Points,
			DueAt:    time.Now().Add(sa.DueIn).Truncate(time.Minute),
		}); err != nil {
			return fmt.Errorf("seed assignment %q: %w", sa.Title, err)
		}
		if logger != nil {
			logger.InfoContext(ctx, "seeded assignment", "title", sa.Title, "author", sa.Author)
		}
	}
	return nil
}

func assignmentExists(ctx context.Context, db *sql.DB, authorID, title string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM assignments WHERE author_id = $1 AND title = $2)`,
		authorID, title,
	).Scan(&exists)
	return exists, err
}
