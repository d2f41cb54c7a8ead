package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/classboard/classboard/config"
	"github.com/classboard/classboard/internal/adapters/cookiesession"
	"github.com/classboard/classboard/internal/data"
	"github.com/classboard/classboard/internal/data/cryptoutil"
	"github.com/classboard/classboard/internal/ports"
	"github.com/classboard/classboard/internal/service"
)

// ServiceContainer holds the constructed services and auth adapters.
type ServiceContainer struct {
	Users       *service.UserService
	Assignments *service.AssignmentService
	Auth        *service.AuthService
	Codec       ports.SessionCodec
	Hasher      ports.PasswordHasher
}

// BuildServices wires repositories and adapters into the service layer.
func BuildServices(db *sql.DB, cfg config.AppConfig, logger *slog.Logger) ServiceContainer {
	if logger == nil {
		logger = slog.Default()
	}

	userRepo := data.NewUserRepo(db)
	assignmentRepo := data.NewAssignmentRepo(db)

	hasher := cryptoutil.NewScryptHasher()

	secret := cfg.Session.Secret
	if secret == "" && cfg.IsDev {
		// LoadConfig rejects an empty secret outside dev mode.
		secret = "dev-insecure-session-secret"
		logger.Warn("SESSION_SECRET not set, using insecure development secret")
	}
	codec := cookiesession.New(cookiesession.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     secret,
		TTL:        cfg.Session.TTL,
	})

	return ServiceContainer{
		Users:       service.NewUserService(service.UserServiceOptions{Users: userRepo, Hasher: hasher}),
		Assignments: service.NewAssignmentService(service.AssignmentServiceOptions{Assignments: assignmentRepo}),
		Auth:        service.NewAuthService(service.AuthServiceOptions{Users: userRepo, Hasher: hasher}),
		Codec:       codec,
		Hasher:      hasher,
	}
}
