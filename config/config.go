package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database configuration
//   - http.go: HTTP server configuration
//   - session.go: Session cookie configuration
type AppConfig struct {
	// IsDev controls development mode behavior (hot reloading, relaxed
	// secret requirements, dev seeding). Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// SeedOnStart loads development seed data after migrations.
	// Only honored when IsDev is true.
	SeedOnStart bool `env:"SEED_ON_START" envDefault:"false"`

	// Database configuration
	Postgres DBConfig `envPrefix:"DB_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Session cookie configuration
	Session SessionConfig `envPrefix:"SESSION_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Session.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and APP_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}
