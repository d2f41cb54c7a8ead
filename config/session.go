package config

import (
	"errors"
	"time"
)

const (
	// DefaultSessionCookieName is the cookie carrying the signed session payload.
	DefaultSessionCookieName = "__user_session"

	minSessionTTL = time.Minute
	maxSessionTTL = 30 * 24 * time.Hour
)

// SessionConfig contains signed-cookie session configuration.
//
// The session cookie is the sole source of truth for authentication state;
// rotating Secret invalidates every outstanding session.
type SessionConfig struct {
	// Secret signs session cookies. Required outside development mode.
	Secret string `env:"SECRET"`

	// TTL is the session lifetime. Cookies older than this fail verification.
	TTL time.Duration `env:"TTL" envDefault:"24h"`

	// CookieName overrides the session cookie name.
	CookieName string `env:"COOKIE_NAME" envDefault:"__user_session"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL < minSessionTTL {
		s.TTL = minSessionTTL
	}
	if s.TTL > maxSessionTTL {
		s.TTL = maxSessionTTL
	}
	if s.CookieName == "" {
		s.CookieName = DefaultSessionCookieName
	}
}

// Validate checks that required secrets are present. Development mode may
// run without a configured secret; production must not.
func (s *SessionConfig) Validate(isDev bool) error {
	if s.Secret == "" && !isDev {
		return errors.New("SESSION_SECRET is required outside development mode")
	}
	return nil
}
