package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPConfig_Sanitize_ClampsCompressionLevel(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 0}
	h.Sanitize()
	assert.Equal(t, 1, h.CompressionLevel)

	h = HTTPConfig{CompressionLevel: 42}
	h.Sanitize()
	assert.Equal(t, 9, h.CompressionLevel)
}

func TestSessionConfig_Sanitize_ClampsTTL(t *testing.T) {
	s := SessionConfig{TTL: time.Second}
	s.Sanitize()
	assert.Equal(t, time.Minute, s.TTL)

	s = SessionConfig{TTL: 365 * 24 * time.Hour}
	s.Sanitize()
	assert.Equal(t, 30*24*time.Hour, s.TTL)
}

func TestSessionConfig_Sanitize_DefaultsCookieName(t *testing.T) {
	s := SessionConfig{TTL: time.Hour}
	s.Sanitize()
	assert.Equal(t, DefaultSessionCookieName, s.CookieName)
}

func TestSessionConfig_Validate(t *testing.T) {
	s := SessionConfig{}
	assert.Error(t, s.Validate(false))
	assert.NoError(t, s.Validate(true))

	s.Secret = "super-secret"
	assert.NoError(t, s.Validate(false))
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	c := AppConfig{}
	c.Sanitize()
	assert.True(t, c.IsDev)
}
