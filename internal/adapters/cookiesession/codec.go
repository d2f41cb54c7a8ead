package cookiesession

// Package cookiesession implements ports.SessionCodec on gorilla/securecookie.
// Sessions are HMAC-signed and carried entirely by the client; there is no
// server-side session state, so rotating the secret invalidates every
// outstanding session at once.

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.SessionCodec = (*Codec)(nil)

// Codec signs and verifies session payloads for a named cookie.
type Codec struct {
	name string
	sc   *securecookie.SecureCookie
	ttl  time.Duration
	now  func() time.Time
}

// Options configures a Codec.
type Options struct {
	// CookieName binds encoded values to the cookie they are stored in.
	CookieName string
	// Secret is the process-wide signing secret.
	Secret string
	// TTL bounds how long an encoded session verifies.
	TTL time.Duration
}

// New creates a Codec. The signing key is derived from the configured secret;
// securecookie requires a fixed-length key, so the secret is hashed rather
// than used raw.
func New(opts Options) *Codec {
	hashKey := sha256.Sum256([]byte(opts.Secret))
	sc := securecookie.New(hashKey[:], nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	if opts.TTL > 0 {
		sc.MaxAge(int(opts.TTL.Seconds()))
	}
	return &Codec{
		name: opts.CookieName,
		sc:   sc,
		ttl:  opts.TTL,
		now:  time.Now,
	}
}

// Encode serializes and signs a session. A zero ExpiresAt is stamped from
// the codec TTL so the payload itself records its deadline.
func (c *Codec) Encode(sess domainauth.Session) (string, error) {
	if sess.ExpiresAt.IsZero() && c.ttl > 0 {
		sess.ExpiresAt = c.now().Add(c.ttl)
	}
	value, err := c.sc.Encode(c.name, sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return value, nil
}

// Decode verifies the signature and returns the embedded session. Tampered
// values, values signed with a rotated secret, and expired sessions all
// return an error.
func (c *Codec) Decode(value string) (domainauth.Session, error) {
	var sess domainauth.Session
	if err := c.sc.Decode(c.name, value, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired(c.now()) {
		return domainauth.Session{}, fmt.Errorf("decode session: expired")
	}
	return sess, nil
}
