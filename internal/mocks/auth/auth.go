package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"errors"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.PasswordHasher = (*FakeHasher)(nil)
	_ ports.SessionCodec   = (*FakeCodec)(nil)
)

// FakeHasher is a transparent PasswordHasher: the "hash" is the plaintext
// with a marker prefix, so tests can assert on what was stored without
// paying for a real key derivation.
type FakeHasher struct {
	HashFunc   func(plaintext string) (string, error)
	VerifyFunc func(plaintext, stored string) bool

	// HashErr forces Hash to fail when set.
	HashErr error
}

const fakeHashPrefix = "hashed:"

// Hash returns the marker-prefixed plaintext, or HashErr when set.
func (f *FakeHasher) Hash(plaintext string) (string, error) {
	if f.HashFunc != nil {
		return f.HashFunc(plaintext)
	}
	if f.HashErr != nil {
		return "", f.HashErr
	}
	return fakeHashPrefix + plaintext, nil
}

// Verify accepts only values produced by Hash.
func (f *FakeHasher) Verify(plaintext, stored string) bool {
	if f.VerifyFunc != nil {
		return f.VerifyFunc(plaintext, stored)
	}
	return stored == fakeHashPrefix+plaintext
}

// FakeCodec round-trips sessions in memory keyed by an opaque token. It
// behaves like the real codec at the interface level: unknown or "tampered"
// values fail to decode.
type FakeCodec struct {
	EncodeFunc func(sess domainauth.Session) (string, error)
	DecodeFunc func(value string) (domainauth.Session, error)

	sessions map[string]domainauth.Session
}

// NewFakeCodec creates an empty FakeCodec.
func NewFakeCodec() *FakeCodec {
	return &FakeCodec{sessions: make(map[string]domainauth.Session)}
}

// Encode stores the session and returns its lookup token.
func (f *FakeCodec) Encode(sess domainauth.Session) (string, error) {
	if f.EncodeFunc != nil {
		return f.EncodeFunc(sess)
	}
	token := "tok-" + sess.UserID
	f.sessions[token] = sess
	return token, nil
}

// Decode returns the stored session or an error for unknown tokens.
func (f *FakeCodec) Decode(value string) (domainauth.Session, error) {
	if f.DecodeFunc != nil {
		return f.DecodeFunc(value)
	}
	sess, ok := f.sessions[value]
	if !ok {
		return domainauth.Session{}, errors.New("invalid session value")
	}
	return sess, nil
}
