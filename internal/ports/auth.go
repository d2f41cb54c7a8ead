package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	domainauth "github.com/classboard/classboard/internal/domain/auth"
)

// SessionCodec serializes a session into a signed opaque string and back.
// The encoded form lives in the session cookie; a failed Decode means the
// cookie is absent semantics-wise (tampered, expired, or signed with a
// rotated secret).
type SessionCodec interface {
	Encode(sess domainauth.Session) (string, error)
	Decode(value string) (domainauth.Session, error)
}

// PasswordHasher derives and verifies salted password hashes.
// Verify must fail closed on malformed stored hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, stored string) bool
}
