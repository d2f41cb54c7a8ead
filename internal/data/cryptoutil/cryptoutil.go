package cryptoutil

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// PasswordHasher derives and verifies salted password hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, stored string) bool
}

// scrypt parameters. Verification reads the salt and key length back out of
// the stored hash, so these only govern newly derived hashes.
const (
	scryptN       = 16384
	scryptR       = 8
	scryptP       = 1
	saltLen       = 16
	derivedKeyLen = 48
)

// ScryptHasher implements PasswordHasher using scrypt.
// Stored format: hex(salt) + "." + hex(derivedKey).
type ScryptHasher struct{}

// NewScryptHasher constructs a new ScryptHasher.
func NewScryptHasher() *ScryptHasher {
	return &ScryptHasher{}
}

// Hash derives a salted key from plaintext and returns the storable form.
func (ScryptHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, derivedKeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	return hex.EncodeToString(salt) + "." + hex.EncodeToString(key), nil
}

// Verify re-derives the key with the stored salt and compares in constant
// time. A malformed stored hash (missing separator, bad hex) fails closed:
// the result is false, never an error or panic past this boundary.
func (ScryptHasher) Verify(plaintext, stored string) bool {
	saltHex, keyHex, found := strings.Cut(stored, ".")
	if !found {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := hex.DecodeString(keyHex)
	if err != nil || len(expected) == 0 {
		return false
	}
	derived, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, len(expected))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
