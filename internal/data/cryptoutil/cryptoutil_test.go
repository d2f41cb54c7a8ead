package cryptoutil

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScryptHasher_RoundTrip(t *testing.T) {
	h := NewScryptHasher()

	stored, err := h.Hash("correct-horse-battery")
	require.NoError(t, err)

	assert.True(t, h.Verify("correct-horse-battery", stored))
	assert.False(t, h.Verify("wrong-password", stored))
}

func TestScryptHasher_StoredFormat(t *testing.T) {
	h := NewScryptHasher()

	stored, err := h.Hash("secret-password")
	require.NoError(t, err)

	saltHex, keyHex, found := strings.Cut(stored, ".")
	require.True(t, found)

	salt, err := hex.DecodeString(saltHex)
	require.NoError(t, err)
	assert.Len(t, salt, 16)

	key, err := hex.DecodeString(keyHex)
	require.NoError(t, err)
	assert.Len(t, key, 48)
}

func TestScryptHasher_UniqueSalts(t *testing.T) {
	h := NewScryptHasher()

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash gets a fresh salt")
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestScryptHasher_MalformedStoredHashFailsClosed(t *testing.T) {
	h := NewScryptHasher()

	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"no separator", "deadbeefdeadbeef"},
		{"bad salt hex", "zz.deadbeef"},
		{"bad key hex", "deadbeef.zz"},
		{"empty salt", ".deadbeef"},
		{"empty key", "deadbeef."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, h.Verify("any-password", tt.stored))
		})
	}
}

func TestScryptHasher_TamperedHashFails(t *testing.T) {
	h := NewScryptHasher()

	stored, err := h.Hash("secret-password")
	require.NoError(t, err)

	// Flip the final hex digit of the derived key.
	tampered := []byte(stored)
	last := tampered[len(tampered)-1]
	if last == 'a' {
		tampered[len(tampered)-1] = 'b'
	} else {
		tampered[len(tampered)-1] = 'a'
	}
	assert.False(t, h.Verify("secret-password", string(tampered)))
}
