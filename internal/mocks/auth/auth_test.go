package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
)

func TestFakeHasher_RoundTrip(t *testing.T) {
	h := &FakeHasher{}

	stored, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.Equal(t, "hashed:hunter22", stored)

	assert.True(t, h.Verify("hunter22", stored))
	assert.False(t, h.Verify("wrong", stored))
	assert.False(t, h.Verify("hunter22", "hunter22"))
}

func TestFakeHasher_HashErr(t *testing.T) {
	h := &FakeHasher{HashErr: errors.New("kdf unavailable")}

	_, err := h.Hash("hunter22")
	require.Error(t, err)
}

func TestFakeHasher_CustomFuncs(t *testing.T) {
	h := &FakeHasher{
		HashFunc:   func(string) (string, error) { return "fixed", nil },
		VerifyFunc: func(_, stored string) bool { return stored == "fixed" },
	}

	stored, err := h.Hash("anything")
	require.NoError(t, err)
	assert.Equal(t, "fixed", stored)
	assert.True(t, h.Verify("anything", stored))
}

func TestFakeCodec_RoundTrip(t *testing.T) {
	codec := NewFakeCodec()
	sess := domainauth.Session{
		UserID:   "u1",
		Username: "ghopper",
		Name:     "Grace Hopper",
		Role:     domainauth.RoleTeacher,
	}

	token, err := codec.Encode(sess)
	require.NoError(t, err)
	assert.Equal(t, "tok-u1", token)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, sess, decoded)
}

func TestFakeCodec_UnknownToken(t *testing.T) {
	codec := NewFakeCodec()

	_, err := codec.Decode("tok-never-issued")
	require.Error(t, err)
}

func TestFakeCodec_CustomFuncs(t *testing.T) {
	codec := NewFakeCodec()
	codec.DecodeFunc = func(value string) (domainauth.Session, error) {
		if value != "magic" {
			return domainauth.Session{}, errors.New("bad token")
		}
		return domainauth.Session{UserID: "u9"}, nil
	}

	sess, err := codec.Decode("magic")
	require.NoError(t, err)
	assert.Equal(t, "u9", sess.UserID)

	_, err = codec.Decode("other")
	require.Error(t, err)
}
