package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Deterministic(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	first := HashPassword("correct horse battery staple", salt)
	second := HashPassword("correct horse battery staple", salt)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestHashPassword_DiffersByPassword(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	assert.NotEqual(t, HashPassword("password-one", salt), HashPassword("password-two", salt))
}

func TestHashPassword_DiffersBySalt(t *testing.T) {
	t.Parallel()

	saltA, err := NewSalt()
	require.NoError(t, err)
	saltB, err := NewSalt()
	require.NoError(t, err)
	require.NotEqual(t, saltA, saltB)

	assert.NotEqual(t, HashPassword("same password", saltA), HashPassword("same password", saltB))
}

func TestNewSalt_HexEncoded(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	// 64 random bytes hex-encode to 128 characters
	assert.Len(t, salt, 128)
	for _, c := range salt {
		assert.Contains(t, "0123456789abcdef", string(c))
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)
	hash := HashPassword("my secret", salt)

	assert.True(t, VerifyPassword("my secret", salt, hash))
	assert.False(t, VerifyPassword("not my secret", salt, hash))
	assert.False(t, VerifyPassword("my secret", "wrong salt", hash))
}
