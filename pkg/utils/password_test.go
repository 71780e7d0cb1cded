package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("sturdy-pass-1")
	require.NoError(t, err)
	assert.NotEqual(t, "sturdy-pass-1", hash)

	assert.True(t, CheckPasswordHash("sturdy-pass-1", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	assert.NoError(t, ValidatePasswordStrength("sturdy-pass-1"))
	assert.NoError(t, ValidatePasswordStrength("abcd1234"))

	assert.Error(t, ValidatePasswordStrength("short1"))
	assert.Error(t, ValidatePasswordStrength("123456789"))
}
