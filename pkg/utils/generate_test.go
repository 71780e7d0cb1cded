package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateCode(4)
		assert.Len(t, code, 4)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestGenerateCodeDefaultLength(t *testing.T) {
	assert.Len(t, GenerateCode(0), 4)
	assert.Len(t, GenerateCode(-3), 4)
	assert.Len(t, GenerateCode(6), 6)
}

func TestGenerateUsername(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		username := GenerateUsername()
		assert.True(t, strings.HasPrefix(username, "user_"))
		assert.Len(t, username, len("user_")+12)
		assert.False(t, seen[username], "username %q repeated", username)
		seen[username] = true
	}
}
