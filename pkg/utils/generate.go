package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// ==================== UUID ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// ==================== VERIFICATION CODE ====================

// GenerateCode creates a numeric one-time code of the given length, each
// digit drawn uniformly. The code space is intentionally small; abuse is
// bounded by the short TTL, not by code entropy.
func GenerateCode(length int) string {
	if length <= 0 {
		length = 4
	}

	var b strings.Builder
	for i := 0; i < length; i++ {
		fmt.Fprintf(&b, "%d", rand.Intn(10))
	}

	return b.String()
}

// ==================== SIGNUP DEFAULTS ====================

// GenerateUsername builds the auto-assigned username for a fresh account.
// The user replaces it during profile completion.
func GenerateUsername() string {
	id := uuid.New().String()
	return "user_" + strings.ReplaceAll(id, "-", "")[:12]
}

// GeneratePassword builds the placeholder password assigned at signup when
// none was supplied. It is stored hashed like any other password.
func GeneratePassword() string {
	return uuid.New().String()
}
