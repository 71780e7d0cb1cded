package utils

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"socialgram/pkg/apperr"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength enforces the password policy: at least 8
// characters and not entirely numeric.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return apperr.Validation("Password must be at least 8 characters long")
	}

	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return apperr.Validation("Password cannot be entirely numeric")
	}

	return nil
}
