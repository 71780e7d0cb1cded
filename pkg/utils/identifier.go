package utils

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"socialgram/pkg/apperr"
)

type IdentifierType string

const (
	IdentifierEmail    IdentifierType = "EMAIL"
	IdentifierPhone    IdentifierType = "PHONE"
	IdentifierUsername IdentifierType = "USERNAME"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^(\+\d{1,3})?\s?\(?\d{1,4}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)
	// Alphanumeric with at most one internal dot or underscore.
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+([._][a-zA-Z0-9]+)?$`)
)

// ClassifyIdentifier decides whether a raw user input is an email address,
// a phone number or a username. Phone numbers must survive a semantic
// parse-and-validate check, not just the digit pattern: the pattern alone
// accepts strings that are not dialable.
func ClassifyIdentifier(input string) (IdentifierType, error) {
	input = strings.TrimSpace(input)

	switch {
	case emailPattern.MatchString(input):
		return IdentifierEmail, nil
	case phonePattern.MatchString(input) && isDialableNumber(input):
		return IdentifierPhone, nil
	case usernamePattern.MatchString(input):
		return IdentifierUsername, nil
	default:
		return "", apperr.Validation("Identifier must be an email address, phone number or username")
	}
}

// isDialableNumber runs the strict check. Numbers without a country prefix
// are interpreted as US numbers.
func isDialableNumber(input string) bool {
	_, ok := parseDialableNumber(input)
	return ok
}

func parseDialableNumber(input string) (*phonenumbers.PhoneNumber, bool) {
	region := "US"
	if strings.HasPrefix(input, "+") {
		region = ""
	}

	num, err := phonenumbers.Parse(input, region)
	if err != nil {
		return nil, false
	}
	if !phonenumbers.IsValidNumber(num) {
		return nil, false
	}
	return num, true
}

// NormalizeIdentifier lower-cases emails and usernames and renders phone
// numbers in E.164 so every dialable spelling of a number maps to one stored
// identifier.
func NormalizeIdentifier(input string) string {
	input = strings.TrimSpace(input)

	if phonePattern.MatchString(input) {
		if num, ok := parseDialableNumber(input); ok {
			return phonenumbers.Format(num, phonenumbers.E164)
		}
	}

	return strings.ToLower(input)
}
