package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{Validation("bad input"), "VALIDATION_ERROR", http.StatusBadRequest},
		{Conflict("taken"), "CONFLICT", http.StatusConflict},
		{NotFound("missing"), "NOT_FOUND", http.StatusNotFound},
		{Unauthenticated("who"), "UNAUTHENTICATED", http.StatusUnauthorized},
		{Forbidden("no"), "FORBIDDEN", http.StatusForbidden},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.HTTPStatus)
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("pool exhausted")
	err := Internal(cause)

	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.Equal(t, "Internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", Conflict("taken"))

	var appErr *AppError
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestWithCauseClones(t *testing.T) {
	base := NotFound("missing")
	cause := errors.New("no rows")

	withCause := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.ErrorIs(t, withCause, cause)
	assert.Equal(t, base.Code, withCause.Code)
}
