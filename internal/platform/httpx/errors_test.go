package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"field", FieldError{Field: "from", Reason: "expected YYYY-MM-DD"}, http.StatusBadRequest},
		{"validation", fmt.Errorf("wrap: %w", ErrValidation), http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			assert.NotContains(t, body.Detail, "db down")
		})
	}
}

func TestFieldErrorDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, FieldError{Field: "limit"})

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "limit", body.Field)
	assert.Equal(t, "invalid limit", body.Detail)
	assert.True(t, errors.Is(FieldError{Field: "x"}, ErrValidation))
}
