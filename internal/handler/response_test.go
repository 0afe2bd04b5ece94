package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prep-tracker/internal/apperror"
)

// =========================================================================
// ERROR MAPPING TESTS
// =========================================================================

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", apperror.ValidationFailed("name", "name is required"), http.StatusBadRequest, "validation_error"},
		{"unauthorized", apperror.Unauthorized("not logged in"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("goal", "abc"), http.StatusNotFound, "not_found"},
		{"conflict", apperror.Conflict("user", "email already registered"), http.StatusConflict, "conflict"},
		{"unavailable", apperror.Unavailable("ai gateway", "generation failed"), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantType, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

// Wrapped errors must still map: services return fmt.Errorf("...: %w", repoErr).
func TestWriteError_UnwrapsChains(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("loading goal: %w", apperror.NotFound("goal", "abc"))
	writeError(rec, wrapped)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// Raw internal errors must never leak their text to the client.
func TestWriteError_UnknownErrorsAreGeneric500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("sql: database file is corrupted at /var/data/prep.db"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal_error", resp.Error)
	assert.NotContains(t, resp.Message, "sql")
	assert.NotContains(t, resp.Message, "/var/data")
}

// =========================================================================
// QUERY PARSING TESTS
// =========================================================================

func TestQueryInt(t *testing.T) {
	cases := []struct {
		url  string
		want int
	}{
		{"/x?limit=25", 25},
		{"/x?limit=0", 0},
		{"/x?limit=-5", -5}, // clamping is the service's job
		{"/x", 20},
		{"/x?limit=", 20},
		{"/x?limit=abc", 20},
		{"/x?limit=1.5", 20},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, tc.url, nil)
		assert.Equal(t, tc.want, queryInt(r, "limit", 20), "url %s", tc.url)
	}
}
