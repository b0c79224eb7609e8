package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/rackmate/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := map[string]int{
		domain.EINVALID:   http.StatusBadRequest,
		domain.EFORBIDDEN: http.StatusForbidden,
		domain.ENOTFOUND:  http.StatusNotFound,
		domain.ECONFLICT:  http.StatusConflict,
		domain.EUNAVAIL:   http.StatusServiceUnavailable,
		domain.EINTERNAL:  http.StatusInternalServerError,
		"something_else":  http.StatusInternalServerError,
	}

	for code, want := range tests {
		assert.Equal(t, want, ErrorCodeToHTTPStatus(code), code)
	}
}

func TestErrorResponse_InternalErrorHidesDetails(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	err := domain.Internal(errors.New("dial tcp 10.0.0.5:4433: connection refused"), "identity.kratos_signup", "flow failed")

	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	rec := httptest.NewRecorder()
	ErrorResponse(rec, req, logger, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.NotContains(t, rec.Body.String(), "identity.kratos_signup")
	assert.Contains(t, logs.String(), "connection refused")
}

func TestErrorResponse_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	NotFoundResponse(rec, req, newTestLogger())

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, domain.ENOTFOUND, body.Error.Code)
	assert.Equal(t, "The requested page was not found", body.Error.Message)
}

func TestErrorResponse_HTMXGetsText(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/signup", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	InternalErrorResponse(rec, req, newTestLogger(), errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Header().Get("Content-Type"), "json")
	assert.NotContains(t, rec.Body.String(), "boom")
}
