package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/repository"
	"github.com/templui/downloadzone/internal/service"
	"github.com/templui/downloadzone/internal/validation"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    validation.Field("site_url", errors.New("site_url must be a valid URL")),
			status: http.StatusBadRequest,
			body:   `{"detail":"site_url must be a valid URL","field":"site_url"}`,
		},
		{
			name:   "param",
			err:    &paramError{field: "page", message: "page must be an integer"},
			status: http.StatusUnprocessableEntity,
			body:   `{"detail":"page must be an integer","field":"page"}`,
		},
		{
			name:   "challenge",
			err:    &service.ChallengeError{Message: "Captcha expired"},
			status: http.StatusBadRequest,
			body:   `{"detail":"Captcha expired"}`,
		},
		{
			name:   "rate limit",
			err:    &service.RateLimitError{Limit: 10, Bulk: true},
			status: http.StatusTooManyRequests,
			body:   `{"detail":"Daily submission limit (10) exceeded","limit":10}`,
		},
		{
			name:   "wrapped not found",
			err:    fmt.Errorf("failed to approve: %w", repository.ErrSubmissionNotFound),
			status: http.StatusNotFound,
			body:   `{"detail":"Submission not found"}`,
		},
		{
			name:   "bad request sentinel",
			err:    service.ErrCategoryExists,
			status: http.StatusBadRequest,
			body:   `{"detail":"Category already exists"}`,
		},
		{
			name:   "conflict",
			err:    service.ErrSettingsConflict,
			status: http.StatusConflict,
		},
		{
			name:   "not configured",
			err:    service.ErrStorageNotConfigured,
			status: http.StatusInternalServerError,
			body:   `{"detail":"object storage not configured"}`,
		},
		{
			name:   "unknown",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
			body:   `{"detail":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&limit=0&bad=x", nil)

	v, err := queryInt(r, "page", 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = queryInt(r, "missing", 50, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 50, v)

	_, err = queryInt(r, "limit", 50, 1, 100)
	var perr *paramError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "limit must be between 1 and 100", perr.message)

	_, err = queryInt(r, "bad", 1, 1, 100)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad", perr.field)
}

func TestQueryDate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?from=2024-02-29&to=2023-02-29", nil)

	v, err := queryDate(r, "from")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v)

	_, err = queryDate(r, "to")
	assert.Error(t, err)

	v, err = queryDate(r, "none")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, decodeJSON(r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	assert.NoError(t, decodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	var perr *paramError
	assert.ErrorAs(t, decodeJSON(r, &dst), &perr)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`"`+strings.Repeat("a", maxBodyBytes)+`"`))
	assert.ErrorAs(t, decodeJSON(r, &dst), &perr)
}
