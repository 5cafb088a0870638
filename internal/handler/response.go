package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/templui/downloadzone/internal/ctxkeys"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
	"github.com/templui/downloadzone/internal/service"
	"github.com/templui/downloadzone/internal/validation"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// paramError is a malformed query parameter or request body.
type paramError struct {
	field   string
	message string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

var notFoundMessages = []struct {
	err    error
	detail string
}{
	{repository.ErrDownloadNotFound, "Download not found"},
	{repository.ErrSubmissionNotFound, "Submission not found"},
	{repository.ErrCategoryNotFound, "Category not found"},
	{repository.ErrUserNotFound, "User not found"},
	{service.ErrSponsoredNotFound, "Sponsored download not found"},
}

var badRequestMessages = []struct {
	err    error
	detail string
}{
	{service.ErrInvalidToken, "Invalid or expired token"},
	{service.ErrRecaptchaNotConfigured, "reCAPTCHA is enabled but not configured"},
	{model.ErrRecaptchaKeysRequired, "reCAPTCHA keys are required when enabling reCAPTCHA"},
	{service.ErrAdminInitialized, "Admin is already initialized"},
	{service.ErrAdminNotInitialized, "Admin is not initialized"},
	{service.ErrAdminEmailNotSet, "Admin email is not configured"},
	{service.ErrEmailAlreadyRegistered, "Email already registered"},
	{service.ErrCategoryExists, "Category already exists"},
	{service.ErrNoItems, "No items provided"},
}

// writeError maps service errors to status codes. Anything unrecognised
// is logged and reported as a 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: verr.Message, Field: verr.Field})
		return
	}

	var perr *paramError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: perr.message, Field: perr.field})
		return
	}

	var cerr *service.ChallengeError
	if errors.As(err, &cerr) {
		writeDetail(w, http.StatusBadRequest, cerr.Message)
		return
	}

	var rerr *service.RateLimitError
	if errors.As(err, &rerr) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Detail: rerr.Error(), Limit: rerr.Limit})
		return
	}

	for _, m := range notFoundMessages {
		if errors.Is(err, m.err) {
			writeDetail(w, http.StatusNotFound, m.detail)
			return
		}
	}
	for _, m := range badRequestMessages {
		if errors.Is(err, m.err) {
			writeDetail(w, http.StatusBadRequest, m.detail)
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrSettingsConflict):
		writeDetail(w, http.StatusConflict, "Settings were changed concurrently. Please retry.")
	case errors.Is(err, service.ErrEmailNotConfigured),
		errors.Is(err, service.ErrAppURLNotConfigured),
		errors.Is(err, service.ErrStorageNotConfigured):
		slog.Error("service not configured", "error", err, "path", r.URL.Path)
		writeDetail(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, service.ErrEmailSendFailed):
		writeDetail(w, http.StatusInternalServerError, "Failed to send email")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()))
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst as is.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &paramError{field: "body", message: "Invalid request body"}
}

// queryInt parses an optional integer query parameter within [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{field: name, message: name + " must be an integer"}
	}
	if v < lo || v > hi {
		return 0, &paramError{field: name, message: fmt.Sprintf("%s must be between %d and %d", name, lo, hi)}
	}
	return v, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse(model.DateLayout, raw); err != nil {
		return "", &paramError{field: name, message: name + " must be a date (YYYY-MM-DD)"}
	}
	return raw, nil
}

// userID is the caller's user id when a user token was presented.
func userID(r *http.Request) string {
	session := ctxkeys.Session(r.Context())
	if session == nil || session.Role != service.RoleUser {
		return ""
	}
	return session.UserID
}

type messageResponse struct {
	Message string `json:"message"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
