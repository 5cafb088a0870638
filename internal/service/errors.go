package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidChallenge       = errors.New("invalid challenge")
	ErrRecaptchaNotConfigured = errors.New("reCAPTCHA is enabled but not configured")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrForbidden              = errors.New("forbidden")

	ErrAdminInitialized       = errors.New("admin is already initialized")
	ErrAdminNotInitialized    = errors.New("admin is not initialized")
	ErrAdminEmailNotSet       = errors.New("admin email is not configured")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrCategoryExists         = errors.New("category already exists")
	ErrSponsoredNotFound      = errors.New("sponsored download not found")
	ErrNoItems                = errors.New("no items provided")
	ErrSettingsConflict       = errors.New("settings changed concurrently, please retry")

	ErrEmailNotConfigured   = errors.New("email service not configured")
	ErrAppURLNotConfigured  = errors.New("APP_URL is not configured")
	ErrStorageNotConfigured = errors.New("object storage not configured")
	ErrEmailSendFailed      = errors.New("failed to send email")
)

// ChallengeError is a failed captcha or reCAPTCHA check. It matches
// ErrInvalidChallenge with errors.Is.
type ChallengeError struct {
	Message string
}

func (e *ChallengeError) Error() string {
	return e.Message
}

func (e *ChallengeError) Is(target error) bool {
	return target == ErrInvalidChallenge
}

// RateLimitError reports that the daily per-IP submission limit would be
// exceeded. Bulk selects the wording used for batch requests.
type RateLimitError struct {
	Limit int
	Bulk  bool
}

func (e *RateLimitError) Error() string {
	if e.Bulk {
		return fmt.Sprintf("Daily submission limit (%d) exceeded", e.Limit)
	}
	return fmt.Sprintf("Daily submission limit (%d) reached. Try again tomorrow.", e.Limit)
}
