package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RecaptchaVerifier checks a reCAPTCHA token with the verification service.
type RecaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP, secret string) bool
}

type recaptchaClient struct {
	client    *http.Client
	verifyURL string
}

func NewRecaptchaVerifier(verifyURL string, timeout time.Duration) RecaptchaVerifier {
	return &recaptchaClient{
		client:    &http.Client{Timeout: timeout},
		verifyURL: verifyURL,
	}
}

// Verify fails closed: any transport, status or decoding problem is a
// failed verification. There is no retry.
func (c *recaptchaClient) Verify(ctx context.Context, token, remoteIP, secret string) bool {
	if token == "" || secret == "" {
		return false
	}

	form := url.Values{}
	form.Set("secret", secret)
	form.Set("response", token)
	form.Set("remoteip", remoteIP)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		slog.Error("failed to build recaptcha request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("recaptcha verification request failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("recaptcha verification returned non-200", "status", resp.StatusCode)
		return false
	}

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Error("failed to decode recaptcha response", "error", err)
		return false
	}
	if !result.Success {
		slog.Debug("recaptcha rejected token", "error_codes", result.ErrorCodes)
	}
	return result.Success
}
