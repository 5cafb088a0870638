package model

import (
	"time"
)

// ResetToken is a single-use password token. It is deleted when consumed.
type ResetToken struct {
	ID        string    `db:"id"`
	Token     string    `db:"token"`
	Subject   string    `db:"subject"` // "admin" or "user"
	UserID    *string   `db:"user_id"`
	Type      string    `db:"type"`
	Payload   *string   `db:"payload"` // new password hash for the change flow
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

const (
	TokenSubjectAdmin = "admin"
	TokenSubjectUser  = "user"

	TokenTypeAdminForgot = "forgot"
	TokenTypeAdminChange = "change"
	TokenTypeUserReset   = "reset"
)

func NewResetToken(id, token, subject, tokenType string, userID, payload *string, now time.Time, ttl time.Duration) *ResetToken {
	now = now.UTC()
	return &ResetToken{
		ID:        id,
		Token:     token,
		Subject:   subject,
		UserID:    userID,
		Type:      tokenType,
		Payload:   payload,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func (t *ResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
