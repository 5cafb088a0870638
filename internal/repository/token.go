package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/downloadzone/internal/model"
)

var (
	ErrTokenNotFound = errors.New("token not found")
)

type TokenRepository interface {
	Create(ctx context.Context, token *model.ResetToken) error
	Consume(ctx context.Context, token, subject, tokenType string) (*model.ResetToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.ResetToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO password_reset_tokens (id, token, subject, user_id, type, payload, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID,
		token.Token,
		token.Subject,
		token.UserID,
		token.Type,
		token.Payload,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// Consume atomically deletes and returns the token. Expiry is left to the
// caller so an expired token is still removed on first use.
func (r *tokenRepository) Consume(ctx context.Context, token, subject, tokenType string) (*model.ResetToken, error) {
	var t model.ResetToken
	query := `
		DELETE FROM password_reset_tokens
		WHERE token = $1 AND subject = $2 AND type = $3
		RETURNING *
	`
	err := r.db.GetContext(ctx, &t, query, token, subject, tokenType)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
