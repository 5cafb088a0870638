package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/downloadzone/internal/model"
)

// OutboxRepository persists queued emails until a worker delivers them.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg *model.OutboxMessage) error
	Due(ctx context.Context, now time.Time, limit int) ([]model.OutboxMessage, error)
	// Claim pushes next_attempt_at forward by lease so that concurrent
	// workers skip the message. It reports whether this caller won.
	Claim(ctx context.Context, id string, now time.Time, lease time.Duration) (bool, error)
	MarkSent(ctx context.Context, id string, now time.Time) error
	MarkRetry(ctx context.Context, id string, attempts int, lastErr string, next time.Time) error
	MarkDropped(ctx context.Context, id string, attempts int, lastErr string) error
	DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error)
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Enqueue(ctx context.Context, m *model.OutboxMessage) error {
	query := `
		INSERT INTO email_outbox (id, to_email, subject, html, kind, status, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.ToEmail,
		m.Subject,
		m.HTML,
		m.Kind,
		model.OutboxStatusPending,
		m.NextAttemptAt,
		m.CreatedAt,
	)
	return err
}

func (r *outboxRepository) Due(ctx context.Context, now time.Time, limit int) ([]model.OutboxMessage, error) {
	messages := []model.OutboxMessage{}
	query := `
		SELECT * FROM email_outbox
		WHERE status = $1 AND next_attempt_at <= $2
		ORDER BY next_attempt_at ASC
		LIMIT $3
	`
	err := r.db.SelectContext(ctx, &messages, query, model.OutboxStatusPending, now.UTC(), limit)
	return messages, err
}

func (r *outboxRepository) Claim(ctx context.Context, id string, now time.Time, lease time.Duration) (bool, error) {
	now = now.UTC()
	query := `
		UPDATE email_outbox SET next_attempt_at = $1
		WHERE id = $2 AND status = $3 AND next_attempt_at <= $4
	`
	result, err := r.db.ExecContext(ctx, query, now.Add(lease), id, model.OutboxStatusPending, now)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE email_outbox SET status = $1, sent_at = $2, attempts = attempts + 1 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, model.OutboxStatusSent, now.UTC(), id)
	return err
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id string, attempts int, lastErr string, next time.Time) error {
	query := `UPDATE email_outbox SET attempts = $1, last_error = $2, next_attempt_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, attempts, lastErr, next.UTC(), id)
	return err
}

func (r *outboxRepository) MarkDropped(ctx context.Context, id string, attempts int, lastErr string) error {
	query := `UPDATE email_outbox SET status = $1, attempts = $2, last_error = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, model.OutboxStatusDropped, attempts, lastErr, id)
	return err
}

func (r *outboxRepository) DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM email_outbox WHERE status <> $1 AND created_at < $2`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusPending, before.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
