package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/downloadzone/internal/model"
)

var (
	ErrCaptchaNotFound = errors.New("captcha not found")
)

type CaptchaRepository interface {
	Create(ctx context.Context, captcha *model.Captcha) error
	Consume(ctx context.Context, id string) (*model.Captcha, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type captchaRepository struct {
	db *sqlx.DB
}

func NewCaptchaRepository(db *sqlx.DB) CaptchaRepository {
	return &captchaRepository{db: db}
}

func (r *captchaRepository) Create(ctx context.Context, c *model.Captcha) error {
	query := `
		INSERT INTO captchas (id, num1, num2, operator, answer, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Num1, c.Num2, c.Operator, c.Answer, c.ExpiresAt, c.CreatedAt)
	return err
}

// Consume deletes the captcha and returns it. Only one caller can ever
// receive a given captcha, whatever the outcome of the check that follows.
func (r *captchaRepository) Consume(ctx context.Context, id string) (*model.Captcha, error) {
	var c model.Captcha
	err := r.db.GetContext(ctx, &c, `DELETE FROM captchas WHERE id = $1 RETURNING *`, id)
	if err == sql.ErrNoRows {
		return nil, ErrCaptchaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *captchaRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM captchas WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
