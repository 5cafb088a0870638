package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type RateLimitRepository interface {
	// Increment adds n to the (ip, day) counter only if the result stays
	// within limit. It reports whether the increment happened.
	Increment(ctx context.Context, ip, day string, n, limit int) (bool, error)
	Used(ctx context.Context, ip, day string) (int, error)
}

type rateLimitRepository struct {
	db *sqlx.DB
}

func NewRateLimitRepository(db *sqlx.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

// Increment is a single conditional upsert, so concurrent callers cannot
// jointly push the counter past the limit.
func (r *rateLimitRepository) Increment(ctx context.Context, ip, day string, n, limit int) (bool, error) {
	if n <= 0 || n > limit {
		return false, nil
	}

	query := `
		INSERT INTO rate_limits (ip_address, day, submission_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (ip_address, day) DO UPDATE
		SET submission_count = rate_limits.submission_count + excluded.submission_count
		WHERE rate_limits.submission_count + excluded.submission_count <= $4
	`
	result, err := r.db.ExecContext(ctx, query, ip, day, n, limit)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *rateLimitRepository) Used(ctx context.Context, ip, day string) (int, error) {
	var count int
	query := `SELECT submission_count FROM rate_limits WHERE ip_address = $1 AND day = $2`

	err := r.db.GetContext(ctx, &count, query, ip, day)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}
