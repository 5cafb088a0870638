package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/downloadzone/internal/model"
)

type ClickRepository interface {
	Record(ctx context.Context, click *model.SponsoredClick) error
	// Counts aggregates clicks for the given sponsored ids. Ids without
	// clicks are absent from the result.
	Counts(ctx context.Context, ids []string, now time.Time) (map[string]model.ClickCounts, error)
}

type clickRepository struct {
	db *sqlx.DB
}

func NewClickRepository(db *sqlx.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Record(ctx context.Context, c *model.SponsoredClick) error {
	query := `INSERT INTO sponsored_clicks (id, sponsored_id, created_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.SponsoredID, c.CreatedAt)
	return err
}

func (r *clickRepository) Counts(ctx context.Context, ids []string, now time.Time) (map[string]model.ClickCounts, error) {
	counts := make(map[string]model.ClickCounts, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	now = now.UTC()
	query, args, err := sqlx.In(`
		SELECT sponsored_id,
			CAST(COUNT(*) AS BIGINT) AS total_clicks,
			CAST(COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS BIGINT) AS clicks_24h,
			CAST(COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS BIGINT) AS clicks_7d
		FROM sponsored_clicks
		WHERE sponsored_id IN (?)
		GROUP BY sponsored_id
	`, now.Add(-24*time.Hour), now.Add(-7*24*time.Hour), ids)
	if err != nil {
		return nil, err
	}

	var rows []model.ClickCounts
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SponsoredID] = row
	}
	return counts, nil
}
