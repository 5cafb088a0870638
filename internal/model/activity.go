package model

import "time"

type DownloadActivity struct {
	ID         string    `db:"id"`
	DownloadID string    `db:"download_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type SponsoredClick struct {
	ID          string    `db:"id"`
	SponsoredID string    `db:"sponsored_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// ClickCounts aggregates clicks for one sponsored entry.
type ClickCounts struct {
	SponsoredID string `db:"sponsored_id"`
	Total       int    `db:"total_clicks"`
	Last24h     int    `db:"clicks_24h"`
	Last7d      int    `db:"clicks_7d"`
}

type TagCount struct {
	Tag   string `db:"tag" json:"tag"`
	Count int    `db:"count" json:"count"`
}
