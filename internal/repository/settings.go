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
	ErrSettingsNotFound = errors.New("settings document not found")
)

// SettingsRepository stores singleton JSON documents with a version
// counter for compare-and-swap updates.
type SettingsRepository interface {
	Get(ctx context.Context, id string) (*model.SettingsDocument, error)
	// Insert creates the document unless it already exists.
	Insert(ctx context.Context, id, data string, now time.Time) error
	// Update writes data if the stored version still equals version.
	Update(ctx context.Context, id, data string, version int, now time.Time) (bool, error)
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, id string) (*model.SettingsDocument, error) {
	doc := &model.SettingsDocument{}
	err := r.db.GetContext(ctx, doc, `SELECT * FROM site_settings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *settingsRepository) Insert(ctx context.Context, id, data string, now time.Time) error {
	query := `
		INSERT INTO site_settings (id, data, version, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, id, data, now.UTC())
	return err
}

func (r *settingsRepository) Update(ctx context.Context, id, data string, version int, now time.Time) (bool, error) {
	query := `
		UPDATE site_settings
		SET data = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`
	result, err := r.db.ExecContext(ctx, query, data, now.UTC(), id, version)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
