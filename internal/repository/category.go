package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/downloadzone/internal/model"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category already exists")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	// List returns categories of the given type plus those usable for
	// every type. An empty type returns everything.
	List(ctx context.Context, typ string) ([]model.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `INSERT INTO categories (id, name, type, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Type, c.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCategory
	}
	return err
}

func (r *categoryRepository) List(ctx context.Context, typ string) ([]model.Category, error) {
	categories := []model.Category{}

	if typ == "" {
		err := r.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name ASC`)
		return categories, err
	}

	query := `SELECT * FROM categories WHERE type = $1 OR type = $2 ORDER BY name ASC`
	err := r.db.SelectContext(ctx, &categories, query, typ, model.CategoryTypeAll)
	return categories, err
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
