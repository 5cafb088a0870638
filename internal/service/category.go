package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

type CategoryService struct {
	categoryRepository repository.CategoryRepository
	now                func() time.Time
}

func NewCategoryService(categoryRepository repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepository: categoryRepository, now: time.Now}
}

// List returns categories for typ plus the ones shared by all types.
// An empty typ or "all" returns everything.
func (s *CategoryService) List(ctx context.Context, typ string) ([]model.Category, error) {
	if typ == model.CategoryTypeAll {
		typ = ""
	}
	categories, err := s.categoryRepository.List(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Create rejects a name that matches an existing one of the same type,
// ignoring case.
func (s *CategoryService) Create(ctx context.Context, name, typ string) (*model.Category, error) {
	category, err := model.NewCategory(uuid.New().String(), name, typ, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.categoryRepository.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	key := model.FoldTag(category.Name)
	for _, c := range existing {
		if c.Type == category.Type && model.FoldTag(c.Name) == key {
			return nil, ErrCategoryExists
		}
	}

	err = s.categoryRepository.Create(ctx, category)
	if errors.Is(err, repository.ErrDuplicateCategory) {
		return nil, ErrCategoryExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("category created", "category_id", category.ID, "name", category.Name, "type", category.Type)
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.categoryRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	slog.Info("category deleted", "category_id", id)
	return nil
}
