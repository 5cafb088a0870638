package model

import (
	"strings"
	"time"

	"github.com/templui/downloadzone/internal/validation"
)

// CategoryTypeAll marks a category usable for every download type.
const CategoryTypeAll = "all"

type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func NewCategory(id, name, typ string, now time.Time) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation.NewError("name", "category name is required")
	}
	if len(name) > 50 {
		return nil, validation.NewError("name", "category name is too long (max 50 characters)")
	}

	typ = strings.TrimSpace(typ)
	if typ == "" {
		typ = CategoryTypeAll
	}
	if typ != CategoryTypeAll && !DownloadType(typ).Valid() {
		return nil, validation.NewError("type", "type must be all, game, software, movie or tv_show")
	}

	return &Category{
		ID:        id,
		Name:      name,
		Type:      typ,
		CreatedAt: now.UTC(),
	}, nil
}
