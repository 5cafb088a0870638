package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/templui/downloadzone/internal/metrics"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

const settingsWriteRetries = 3

// SettingsService owns the site settings and theme documents. Reads go
// through a short-lived cache, writes are compare-and-swap on the row
// version so concurrent partial updates never drop each other's fields.
type SettingsService struct {
	settingsRepository repository.SettingsRepository
	cache              *expirable.LRU[string, *model.SiteSettings]
	now                func() time.Time

	// writes counts committed settings writes. A read only fills the cache
	// if no write committed since it started loading.
	cacheMu sync.Mutex
	writes  uint64
}

func NewSettingsService(settingsRepository repository.SettingsRepository, cacheTTL time.Duration) *SettingsService {
	return &SettingsService{
		settingsRepository: settingsRepository,
		cache:              expirable.NewLRU[string, *model.SiteSettings](1, nil, cacheTTL),
		now:                time.Now,
	}
}

// Get returns a copy of the current settings, creating the defaults on
// first use.
func (s *SettingsService) Get(ctx context.Context) (*model.SiteSettings, error) {
	if cached, ok := s.cache.Get(model.SettingsID); ok {
		metrics.SettingsCacheTotal.WithLabelValues("hit").Inc()
		return cached.Clone(), nil
	}
	metrics.SettingsCacheTotal.WithLabelValues("miss").Inc()

	s.cacheMu.Lock()
	seen := s.writes
	s.cacheMu.Unlock()

	settings, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	if s.writes == seen {
		s.cache.Add(model.SettingsID, settings)
	}
	s.cacheMu.Unlock()
	return settings.Clone(), nil
}

func (s *SettingsService) invalidate() {
	s.cacheMu.Lock()
	s.writes++
	s.cache.Remove(model.SettingsID)
	s.cacheMu.Unlock()
}

// Update merges the supplied fields and validates the result.
func (s *SettingsService) Update(ctx context.Context, update model.SettingsUpdate) (*model.SiteSettings, error) {
	return s.Mutate(ctx, func(settings *model.SiteSettings) error {
		settings.Apply(update)
		return nil
	})
}

// Mutate applies fn to a fresh copy of the settings and stores the result
// if nobody else wrote in between, retrying a few times otherwise.
func (s *SettingsService) Mutate(ctx context.Context, fn func(*model.SiteSettings) error) (*model.SiteSettings, error) {
	for attempt := 1; attempt <= settingsWriteRetries; attempt++ {
		current, version, err := s.load(ctx)
		if err != nil {
			return nil, err
		}

		if err := fn(current); err != nil {
			return nil, err
		}
		current.Normalize()
		if err := current.Validate(); err != nil {
			return nil, err
		}

		data, err := json.Marshal(current)
		if err != nil {
			return nil, fmt.Errorf("failed to encode settings: %w", err)
		}

		ok, err := s.settingsRepository.Update(ctx, model.SettingsID, string(data), version, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to save settings: %w", err)
		}
		if ok {
			s.invalidate()
			return current, nil
		}

		slog.Debug("settings version conflict, retrying", "attempt", attempt)
	}

	return nil, ErrSettingsConflict
}

func (s *SettingsService) load(ctx context.Context) (*model.SiteSettings, int, error) {
	settings := model.DefaultSiteSettings()
	version, err := s.document(ctx, model.SettingsID, settings)
	if err != nil {
		return nil, 0, err
	}
	settings.Normalize()
	return settings, version, nil
}

// document decodes the row with the given id into dst, which holds the
// defaults. A missing row is created from dst.
func (s *SettingsService) document(ctx context.Context, id string, dst any) (int, error) {
	doc, err := s.settingsRepository.Get(ctx, id)
	if errors.Is(err, repository.ErrSettingsNotFound) {
		data, err := json.Marshal(dst)
		if err != nil {
			return 0, fmt.Errorf("failed to encode defaults: %w", err)
		}
		if err := s.settingsRepository.Insert(ctx, id, string(data), s.now()); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", id, err)
		}
		doc, err = s.settingsRepository.Get(ctx, id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(doc.Data), dst); err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", id, err)
	}
	return doc.Version, nil
}

func (s *SettingsService) Theme(ctx context.Context) (*model.Theme, error) {
	theme := model.DefaultTheme()
	if _, err := s.document(ctx, model.ThemeID, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

func (s *SettingsService) UpdateTheme(ctx context.Context, update model.ThemeUpdate) (*model.Theme, error) {
	for attempt := 1; attempt <= settingsWriteRetries; attempt++ {
		theme := model.DefaultTheme()
		version, err := s.document(ctx, model.ThemeID, theme)
		if err != nil {
			return nil, err
		}
		if err := theme.Apply(update); err != nil {
			return nil, err
		}

		data, err := json.Marshal(theme)
		if err != nil {
			return nil, fmt.Errorf("failed to encode theme: %w", err)
		}
		ok, err := s.settingsRepository.Update(ctx, model.ThemeID, string(data), version, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to save theme: %w", err)
		}
		if ok {
			return theme, nil
		}
	}
	return nil, ErrSettingsConflict
}
