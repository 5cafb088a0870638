package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
	trendingWindow   = 7 * 24 * time.Hour
)

// Page is one page of a listing. Pages is at least 1.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func newPage[T any](items []T, total, page, limit int) Page[T] {
	pages := 1
	if limit > 0 && total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit, Pages: pages}
}

type TopDownloads struct {
	Enabled    bool                      `json:"enabled"`
	Items      []*model.Download         `json:"items"`
	Sponsored  []model.SponsoredDownload `json:"sponsored"`
	TotalSlots int                       `json:"total_slots,omitempty"`
}

type TrendingDownloads struct {
	Enabled bool              `json:"enabled"`
	Items   []*model.Download `json:"items"`
}

type Stats struct {
	Total          int            `json:"total"`
	ByType         map[string]int `json:"by_type"`
	TotalDownloads int64          `json:"total_downloads"`
}

type CatalogService struct {
	downloadRepository repository.DownloadRepository
	settingsService    *SettingsService
}

func NewCatalogService(downloadRepository repository.DownloadRepository, settingsService *SettingsService) *CatalogService {
	return &CatalogService{
		downloadRepository: downloadRepository,
		settingsService:    settingsService,
	}
}

func (s *CatalogService) List(ctx context.Context, filter repository.DownloadFilter, sort string, page, limit int) (Page[*model.Download], error) {
	items, total, err := s.downloadRepository.List(ctx, filter, sort, page, limit)
	if err != nil {
		return Page[*model.Download]{}, fmt.Errorf("failed to list downloads: %w", err)
	}
	return newPage(items, total, page, limit), nil
}

func (s *CatalogService) Create(ctx context.Context, download *model.Download) error {
	if err := s.downloadRepository.Create(ctx, download); err != nil {
		return fmt.Errorf("failed to create download: %w", err)
	}
	return nil
}

func (s *CatalogService) IncrementDownloadCount(ctx context.Context, id string) error {
	if err := s.downloadRepository.IncrementCount(ctx, id); err != nil {
		return fmt.Errorf("failed to increment download count: %w", err)
	}
	return nil
}

// TrackActivity counts a download and records it for trending.
func (s *CatalogService) TrackActivity(ctx context.Context, id string, now time.Time) error {
	activity := &model.DownloadActivity{
		ID:         uuid.New().String(),
		DownloadID: id,
		CreatedAt:  now.UTC(),
	}
	if err := s.downloadRepository.TrackActivity(ctx, activity); err != nil {
		return fmt.Errorf("failed to track download: %w", err)
	}
	return nil
}

// Top fills the configured number of slots, sponsored entries first.
func (s *CatalogService) Top(ctx context.Context) (*TopDownloads, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.TopDownloadsEnabled {
		return &TopDownloads{Items: []*model.Download{}, Sponsored: []model.SponsoredDownload{}}, nil
	}

	sponsored := settings.SponsoredDownloads[:min(len(settings.SponsoredDownloads), model.MaxSponsoredDownloads)]
	limit := max(0, settings.TopDownloadsCount-len(sponsored))

	items, err := s.downloadRepository.TopByDownloads(ctx, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load top downloads: %w", err)
	}

	return &TopDownloads{
		Enabled:    true,
		Items:      items,
		Sponsored:  sponsored,
		TotalSlots: settings.TopDownloadsCount,
	}, nil
}

// Trending ranks by activity in the last 7 days, then backfills with the
// most downloaded entries not already picked.
func (s *CatalogService) Trending(ctx context.Context, now time.Time) (*TrendingDownloads, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.TrendingDownloadsEnabled {
		return &TrendingDownloads{Items: []*model.Download{}}, nil
	}
	count := settings.TrendingDownloadsCount

	ids, err := s.downloadRepository.TrendingIDs(ctx, now.Add(-trendingWindow), count)
	if err != nil {
		return nil, fmt.Errorf("failed to rank trending downloads: %w", err)
	}

	found, err := s.downloadRepository.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load trending downloads: %w", err)
	}
	byID := make(map[string]*model.Download, len(found))
	for _, d := range found {
		byID[d.ID] = d
	}

	items := make([]*model.Download, 0, count)
	selected := make([]string, 0, count)
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			items = append(items, d)
			selected = append(selected, id)
		}
	}

	if len(items) < count {
		fill, err := s.downloadRepository.TopByDownloads(ctx, count-len(items), selected)
		if err != nil {
			return nil, fmt.Errorf("failed to backfill trending downloads: %w", err)
		}
		items = append(items, fill...)
	}

	return &TrendingDownloads{Enabled: true, Items: items}, nil
}

func (s *CatalogService) PopularTags(ctx context.Context, limit int) ([]model.TagCount, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	tags, err := s.downloadRepository.PopularTags(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.downloadRepository.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count downloads: %w", err)
	}

	counts, err := s.downloadRepository.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count downloads by type: %w", err)
	}
	byType := make(map[string]int, len(model.DownloadTypes))
	for _, t := range model.DownloadTypes {
		byType[string(t)] = counts[string(t)]
	}

	totalDownloads, err := s.downloadRepository.TotalDownloads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum downloads: %w", err)
	}

	return &Stats{Total: total, ByType: byType, TotalDownloads: totalDownloads}, nil
}

// Search is the admin lookup by name.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]*model.Download, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	items, _, err := s.downloadRepository.List(ctx, repository.DownloadFilter{Search: query}, repository.DownloadSortDateDesc, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search downloads: %w", err)
	}
	return items, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.downloadRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}
	return nil
}
