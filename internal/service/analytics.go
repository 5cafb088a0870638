package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

type SponsoredStats struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalClicks int    `json:"total_clicks"`
	Clicks24h   int    `json:"clicks_24h"`
	Clicks7d    int    `json:"clicks_7d"`
}

// AnalyticsService counts clicks on sponsored placements.
type AnalyticsService struct {
	clickRepository repository.ClickRepository
	settingsService *SettingsService
}

func NewAnalyticsService(clickRepository repository.ClickRepository, settingsService *SettingsService) *AnalyticsService {
	return &AnalyticsService{clickRepository: clickRepository, settingsService: settingsService}
}

// RecordSponsoredClick only counts ids in the current sponsored list.
func (s *AnalyticsService) RecordSponsoredClick(ctx context.Context, sponsoredID string, now time.Time) error {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return err
	}
	if _, ok := settings.SponsoredByID(sponsoredID); !ok {
		return ErrSponsoredNotFound
	}

	click := &model.SponsoredClick{
		ID:          uuid.New().String(),
		SponsoredID: sponsoredID,
		CreatedAt:   now.UTC(),
	}
	if err := s.clickRepository.Record(ctx, click); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return nil
}

// SponsoredAnalytics reports every configured placement, with zeros for
// those never clicked.
func (s *AnalyticsService) SponsoredAnalytics(ctx context.Context, now time.Time) ([]SponsoredStats, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(settings.SponsoredDownloads))
	for _, sp := range settings.SponsoredDownloads {
		ids = append(ids, sp.ID)
	}

	counts, err := s.clickRepository.Counts(ctx, ids, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}

	stats := make([]SponsoredStats, 0, len(settings.SponsoredDownloads))
	for _, sp := range settings.SponsoredDownloads {
		c := counts[sp.ID]
		stats = append(stats, SponsoredStats{
			ID:          sp.ID,
			Name:        sp.Name,
			TotalClicks: c.Total,
			Clicks24h:   c.Last24h,
			Clicks7d:    c.Last7d,
		})
	}
	return stats, nil
}
