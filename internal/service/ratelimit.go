package service

import (
	"context"
	"fmt"
	"time"

	"github.com/templui/downloadzone/internal/metrics"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

// RateLimitService enforces the daily per-IP submission quota. Days are
// UTC calendar dates.
type RateLimitService struct {
	rateLimitRepository repository.RateLimitRepository
}

func NewRateLimitService(rateLimitRepository repository.RateLimitRepository) *RateLimitService {
	return &RateLimitService{rateLimitRepository: rateLimitRepository}
}

// CheckAndIncrement reserves n submissions for ip on the day of now. It
// returns false, and changes nothing, if that would exceed limit.
func (s *RateLimitService) CheckAndIncrement(ctx context.Context, ip string, now time.Time, n, limit int) (bool, error) {
	ok, err := s.rateLimitRepository.Increment(ctx, ip, model.Day(now), n, limit)
	if err != nil {
		return false, fmt.Errorf("failed to update rate limit: %w", err)
	}
	if !ok {
		metrics.RateLimitRejectionsTotal.Inc()
	}
	return ok, nil
}

func (s *RateLimitService) Remaining(ctx context.Context, ip string, now time.Time, limit int) (model.RateLimitStatus, error) {
	used, err := s.rateLimitRepository.Used(ctx, ip, model.Day(now))
	if err != nil {
		return model.RateLimitStatus{}, fmt.Errorf("failed to read rate limit: %w", err)
	}
	return model.NewRateLimitStatus(limit, used), nil
}
