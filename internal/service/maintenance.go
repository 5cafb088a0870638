package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/downloadzone/internal/repository"
)

const outboxRetention = 30 * 24 * time.Hour

type CleanupResult struct {
	Captchas int64 `json:"captchas"`
	Tokens   int64 `json:"tokens"`
	Emails   int64 `json:"emails"`
}

// MaintenanceService removes expired and finished rows.
type MaintenanceService struct {
	challengeService    *ChallengeService
	tokenRepository     repository.TokenRepository
	notificationService *NotificationService
}

func NewMaintenanceService(challengeService *ChallengeService, tokenRepository repository.TokenRepository, notificationService *NotificationService) *MaintenanceService {
	return &MaintenanceService{
		challengeService:    challengeService,
		tokenRepository:     tokenRepository,
		notificationService: notificationService,
	}
}

func (s *MaintenanceService) Cleanup(ctx context.Context, now time.Time) (*CleanupResult, error) {
	captchas, err := s.challengeService.PurgeExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokenRepository.DeleteExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	emails, err := s.notificationService.PurgeFinished(ctx, now.Add(-outboxRetention))
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{Captchas: captchas, Tokens: tokens, Emails: emails}
	slog.Info("cleanup finished", "captchas", result.Captchas, "tokens", result.Tokens, "emails", result.Emails)
	return result, nil
}
