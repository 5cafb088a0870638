package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/downloadzone/internal/metrics"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

const DefaultModerationLimit = 20

// ModerationService moves submissions from pending to approved or
// rejected. Approval publishes a catalog entry.
type ModerationService struct {
	submissionRepository repository.SubmissionRepository
	settingsService      *SettingsService
	notificationService  *NotificationService
	now                  func() time.Time
}

func NewModerationService(
	submissionRepository repository.SubmissionRepository,
	settingsService *SettingsService,
	notificationService *NotificationService,
) *ModerationService {
	return &ModerationService{
		submissionRepository: submissionRepository,
		settingsService:      settingsService,
		notificationService:  notificationService,
		now:                  time.Now,
	}
}

// Approve publishes the submission and marks it approved and seen. It is
// not idempotent: approving twice publishes two entries.
func (s *ModerationService) Approve(ctx context.Context, id string, auto bool) (*model.Download, error) {
	sub, err := s.submissionRepository.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if sub.Status == model.SubmissionStatusApproved {
		slog.Warn("submission already approved, publishing another entry", "submission_id", id)
	}

	now := s.now()
	download := model.DownloadFromSubmission(sub, uuid.New().String(), now)
	if err := s.submissionRepository.Publish(ctx, id, download); err != nil {
		return nil, fmt.Errorf("failed to publish submission: %w", err)
	}

	action := "approve"
	if auto {
		action = "auto_approve"
	}
	metrics.ModerationTotal.WithLabelValues(action).Inc()
	slog.Info("submission approved", "submission_id", id, "download_id", download.ID, "auto", auto)

	s.notificationService.SubmissionApproved(ctx, sub, now)
	return download, nil
}

// Reject overwrites the status unconditionally.
func (s *ModerationService) Reject(ctx context.Context, id string) error {
	if err := s.submissionRepository.UpdateStatus(ctx, id, model.SubmissionStatusRejected, true); err != nil {
		return fmt.Errorf("failed to reject submission: %w", err)
	}
	metrics.ModerationTotal.WithLabelValues("reject").Inc()
	slog.Info("submission rejected", "submission_id", id)
	return nil
}

func (s *ModerationService) Delete(ctx context.Context, id string) error {
	if err := s.submissionRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	metrics.ModerationTotal.WithLabelValues("delete").Inc()
	slog.Info("submission deleted", "submission_id", id)
	return nil
}

// List returns submissions newest first. Listing pending submissions
// marks the returned ones as seen.
func (s *ModerationService) List(ctx context.Context, status model.SubmissionStatus, page, limit int) (Page[*model.Submission], error) {
	items, total, err := s.submissionRepository.List(ctx, status, page, limit)
	if err != nil {
		return Page[*model.Submission]{}, fmt.Errorf("failed to list submissions: %w", err)
	}

	if status == "" || status == model.SubmissionStatusPending {
		var ids []string
		for _, sub := range items {
			if sub.Status == model.SubmissionStatusPending && !sub.SeenByAdmin {
				ids = append(ids, sub.ID)
			}
		}
		if err := s.submissionRepository.MarkSeen(ctx, ids); err != nil {
			return Page[*model.Submission]{}, fmt.Errorf("failed to mark submissions seen: %w", err)
		}
	}

	return newPage(items, total, page, limit), nil
}

// UnseenCount is always 0 while auto-approve is on.
func (s *ModerationService) UnseenCount(ctx context.Context) (int, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return 0, err
	}
	if settings.AutoApproveSubmissions {
		return 0, nil
	}

	count, err := s.submissionRepository.CountUnseenPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unseen submissions: %w", err)
	}
	return count, nil
}
