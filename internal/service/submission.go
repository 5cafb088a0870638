package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/downloadzone/internal/metrics"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/validation"
)

// SubmitRequest is the body of a single public submission.
type SubmitRequest struct {
	model.SubmissionInput
	Proof
}

// BulkRequest submits several entries behind one challenge. A top-level
// submitter_email applies to every item.
type BulkRequest struct {
	Items          []model.SubmissionInput `json:"items"`
	SubmitterEmail *string                 `json:"submitter_email"`
	Proof
}

type BulkResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type SubmissionService struct {
	submissionRepository submissionCreator
	settingsService      *SettingsService
	challengeService     *ChallengeService
	rateLimitService     *RateLimitService
	moderationService    *ModerationService
	notificationService  *NotificationService
}

type submissionCreator interface {
	Create(ctx context.Context, submission *model.Submission) error
	CreateBatch(ctx context.Context, submissions []*model.Submission) error
}

func NewSubmissionService(
	submissionRepository submissionCreator,
	settingsService *SettingsService,
	challengeService *ChallengeService,
	rateLimitService *RateLimitService,
	moderationService *ModerationService,
	notificationService *NotificationService,
) *SubmissionService {
	return &SubmissionService{
		submissionRepository: submissionRepository,
		settingsService:      settingsService,
		challengeService:     challengeService,
		rateLimitService:     rateLimitService,
		moderationService:    moderationService,
		notificationService:  notificationService,
	}
}

// Submit runs the guarded single-submission workflow: challenge,
// validation, rate limit, persist, notify, optional auto-approve.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest, clientIP, userID string, now time.Time) (*model.Submission, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.challengeService.Verify(ctx, ScopeSubmit, req.Proof, clientIP, settings, now); err != nil {
		return nil, err
	}

	sub, err := model.NewSubmission(uuid.New().String(), req.SubmissionInput, now)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		sub.SubmitterUserID = &userID
	}

	ok, err := s.rateLimitService.CheckAndIncrement(ctx, clientIP, now, 1, settings.DailySubmissionLimit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &RateLimitError{Limit: settings.DailySubmissionLimit}
	}

	if err := s.submissionRepository.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	metrics.SubmissionsTotal.WithLabelValues("single").Inc()
	slog.Info("submission created", "submission_id", sub.ID, "type", sub.Type, "ip", clientIP)

	s.notificationService.SubmissionReceived(ctx, sub, now)
	s.notificationService.AdminSummary(ctx, settings, []*model.Submission{sub}, now)

	// The submission is stored and the quota spent; a failed auto-approve
	// leaves it pending for the admin.
	if settings.AutoApproveSubmissions && s.autoApprove(ctx, sub.ID) {
		sub.Status = model.SubmissionStatusApproved
		sub.SeenByAdmin = true
	}
	return sub, nil
}

// SubmitBulk validates every item before reserving quota, so an invalid
// item or an exhausted quota stores nothing.
func (s *SubmissionService) SubmitBulk(ctx context.Context, req BulkRequest, clientIP, userID string, now time.Time) (*BulkResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.challengeService.Verify(ctx, ScopeSubmit, req.Proof, clientIP, settings, now); err != nil {
		return nil, err
	}

	subs := make([]*model.Submission, 0, len(req.Items))
	for i, in := range req.Items {
		if req.SubmitterEmail != nil && *req.SubmitterEmail != "" {
			in.SubmitterEmail = req.SubmitterEmail
		}
		sub, err := model.NewSubmission(uuid.New().String(), in, now)
		if err != nil {
			return nil, indexedError(i, err)
		}
		if userID != "" {
			sub.SubmitterUserID = &userID
		}
		subs = append(subs, sub)
	}

	ok, err := s.rateLimitService.CheckAndIncrement(ctx, clientIP, now, len(subs), settings.DailySubmissionLimit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &RateLimitError{Limit: settings.DailySubmissionLimit, Bulk: true}
	}

	if err := s.submissionRepository.CreateBatch(ctx, subs); err != nil {
		return nil, fmt.Errorf("failed to create submissions: %w", err)
	}
	metrics.SubmissionsTotal.WithLabelValues("bulk").Add(float64(len(subs)))
	slog.Info("bulk submissions created", "count", len(subs), "ip", clientIP)

	if req.SubmitterEmail != nil {
		s.notificationService.BulkReceived(ctx, validation.NormalizeEmail(*req.SubmitterEmail), subs, now)
	}
	s.notificationService.AdminSummary(ctx, settings, subs, now)

	if settings.AutoApproveSubmissions {
		for _, sub := range subs {
			s.autoApprove(ctx, sub.ID)
		}
	}

	return &BulkResult{Success: true, Count: len(subs)}, nil
}

func (s *SubmissionService) autoApprove(ctx context.Context, id string) bool {
	if _, err := s.moderationService.Approve(ctx, id, true); err != nil {
		slog.Error("auto-approve failed, submission left pending", "submission_id", id, "error", err)
		return false
	}
	return true
}

func indexedError(i int, err error) error {
	var ve *validation.Error
	if errors.As(err, &ve) {
		return validation.NewError(fmt.Sprintf("items[%d].%s", i, ve.Field), ve.Message)
	}
	return err
}
