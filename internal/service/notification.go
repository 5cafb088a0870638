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

const (
	outboxBatchSize   = 20
	outboxClaimLease  = 5 * time.Minute
	outboxBaseBackoff = 30 * time.Second
	outboxMaxBackoff  = time.Hour
	maxEmailRows      = 50
)

// NotificationService queues advisory emails in the outbox and delivers
// them from a background worker. Queueing never fails the caller.
type NotificationService struct {
	outboxRepository repository.OutboxRepository
	emailService     *EmailService
	pollInterval     time.Duration
	maxAttempts      int
}

func NewNotificationService(outboxRepository repository.OutboxRepository, emailService *EmailService, pollInterval time.Duration, maxAttempts int) *NotificationService {
	return &NotificationService{
		outboxRepository: outboxRepository,
		emailService:     emailService,
		pollInterval:     pollInterval,
		maxAttempts:      max(1, maxAttempts),
	}
}

// Enqueue renders the template and stores it for delivery. Failures are
// logged only.
func (s *NotificationService) Enqueue(ctx context.Context, to, kind, template string, data any, now time.Time) {
	if to == "" {
		return
	}

	subject, html, err := s.emailService.Render(template, data)
	if err != nil {
		slog.Error("failed to render notification", "error", err, "template", template)
		return
	}

	now = now.UTC()
	msg := &model.OutboxMessage{
		ID:            uuid.New().String(),
		ToEmail:       to,
		Subject:       subject,
		HTML:          html,
		Kind:          kind,
		NextAttemptAt: now,
		CreatedAt:     now,
	}
	if err := s.outboxRepository.Enqueue(ctx, msg); err != nil {
		slog.Error("failed to enqueue notification", "error", err, "kind", kind, "to", to)
		return
	}
	slog.Debug("notification queued", "kind", kind, "to", to, "message_id", msg.ID)
}

// SubmissionReceived confirms a single submission to its submitter.
func (s *NotificationService) SubmissionReceived(ctx context.Context, sub *model.Submission, now time.Time) {
	if sub.SubmitterEmail == nil {
		return
	}
	if s.emailService.AppURL() == "" {
		slog.Info("submission email not sent, APP_URL is not configured", "submission_id", sub.ID)
		return
	}

	data := s.submissionData(sub)
	data.Date = sub.SubmissionDate
	data.Time = sub.CreatedAt.UTC().Format(time.RFC3339)
	s.Enqueue(ctx, *sub.SubmitterEmail, "submission_received", TemplateSubmissionReceived, data, now)
}

// BulkReceived sends one confirmation for a whole batch.
func (s *NotificationService) BulkReceived(ctx context.Context, email string, subs []*model.Submission, now time.Time) {
	if email == "" || len(subs) == 0 {
		return
	}
	if s.emailService.AppURL() == "" {
		slog.Info("bulk submission email not sent, APP_URL is not configured", "count", len(subs))
		return
	}
	s.Enqueue(ctx, email, "bulk_received", TemplateBulkReceived, s.batchData(subs), now)
}

func (s *NotificationService) SubmissionApproved(ctx context.Context, sub *model.Submission, now time.Time) {
	if sub.SubmitterEmail == nil {
		return
	}
	if s.emailService.AppURL() == "" {
		slog.Info("approval email not sent, APP_URL is not configured", "submission_id", sub.ID)
		return
	}
	s.Enqueue(ctx, *sub.SubmitterEmail, "submission_approved", TemplateSubmissionApproved, s.submissionData(sub), now)
}

// AdminSummary tells the admin about new submissions, if an admin email
// is configured.
func (s *NotificationService) AdminSummary(ctx context.Context, settings *model.SiteSettings, subs []*model.Submission, now time.Time) {
	if settings.AdminEmail == nil || *settings.AdminEmail == "" || len(subs) == 0 {
		return
	}
	s.Enqueue(ctx, *settings.AdminEmail, "admin_summary", TemplateAdminSummary, s.batchData(subs), now)
}

func (s *NotificationService) submissionData(sub *model.Submission) SubmissionEmailData {
	return SubmissionEmailData{
		AppName:   s.emailService.AppName(),
		Name:      sub.Name,
		Type:      string(sub.Type),
		Category:  orNA(sub.Category),
		FileSize:  orNA(sub.FileSize),
		SubmitURL: s.emailService.AppURL() + "/submit",
		HomeURL:   s.emailService.AppURL(),
	}
}

func (s *NotificationService) batchData(subs []*model.Submission) BatchEmailData {
	rows := make([]EmailRow, 0, min(len(subs), maxEmailRows))
	for _, sub := range subs[:min(len(subs), maxEmailRows)] {
		rows = append(rows, EmailRow{Name: sub.Name, Type: string(sub.Type), Date: sub.SubmissionDate})
	}
	return BatchEmailData{
		AppName:   s.emailService.AppName(),
		Count:     len(subs),
		Items:     rows,
		SubmitURL: s.emailService.AppURL() + "/submit",
	}
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

// Run delivers due messages until ctx is cancelled.
func (s *NotificationService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	slog.Info("outbox worker started", "interval", s.pollInterval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := s.ProcessDue(ctx, time.Now()); err != nil && ctx.Err() == nil {
				slog.Error("outbox processing failed", "error", err)
			}
		}
	}
}

// ProcessDue sends every message due at now and returns how many were
// delivered.
func (s *NotificationService) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.outboxRepository.Due(ctx, now, outboxBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load outbox: %w", err)
	}

	sent := 0
	for _, msg := range due {
		won, err := s.outboxRepository.Claim(ctx, msg.ID, now, outboxClaimLease)
		if err != nil {
			return sent, fmt.Errorf("failed to claim outbox message: %w", err)
		}
		if !won {
			continue
		}

		if s.deliver(ctx, msg, now) {
			sent++
		}
	}
	return sent, nil
}

func (s *NotificationService) deliver(ctx context.Context, msg model.OutboxMessage, now time.Time) bool {
	sendErr := s.emailService.Send(ctx, msg.ToEmail, msg.Subject, msg.HTML)
	if sendErr == nil {
		if err := s.outboxRepository.MarkSent(ctx, msg.ID, now); err != nil {
			slog.Error("failed to mark email sent", "error", err, "message_id", msg.ID)
		}
		metrics.EmailsTotal.WithLabelValues("sent").Inc()
		slog.Info("email sent", "kind", msg.Kind, "to", msg.ToEmail, "message_id", msg.ID)
		return true
	}

	attempts := msg.Attempts + 1
	if attempts >= s.maxAttempts {
		if err := s.outboxRepository.MarkDropped(ctx, msg.ID, attempts, sendErr.Error()); err != nil {
			slog.Error("failed to drop email", "error", err, "message_id", msg.ID)
		}
		metrics.EmailsTotal.WithLabelValues("dropped").Inc()
		slog.Warn("email dropped", "error", sendErr, "kind", msg.Kind, "attempts", attempts, "message_id", msg.ID)
		return false
	}

	next := now.Add(backoff(attempts))
	if err := s.outboxRepository.MarkRetry(ctx, msg.ID, attempts, sendErr.Error(), next); err != nil {
		slog.Error("failed to reschedule email", "error", err, "message_id", msg.ID)
	}
	metrics.EmailsTotal.WithLabelValues("failed").Inc()
	slog.Warn("email send failed, will retry", "error", sendErr, "kind", msg.Kind, "attempts", attempts, "next_attempt_at", next)
	return false
}

// backoff doubles from outboxBaseBackoff per attempt, capped at outboxMaxBackoff.
func backoff(attempts int) time.Duration {
	d := outboxBaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= outboxMaxBackoff {
			return outboxMaxBackoff
		}
	}
	return d
}

// PurgeFinished removes delivered and dropped messages created before.
func (s *NotificationService) PurgeFinished(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.outboxRepository.DeleteFinishedBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge outbox: %w", err)
	}
	return n, nil
}
