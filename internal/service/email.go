package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/templui/downloadzone/internal/markdown"
	"github.com/templui/downloadzone/internal/model"
	"gopkg.in/gomail.v2"
)

// Transport delivers one rendered email.
type Transport interface {
	Send(ctx context.Context, to, subject, html string) error
}

type EmailConfig struct {
	AppName      string
	AppURL       string
	From         string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	IsDev        bool
}

// EmailService renders templates and picks a transport per send, so that
// credentials saved in site settings take effect without a restart.
type EmailService struct {
	settingsService *SettingsService
	parser          *markdown.Parser
	config          EmailConfig
	resolve         func(settings *model.SiteSettings) (Transport, error)
}

func NewEmailService(settingsService *SettingsService, parser *markdown.Parser, config EmailConfig) *EmailService {
	s := &EmailService{
		settingsService: settingsService,
		parser:          parser,
		config:          config,
	}
	s.resolve = s.transport
	return s
}

func (s *EmailService) AppName() string {
	return s.config.AppName
}

func (s *EmailService) AppURL() string {
	return s.config.AppURL
}

// Render produces the subject and HTML body of the named template.
func (s *EmailService) Render(name string, data any) (string, string, error) {
	return renderEmail(s.parser, name, data)
}

func (s *EmailService) Send(ctx context.Context, to, subject, html string) error {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	transport, err := s.resolve(settings)
	if err != nil {
		return err
	}
	return transport.Send(ctx, to, subject, html)
}

// SendTemplate renders and sends synchronously. Delivery failures are
// reported as ErrEmailSendFailed.
func (s *EmailService) SendTemplate(ctx context.Context, to, name string, data any) error {
	subject, html, err := s.Render(name, data)
	if err != nil {
		return err
	}

	err = s.Send(ctx, to, subject, html)
	if errors.Is(err, ErrEmailNotConfigured) {
		return err
	}
	if err != nil {
		slog.Error("failed to send email", "error", err, "template", name, "to", to)
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}

	slog.Info("email sent", "template", name, "to", to)
	return nil
}

func (s *EmailService) transport(settings *model.SiteSettings) (Transport, error) {
	apiKey := s.config.ResendAPIKey
	if settings.ResendAPIKey != nil && *settings.ResendAPIKey != "" {
		apiKey = *settings.ResendAPIKey
	}
	from := s.config.From
	if settings.ResendSenderEmail != nil && *settings.ResendSenderEmail != "" {
		from = *settings.ResendSenderEmail
	}

	switch {
	case apiKey != "":
		return &resendTransport{client: resend.NewClient(apiKey), from: from}, nil
	case s.config.SMTPHost != "":
		return &smtpTransport{
			dialer: gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword),
			from:   s.config.From,
		}, nil
	case s.config.IsDev:
		return logTransport{}, nil
	}
	return nil, ErrEmailNotConfigured
}

type resendTransport struct {
	client *resend.Client
	from   string
}

func (t *resendTransport) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    t.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	_, err := t.client.Emails.SendWithContext(ctx, params)
	return err
}

type smtpTransport struct {
	dialer *gomail.Dialer
	from   string
}

func (t *smtpTransport) Send(_ context.Context, to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	return t.dialer.DialAndSend(m)
}

// logTransport stands in for delivery during development.
type logTransport struct{}

func (logTransport) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("email sent (dev mode)", "to", to, "subject", subject)
	return nil
}
