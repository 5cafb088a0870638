package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
	"github.com/templui/downloadzone/internal/validation"
)

// AdminAuthService manages the single admin account stored in site
// settings. Until a password is set there, ADMIN_PASSWORD and ADMIN_EMAIL
// act as the bootstrap credentials.
type AdminAuthService struct {
	settingsService   *SettingsService
	tokenRepository   repository.TokenRepository
	emailService      *EmailService
	sessions          *SessionManager
	resetExpiry       time.Duration
	bootstrapPassword string
	bootstrapEmail    string
	now               func() time.Time
}

func NewAdminAuthService(
	settingsService *SettingsService,
	tokenRepository repository.TokenRepository,
	emailService *EmailService,
	sessions *SessionManager,
	resetExpiry time.Duration,
	bootstrapPassword string,
	bootstrapEmail string,
) *AdminAuthService {
	return &AdminAuthService{
		settingsService:   settingsService,
		tokenRepository:   tokenRepository,
		emailService:      emailService,
		sessions:          sessions,
		resetExpiry:       resetExpiry,
		bootstrapPassword: bootstrapPassword,
		bootstrapEmail:    validation.NormalizeEmail(bootstrapEmail),
		now:               time.Now,
	}
}

// Init stores the first admin password and email. It fails once a
// password is stored.
func (s *AdminAuthService) Init(ctx context.Context, email, password string) error {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return validation.Field("email", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return validation.Field("password", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.settingsService.Mutate(ctx, func(settings *model.SiteSettings) error {
		if settings.HasAdminPassword() {
			return ErrAdminInitialized
		}
		settings.AdminPasswordHash = &hash
		settings.AdminEmail = &email
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("admin initialized", "email", email)
	return nil
}

// Login checks the password and returns an admin bearer token.
func (s *AdminAuthService) Login(ctx context.Context, password string) (string, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return "", err
	}
	if err := s.checkPassword(settings, password); err != nil {
		slog.Warn("admin login failed")
		return "", err
	}

	return s.sessions.Issue(Session{Role: RoleAdmin})
}

func (s *AdminAuthService) checkPassword(settings *model.SiteSettings, password string) error {
	switch {
	case settings.HasAdminPassword():
		if !comparePassword(password, *settings.AdminPasswordHash) {
			return ErrInvalidCredentials
		}
	case s.bootstrapPassword != "":
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.bootstrapPassword)) != 1 {
			return ErrInvalidCredentials
		}
	default:
		return ErrAdminNotInitialized
	}
	return nil
}

func (s *AdminAuthService) adminEmail(settings *model.SiteSettings) string {
	if settings.AdminEmail != nil && *settings.AdminEmail != "" {
		return *settings.AdminEmail
	}
	return s.bootstrapEmail
}

// RequestPasswordChange emails a confirmation link. The new password only
// takes effect once the link is used.
func (s *AdminAuthService) RequestPasswordChange(ctx context.Context, currentPassword, newPassword string) error {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return err
	}
	if err := s.checkPassword(settings, currentPassword); err != nil {
		return err
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return validation.Field("new_password", err)
	}

	email := s.adminEmail(settings)
	if email == "" {
		return ErrAdminEmailNotSet
	}
	if s.emailService.AppURL() == "" {
		return ErrAppURLNotConfigured
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	token, err := s.createToken(ctx, model.TokenTypeAdminChange, &hash)
	if err != nil {
		return err
	}

	return s.emailService.SendTemplate(ctx, email, TemplateAdminPasswordChange, LinkEmailData{
		AppName:   s.emailService.AppName(),
		Link:      s.emailService.AppURL() + "/admin/confirm-password-change?token=" + token,
		ExpiresIn: s.resetExpiry.String(),
	})
}

// ConfirmPasswordChange applies the password hash carried by the token.
func (s *AdminAuthService) ConfirmPasswordChange(ctx context.Context, token string) error {
	rt, err := s.consume(ctx, token, model.TokenTypeAdminChange)
	if err != nil {
		return err
	}
	if rt.Payload == nil || *rt.Payload == "" {
		return ErrInvalidToken
	}

	if err := s.setPasswordHash(ctx, *rt.Payload); err != nil {
		return err
	}
	slog.Info("admin password changed")
	return nil
}

// ForgotPassword sends a reset link only when email is the admin email,
// and reports success either way.
func (s *AdminAuthService) ForgotPassword(ctx context.Context, email string) error {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	adminEmail := s.adminEmail(settings)
	if adminEmail == "" || validation.NormalizeEmail(email) != adminEmail {
		slog.Info("admin password reset requested for unknown email")
		return nil
	}
	if s.emailService.AppURL() == "" {
		return ErrAppURLNotConfigured
	}

	token, err := s.createToken(ctx, model.TokenTypeAdminForgot, nil)
	if err != nil {
		return err
	}

	return s.emailService.SendTemplate(ctx, adminEmail, TemplateAdminPasswordReset, LinkEmailData{
		AppName:   s.emailService.AppName(),
		Link:      s.emailService.AppURL() + "/admin/reset-password?token=" + token,
		ExpiresIn: s.resetExpiry.String(),
	})
}

func (s *AdminAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return validation.Field("new_password", err)
	}

	if _, err := s.consume(ctx, token, model.TokenTypeAdminForgot); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.setPasswordHash(ctx, hash); err != nil {
		return err
	}
	slog.Info("admin password reset")
	return nil
}

func (s *AdminAuthService) UpdateEmail(ctx context.Context, email, currentPassword string) (string, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return "", err
	}
	if err := s.checkPassword(settings, currentPassword); err != nil {
		return "", err
	}

	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return "", validation.Field("email", err)
	}

	_, err = s.settingsService.Mutate(ctx, func(settings *model.SiteSettings) error {
		settings.AdminEmail = &email
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("admin email updated", "email", email)
	return email, nil
}

// VerifyToken accepts admin bearer tokens only.
func (s *AdminAuthService) VerifyToken(token string) (*Session, error) {
	session, err := s.sessions.Verify(token)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	return session, nil
}

func (s *AdminAuthService) setPasswordHash(ctx context.Context, hash string) error {
	_, err := s.settingsService.Mutate(ctx, func(settings *model.SiteSettings) error {
		settings.AdminPasswordHash = &hash
		return nil
	})
	return err
}

func (s *AdminAuthService) createToken(ctx context.Context, tokenType string, payload *string) (string, error) {
	return createResetToken(ctx, s.tokenRepository, model.TokenSubjectAdmin, tokenType, nil, payload, s.now(), s.resetExpiry)
}

func (s *AdminAuthService) consume(ctx context.Context, token, tokenType string) (*model.ResetToken, error) {
	return consumeResetToken(ctx, s.tokenRepository, token, model.TokenSubjectAdmin, tokenType, s.now())
}

func createResetToken(ctx context.Context, repo repository.TokenRepository, subject, tokenType string, userID, payload *string, now time.Time, ttl time.Duration) (string, error) {
	value, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	rt := model.NewResetToken("", value, subject, tokenType, userID, payload, now, ttl)
	if err := repo.Create(ctx, rt); err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}
	return value, nil
}

// consumeResetToken deletes the token whatever its state, so an expired
// token is gone after the first attempt.
func consumeResetToken(ctx context.Context, repo repository.TokenRepository, token, subject, tokenType string, now time.Time) (*model.ResetToken, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	rt, err := repo.Consume(ctx, token, subject, tokenType)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}
	if rt.IsExpired(now) {
		return nil, ErrInvalidToken
	}
	return rt, nil
}
