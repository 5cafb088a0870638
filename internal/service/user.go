package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
	"github.com/templui/downloadzone/internal/validation"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Proof
}

type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type UserService struct {
	userRepository   repository.UserRepository
	tokenRepository  repository.TokenRepository
	settingsService  *SettingsService
	challengeService *ChallengeService
	emailService     *EmailService
	sessions         *SessionManager
	resetExpiry      time.Duration
	now              func() time.Time
}

func NewUserService(
	userRepository repository.UserRepository,
	tokenRepository repository.TokenRepository,
	settingsService *SettingsService,
	challengeService *ChallengeService,
	emailService *EmailService,
	sessions *SessionManager,
	resetExpiry time.Duration,
) *UserService {
	return &UserService{
		userRepository:   userRepository,
		tokenRepository:  tokenRepository,
		settingsService:  settingsService,
		challengeService: challengeService,
		emailService:     emailService,
		sessions:         sessions,
		resetExpiry:      resetExpiry,
		now:              time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest, clientIP string) (*AuthResult, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.challengeService.Verify(ctx, ScopeAuth, req.Proof, clientIP, settings, s.now()); err != nil {
		return nil, err
	}

	email := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, validation.Field("email", err)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, validation.Field("password", err)
	}

	_, err = s.userRepository.ByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyRegistered
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrEmailAlreadyRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID)

	return s.authResult(user)
}

// Login needs a reCAPTCHA token only when auth reCAPTCHA is enabled.
func (s *UserService) Login(ctx context.Context, req LoginRequest, clientIP string) (*AuthResult, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.challengeService.RequireRecaptcha(ctx, ScopeAuth, req.RecaptchaToken, clientIP, settings); err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByEmail(ctx, validation.NormalizeEmail(req.Email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !comparePassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.authResult(user)
}

func (s *UserService) authResult(user *model.User) (*AuthResult, error) {
	token, err := s.sessions.Issue(Session{Role: RoleUser, UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// ByID is visible to the user themselves and to the admin.
func (s *UserService) ByID(ctx context.Context, id string, caller *Session) (*model.User, error) {
	if caller == nil || (!caller.IsAdmin() && caller.UserID != id) {
		return nil, ErrForbidden
	}
	return s.userRepository.ByID(ctx, id)
}

// ForgotPassword never reveals whether the email belongs to an account.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if s.emailService.AppURL() == "" {
		return ErrAppURLNotConfigured
	}

	user, err := s.userRepository.ByEmail(ctx, validation.NormalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		slog.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := createResetToken(ctx, s.tokenRepository, model.TokenSubjectUser, model.TokenTypeUserReset, &user.ID, nil, s.now(), s.resetExpiry)
	if err != nil {
		return err
	}

	err = s.emailService.SendTemplate(ctx, user.Email, TemplateUserPasswordReset, LinkEmailData{
		AppName:   s.emailService.AppName(),
		Link:      s.emailService.AppURL() + "/reset-password?token=" + token,
		ExpiresIn: s.resetExpiry.String(),
	})
	if err != nil {
		slog.Error("failed to send password reset email", "error", err, "user_id", user.ID)
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return validation.Field("new_password", err)
	}

	rt, err := consumeResetToken(ctx, s.tokenRepository, token, model.TokenSubjectUser, model.TokenTypeUserReset, s.now())
	if err != nil {
		return err
	}
	if rt.UserID == nil {
		return ErrInvalidToken
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepository.UpdatePassword(ctx, *rt.UserID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	slog.Info("user password reset", "user_id", *rt.UserID)
	return nil
}
