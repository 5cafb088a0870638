package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/templui/downloadzone/internal/metrics"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

// Scope selects which reCAPTCHA toggle governs a verification.
type Scope int

const (
	ScopeSubmit Scope = iota
	ScopeAuth
)

// Proof is the client's answer to a challenge: either a math captcha
// id and answer, or a reCAPTCHA token.
type Proof struct {
	CaptchaID      string `json:"captcha_id"`
	CaptchaAnswer  *int   `json:"captcha_answer"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// CaptchaChallenge is what clients see of an issued captcha.
type CaptchaChallenge struct {
	ID        string    `json:"id"`
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ChallengeService struct {
	captchaRepository repository.CaptchaRepository
	recaptcha         RecaptchaVerifier
	ttl               time.Duration
	intN              func(n int) int
}

func NewChallengeService(captchaRepository repository.CaptchaRepository, recaptcha RecaptchaVerifier, ttl time.Duration) *ChallengeService {
	return &ChallengeService{
		captchaRepository: captchaRepository,
		recaptcha:         recaptcha,
		ttl:               ttl,
		intN:              rand.IntN,
	}
}

// Issue creates and stores a new math challenge.
func (s *ChallengeService) Issue(ctx context.Context, now time.Time) (*CaptchaChallenge, error) {
	span := model.CaptchaOperandMax - model.CaptchaOperandMin + 1
	a := model.CaptchaOperandMin + s.intN(span)
	b := model.CaptchaOperandMin + s.intN(span)
	op := model.CaptchaOperators[s.intN(len(model.CaptchaOperators))]

	captcha, err := model.NewCaptcha(uuid.New().String(), a, b, op, now, s.ttl)
	if err != nil {
		return nil, err
	}
	if err := s.captchaRepository.Create(ctx, captcha); err != nil {
		return nil, fmt.Errorf("failed to store captcha: %w", err)
	}

	return &CaptchaChallenge{
		ID:        captcha.ID,
		Challenge: captcha.Question(),
		ExpiresAt: captcha.ExpiresAt,
	}, nil
}

// VerifyMath consumes the captcha and checks the answer. The captcha is
// gone afterwards whatever the result.
func (s *ChallengeService) VerifyMath(ctx context.Context, id string, answer int, now time.Time) (bool, error) {
	if id == "" {
		return false, nil
	}

	captcha, err := s.captchaRepository.Consume(ctx, id)
	if errors.Is(err, repository.ErrCaptchaNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume captcha: %w", err)
	}

	if captcha.IsExpired(now) {
		return false, nil
	}
	return captcha.Answer == answer, nil
}

// Verify checks proof with the strategy the settings select for scope.
func (s *ChallengeService) Verify(ctx context.Context, scope Scope, proof Proof, ip string, settings *model.SiteSettings, now time.Time) error {
	if recaptchaEnabled(scope, settings) {
		return s.RequireRecaptcha(ctx, scope, proof.RecaptchaToken, ip, settings)
	}

	ok := false
	if proof.CaptchaAnswer != nil {
		var err error
		ok, err = s.VerifyMath(ctx, proof.CaptchaID, *proof.CaptchaAnswer, now)
		if err != nil {
			return err
		}
	}
	metrics.ChallengesTotal.WithLabelValues("math", metrics.Result(ok)).Inc()
	if !ok {
		return &ChallengeError{Message: "Invalid captcha. Please try again."}
	}
	return nil
}

// RequireRecaptcha checks only reCAPTCHA for scope and passes when the
// scope's toggle is off. Login uses this directly.
func (s *ChallengeService) RequireRecaptcha(ctx context.Context, scope Scope, token, ip string, settings *model.SiteSettings) error {
	if !recaptchaEnabled(scope, settings) {
		return nil
	}
	if !settings.RecaptchaConfigured() {
		return ErrRecaptchaNotConfigured
	}

	ok := s.recaptcha.Verify(ctx, token, ip, *settings.RecaptchaSecretKey)
	metrics.ChallengesTotal.WithLabelValues("recaptcha", metrics.Result(ok)).Inc()
	if !ok {
		return &ChallengeError{Message: "Invalid reCAPTCHA. Please try again."}
	}
	return nil
}

func recaptchaEnabled(scope Scope, settings *model.SiteSettings) bool {
	if scope == ScopeAuth {
		return settings.RecaptchaEnableAuth
	}
	return settings.RecaptchaEnableSubmit
}

func (s *ChallengeService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.captchaRepository.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge captchas: %w", err)
	}
	return n, nil
}
