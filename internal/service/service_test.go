package service

import (
	"context"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/db/dbtest"
	"github.com/templui/downloadzone/internal/markdown"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

const testAppURL = "https://dz.example"

func ptr[T any](v T) *T { return &v }

type sentEmail struct {
	To, Subject, HTML string
}

type fakeTransport struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeTransport) Send(_ context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (f *fakeTransport) last(t *testing.T) sentEmail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no email sent")
	return f.sent[len(f.sent)-1]
}

type fakeRecaptcha struct {
	ok    bool
	calls int
}

func (f *fakeRecaptcha) Verify(_ context.Context, token, _, _ string) bool {
	f.calls++
	return f.ok && token != ""
}

type fakeStorage struct {
	objects map[string][]byte
	err     error
}

func (f *fakeStorage) Save(_ context.Context, key string, body io.Reader, _ string) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = b
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.example/" + key + "?signed", nil
}

// testEnv wires every service over a fresh database.
type testEnv struct {
	db        *sqlx.DB
	mail      *fakeTransport
	recaptcha *fakeRecaptcha

	settings     *SettingsService
	rateLimit    *RateLimitService
	challenge    *ChallengeService
	email        *EmailService
	notification *NotificationService
	catalog      *CatalogService
	moderation   *ModerationService
	submission   *SubmissionService
	admin        *AdminAuthService
	users        *UserService
	categories   *CategoryService
	analytics    *AnalyticsService

	downloadRepository repository.DownloadRepository
	tokenRepository    repository.TokenRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := dbtest.New(t)

	e := &testEnv{db: database, mail: &fakeTransport{}, recaptcha: &fakeRecaptcha{ok: true}}

	e.downloadRepository = repository.NewDownloadRepository(database)
	e.tokenRepository = repository.NewTokenRepository(database)
	submissionRepository := repository.NewSubmissionRepository(database)

	e.settings = NewSettingsService(repository.NewSettingsRepository(database), time.Minute)
	e.rateLimit = NewRateLimitService(repository.NewRateLimitRepository(database))
	e.challenge = NewChallengeService(repository.NewCaptchaRepository(database), e.recaptcha, 5*time.Minute)
	// 1 + 1 = ?
	e.challenge.intN = func(int) int { return 0 }

	e.email = NewEmailService(e.settings, markdown.NewParser(), EmailConfig{
		AppName: "Download Zone",
		AppURL:  testAppURL,
		From:    "noreply@dz.example",
	})
	e.email.resolve = func(*model.SiteSettings) (Transport, error) { return e.mail, nil }

	e.notification = NewNotificationService(repository.NewOutboxRepository(database), e.email, time.Second, 3)
	e.catalog = NewCatalogService(e.downloadRepository, e.settings)
	e.moderation = NewModerationService(submissionRepository, e.settings, e.notification)
	e.submission = NewSubmissionService(submissionRepository, e.settings, e.challenge, e.rateLimit, e.moderation, e.notification)

	sessions := NewSessionManager("test-secret", time.Hour)
	e.admin = NewAdminAuthService(e.settings, e.tokenRepository, e.email, sessions, 30*time.Minute, "", "")
	e.users = NewUserService(repository.NewUserRepository(database), e.tokenRepository, e.settings, e.challenge, e.email, sessions, 30*time.Minute)
	e.categories = NewCategoryService(repository.NewCategoryRepository(database))
	e.analytics = NewAnalyticsService(repository.NewClickRepository(database), e.settings)
	return e
}

// proof issues a captcha and answers it correctly.
func (e *testEnv) proof(t *testing.T) Proof {
	t.Helper()
	c, err := e.challenge.Issue(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, "1 + 1 = ?", c.Challenge)
	return Proof{CaptchaID: c.ID, CaptchaAnswer: ptr(2)}
}

func (e *testEnv) updateSettings(t *testing.T, u model.SettingsUpdate) *model.SiteSettings {
	t.Helper()
	s, err := e.settings.Update(context.Background(), u)
	require.NoError(t, err)
	return s
}

func (e *testEnv) outboxKinds(t *testing.T) []string {
	t.Helper()
	var kinds []string
	require.NoError(t, e.db.Select(&kinds, `SELECT kind FROM email_outbox ORDER BY created_at, kind`))
	return kinds
}

func (e *testEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

var tokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_-]+)`)

func tokenFrom(t *testing.T, email sentEmail) string {
	t.Helper()
	m := tokenPattern.FindStringSubmatch(email.HTML)
	require.Len(t, m, 2, "no token link in %q", email.HTML)
	return m[1]
}

func input(name, typ string) model.SubmissionInput {
	return model.SubmissionInput{
		Name:         name,
		DownloadLink: "https://files.example/" + name,
		Type:         typ,
		SiteName:     "Mirror",
		SiteURL:      "https://mirror.example",
	}
}

var errSend = errors.New("smtp: connection refused")
