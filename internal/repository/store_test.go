package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/db/dbtest"
	"github.com/templui/downloadzone/internal/model"
)

func TestRateLimitRepositoryIncrement(t *testing.T) {
	repo := NewRateLimitRepository(dbtest.New(t))
	ctx := context.Background()

	ok, err := repo.Increment(ctx, "1.2.3.4", "2026-03-01", 3, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Increment(ctx, "1.2.3.4", "2026-03-01", 3, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Increment(ctx, "1.2.3.4", "2026-03-01", 2, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Increment(ctx, "5.6.7.8", "2026-03-01", 6, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	used, err := repo.Used(ctx, "1.2.3.4", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 5, used)

	used, err = repo.Used(ctx, "1.2.3.4", "2026-03-02")
	require.NoError(t, err)
	assert.Zero(t, used)

	used, err = repo.Used(ctx, "5.6.7.8", "2026-03-01")
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestRateLimitRepositoryConcurrentIncrement(t *testing.T) {
	repo := NewRateLimitRepository(dbtest.New(t))
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Increment(ctx, "9.9.9.9", "2026-03-01", 1, 5)
			if err == nil && ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	used, err := repo.Used(ctx, "9.9.9.9", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, int32(used), allowed.Load())
	assert.LessOrEqual(t, used, 5)
}

func TestCaptchaRepositoryConsumeOnce(t *testing.T) {
	repo := NewCaptchaRepository(dbtest.New(t))
	ctx := context.Background()

	c, err := model.NewCaptcha("c-1", 4, 7, "+", base, 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Consume(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 11, got.Answer)
	assert.True(t, got.ExpiresAt.Equal(base.Add(5*time.Minute)))

	_, err = repo.Consume(ctx, "c-1")
	assert.ErrorIs(t, err, ErrCaptchaNotFound)
}

func TestCaptchaRepositoryDeleteExpired(t *testing.T) {
	repo := NewCaptchaRepository(dbtest.New(t))
	ctx := context.Background()

	old, _ := model.NewCaptcha("old", 1, 2, "+", base, time.Minute)
	fresh, _ := model.NewCaptcha("fresh", 1, 2, "+", base.Add(time.Hour), time.Minute)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))

	n, err := repo.DeleteExpired(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Consume(ctx, "fresh")
	assert.NoError(t, err)
}

func TestSettingsRepositoryCompareAndSwap(t *testing.T) {
	repo := NewSettingsRepository(dbtest.New(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, model.SettingsID)
	assert.ErrorIs(t, err, ErrSettingsNotFound)

	require.NoError(t, repo.Insert(ctx, model.SettingsID, `{"a":1}`, base))
	require.NoError(t, repo.Insert(ctx, model.SettingsID, `{"a":2}`, base))

	doc, err := repo.Get(ctx, model.SettingsID)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, doc.Data)
	assert.Equal(t, 1, doc.Version)

	ok, err := repo.Update(ctx, model.SettingsID, `{"a":3}`, 1, base)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Update(ctx, model.SettingsID, `{"a":4}`, 1, base)
	require.NoError(t, err)
	assert.False(t, ok)

	doc, err = repo.Get(ctx, model.SettingsID)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3}`, doc.Data)
	assert.Equal(t, 2, doc.Version)
}

func TestTokenRepositoryConsume(t *testing.T) {
	repo := NewTokenRepository(dbtest.New(t))
	ctx := context.Background()

	hash := "$2a$10$hash"
	tok := model.NewResetToken("t-1", "secret", model.TokenSubjectAdmin, model.TokenTypeAdminChange, nil, &hash, base, 30*time.Minute)
	require.NoError(t, repo.Create(ctx, tok))

	_, err := repo.Consume(ctx, "secret", model.TokenSubjectAdmin, model.TokenTypeAdminForgot)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	got, err := repo.Consume(ctx, "secret", model.TokenSubjectAdmin, model.TokenTypeAdminChange)
	require.NoError(t, err)
	require.NotNil(t, got.Payload)
	assert.Equal(t, hash, *got.Payload)
	assert.False(t, got.IsExpired(base.Add(29*time.Minute)))

	_, err = repo.Consume(ctx, "secret", model.TokenSubjectAdmin, model.TokenTypeAdminChange)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(dbtest.New(t))
	ctx := context.Background()

	u := &model.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "h1", CreatedAt: base}
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, &model.User{ID: "u-2", Email: "ann@example.com", PasswordHash: "h", CreatedAt: base}), ErrDuplicateEmail)

	got, err := repo.ByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	require.NoError(t, repo.UpdatePassword(ctx, "u-1", "h2"))
	got, err = repo.ByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "nobody", "h"), ErrUserNotFound)
	_, err = repo.ByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCategoryRepository(t *testing.T) {
	repo := NewCategoryRepository(dbtest.New(t))
	ctx := context.Background()

	for _, c := range []struct{ id, name, typ string }{
		{"c1", "Strategy", "game"},
		{"c2", "Classics", model.CategoryTypeAll},
		{"c3", "Utilities", "software"},
	} {
		cat, err := model.NewCategory(c.id, c.name, c.typ, base)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, cat))
	}

	dup, _ := model.NewCategory("c4", "Strategy", "game", base)
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateCategory)

	games, err := repo.List(ctx, "game")
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Classics", games[0].Name)
	assert.Equal(t, "Strategy", games[1].Name)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, repo.Delete(ctx, "c1"))
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), ErrCategoryNotFound)
}

func TestClickRepositoryCounts(t *testing.T) {
	repo := NewClickRepository(dbtest.New(t))
	ctx := context.Background()
	now := base.Add(30 * 24 * time.Hour)

	clicks := []struct {
		id  string
		sid string
		at  time.Time
	}{
		{"k1", "sp-1", now.Add(-time.Hour)},
		{"k2", "sp-1", now.Add(-3 * 24 * time.Hour)},
		{"k3", "sp-1", now.Add(-20 * 24 * time.Hour)},
		{"k4", "sp-2", now.Add(-10 * 24 * time.Hour)},
	}
	for _, c := range clicks {
		require.NoError(t, repo.Record(ctx, &model.SponsoredClick{ID: c.id, SponsoredID: c.sid, CreatedAt: c.at}))
	}

	counts, err := repo.Counts(ctx, []string{"sp-1", "sp-2", "sp-3"}, now)
	require.NoError(t, err)
	assert.Equal(t, model.ClickCounts{SponsoredID: "sp-1", Total: 3, Last24h: 1, Last7d: 2}, counts["sp-1"])
	assert.Equal(t, model.ClickCounts{SponsoredID: "sp-2", Total: 1}, counts["sp-2"])
	_, ok := counts["sp-3"]
	assert.False(t, ok)

	empty, err := repo.Counts(ctx, nil, now)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOutboxRepositoryFlow(t *testing.T) {
	repo := NewOutboxRepository(dbtest.New(t))
	ctx := context.Background()

	msg := &model.OutboxMessage{
		ID: "m-1", ToEmail: "admin@example.com", Subject: "New submission", HTML: "<p>hi</p>",
		Kind: "submission", NextAttemptAt: base, CreatedAt: base,
	}
	require.NoError(t, repo.Enqueue(ctx, msg))

	due, err := repo.Due(ctx, base.Add(-time.Second), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = repo.Due(ctx, base, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, model.OutboxStatusPending, due[0].Status)

	won, err := repo.Claim(ctx, "m-1", base, time.Minute)
	require.NoError(t, err)
	assert.True(t, won)
	won, err = repo.Claim(ctx, "m-1", base, time.Minute)
	require.NoError(t, err)
	assert.False(t, won)

	require.NoError(t, repo.MarkRetry(ctx, "m-1", 1, "boom", base.Add(2*time.Minute)))
	due, err = repo.Due(ctx, base.Add(2*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 1, due[0].Attempts)
	require.NotNil(t, due[0].LastError)

	require.NoError(t, repo.MarkSent(ctx, "m-1", base.Add(3*time.Minute)))
	due, err = repo.Due(ctx, base.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	n, err := repo.DeleteFinishedBefore(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
