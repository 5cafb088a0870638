package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

func TestSettingsDefaults(t *testing.T) {
	e := newTestEnv(t)

	s, err := e.settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, s.DailySubmissionLimit)
	assert.Equal(t, "DOWNLOAD ZONE", *s.SiteName)
	assert.Equal(t, 1, e.count(t, "site_settings"))
}

func TestSettingsPartialUpdateKeepsOtherFields(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.updateSettings(t, model.SettingsUpdate{SiteName: ptr("WAREZ"), DailySubmissionLimit: ptr(20)})
	s := e.updateSettings(t, model.SettingsUpdate{TopDownloadsCount: ptr(50)})

	assert.Equal(t, "WAREZ", *s.SiteName)
	assert.Equal(t, 20, s.DailySubmissionLimit)
	assert.Equal(t, model.MaxListCount, s.TopDownloadsCount)

	got, err := e.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSettingsGetReturnsCopy(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	s, err := e.settings.Get(ctx)
	require.NoError(t, err)
	s.DailySubmissionLimit = 99

	again, err := e.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, again.DailySubmissionLimit)
}

func TestSettingsRecaptchaNeedsKeys(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.settings.Update(context.Background(), model.SettingsUpdate{RecaptchaEnableSubmit: ptr(true)})
	require.ErrorIs(t, err, model.ErrRecaptchaKeysRequired)

	s, err := e.settings.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, s.RecaptchaEnableSubmit)
}

func TestSettingsConcurrentDisjointUpdates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, err := e.settings.Get(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = e.settings.Update(ctx, model.SettingsUpdate{SiteName: ptr("CONCURRENT")})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = e.settings.Update(ctx, model.SettingsUpdate{AutoApproveSubmissions: ptr(true)})
	}()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	s, err := e.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CONCURRENT", *s.SiteName)
	assert.True(t, s.AutoApproveSubmissions)
}

func TestThemeUpdate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	theme, err := e.settings.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTheme(), theme)

	theme, err = e.settings.UpdateTheme(ctx, model.ThemeUpdate{Mode: ptr("light")})
	require.NoError(t, err)
	assert.Equal(t, "light", theme.Mode)
	assert.Equal(t, "#00FF41", theme.AccentColor)

	_, err = e.settings.UpdateTheme(ctx, model.ThemeUpdate{AccentColor: ptr("green")})
	require.Error(t, err)
}

// interleavedSettings runs write once, right after the first read it serves,
// so the reader holds a document that is already stale.
type interleavedSettings struct {
	repository.SettingsRepository
	write func()
}

func (r *interleavedSettings) Get(ctx context.Context, id string) (*model.SettingsDocument, error) {
	doc, err := r.SettingsRepository.Get(ctx, id)
	if write := r.write; write != nil {
		r.write = nil
		write()
	}
	return doc, err
}

func TestSettingsStaleReadIsNotCached(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	repo := &interleavedSettings{SettingsRepository: repository.NewSettingsRepository(e.db)}
	svc := NewSettingsService(repo, time.Hour)
	_, err := svc.Update(ctx, model.SettingsUpdate{DailySubmissionLimit: ptr(20)})
	require.NoError(t, err)

	repo.write = func() {
		_, err := svc.Update(ctx, model.SettingsUpdate{DailySubmissionLimit: ptr(50)})
		require.NoError(t, err)
	}

	stale, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, stale.DailySubmissionLimit)

	fresh, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, fresh.DailySubmissionLimit)
}
