package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsApplyMergesOnlySuppliedFields(t *testing.T) {
	s := DefaultSiteSettings()
	s.AdminEmail = ptr("admin@example.com")

	s.Apply(SettingsUpdate{
		DailySubmissionLimit: ptr(500),
		TopDownloadsCount:    ptr(1),
		SiteName:             ptr("  "),
		BodyFontFamily:       ptr(" Inter "),
	})

	assert.Equal(t, MaxDailySubmissionLimit, s.DailySubmissionLimit)
	assert.Equal(t, MinListCount, s.TopDownloadsCount)
	assert.Nil(t, s.SiteName)
	assert.Equal(t, "Inter", s.BodyFontFamily)
	assert.Equal(t, "admin@example.com", *s.AdminEmail)
	assert.True(t, s.TopDownloadsEnabled)
}

func TestSettingsApplySponsored(t *testing.T) {
	s := DefaultSiteSettings()
	var in []SponsoredDownload
	for i := 0; i < 7; i++ {
		in = append(in, SponsoredDownload{Name: "Promo", DownloadLink: "https://x.example"})
	}
	in = append([]SponsoredDownload{{ID: "keep", Name: "First", DownloadLink: "https://a.example"}, {Name: ""}}, in...)

	s.Apply(SettingsUpdate{SponsoredDownloads: &in})

	require.Len(t, s.SponsoredDownloads, MaxSponsoredDownloads)
	assert.Equal(t, "keep", s.SponsoredDownloads[0].ID)
	for _, sp := range s.SponsoredDownloads {
		assert.NotEmpty(t, sp.ID)
	}
}

func TestSettingsValidateRecaptcha(t *testing.T) {
	s := DefaultSiteSettings()
	s.RecaptchaEnableSubmit = true
	assert.ErrorIs(t, s.Validate(), ErrRecaptchaKeysRequired)

	s.RecaptchaSiteKey = ptr("site")
	s.RecaptchaSecretKey = ptr("secret")
	assert.NoError(t, s.Validate())
}

func TestSettingsPublicRedactsSecrets(t *testing.T) {
	s := DefaultSiteSettings()
	s.ResendAPIKey = ptr("re_123")
	s.RecaptchaSecretKey = ptr("secret")
	s.AdminPasswordHash = ptr("hash")
	s.AdminEmail = ptr("dmca@example.com")

	p := s.Public(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true)

	assert.Nil(t, p.ResendAPIKey)
	assert.Nil(t, p.RecaptchaSecretKey)
	assert.Nil(t, p.AdminPasswordHash)
	assert.Equal(t, "re_123", *s.ResendAPIKey)
	assert.Equal(t, "For DMCA copyright complaints send an email to dmca@example.com.", p.FooterLine1Rendered)
	assert.Equal(t, "Copyright © DOWNLOAD ZONE 2026. All rights reserved.", p.FooterLine2Rendered)
	require.NotNil(t, p.Secrets)
	assert.True(t, p.Secrets.ResendAPIKey)
	assert.True(t, p.Secrets.AdminPassword)
}

func TestThemeApply(t *testing.T) {
	th := DefaultTheme()
	require.NoError(t, th.Apply(ThemeUpdate{Mode: ptr("light")}))
	assert.Equal(t, "light", th.Mode)
	assert.Equal(t, "#00FF41", th.AccentColor)

	assert.Error(t, th.Apply(ThemeUpdate{Mode: ptr("neon")}))
	assert.Error(t, th.Apply(ThemeUpdate{AccentColor: ptr("green")}))
}
