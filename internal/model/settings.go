package model

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SettingsID = "site_settings"
	ThemeID    = "theme"

	MinDailySubmissionLimit = 5
	MaxDailySubmissionLimit = 100
	MinListCount            = 5
	MaxListCount            = 20
	MaxSponsoredDownloads   = 5
)

var ErrRecaptchaKeysRequired = errors.New("reCAPTCHA keys are required when enabling reCAPTCHA")

// SponsoredDownload is a hand-configured placement shown ahead of the
// organic top downloads. It lives in settings, not in the catalog.
type SponsoredDownload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DownloadLink string  `json:"download_link"`
	Type         string  `json:"type,omitempty"`
	Description  *string `json:"description,omitempty"`
	FileSize     *string `json:"file_size,omitempty"`
	SiteName     *string `json:"site_name,omitempty"`
	SiteURL      *string `json:"site_url,omitempty"`
}

// SiteSettings is the singleton configuration document.
type SiteSettings struct {
	DailySubmissionLimit int                 `json:"daily_submission_limit"`
	TopDownloadsEnabled  bool                `json:"top_downloads_enabled"`
	TopDownloadsCount    int                 `json:"top_downloads_count"`
	SponsoredDownloads   []SponsoredDownload `json:"sponsored_downloads"`

	TrendingDownloadsEnabled bool `json:"trending_downloads_enabled"`
	TrendingDownloadsCount   int  `json:"trending_downloads_count"`

	SiteName           *string `json:"site_name"`
	SiteNameFontFamily string  `json:"site_name_font_family"`
	SiteNameFontWeight string  `json:"site_name_font_weight"`
	SiteNameFontColor  string  `json:"site_name_font_color"`
	BodyFontFamily     string  `json:"body_font_family"`
	BodyFontWeight     string  `json:"body_font_weight"`

	FooterEnabled       bool   `json:"footer_enabled"`
	FooterLine1Template string `json:"footer_line1_template"`
	FooterLine2Template string `json:"footer_line2_template"`

	AutoApproveSubmissions bool `json:"auto_approve_submissions"`

	RecaptchaSiteKey      *string `json:"recaptcha_site_key"`
	RecaptchaSecretKey    *string `json:"recaptcha_secret_key,omitempty"`
	RecaptchaEnableSubmit bool    `json:"recaptcha_enable_submit"`
	RecaptchaEnableAuth   bool    `json:"recaptcha_enable_auth"`

	ResendAPIKey      *string `json:"resend_api_key,omitempty"`
	ResendSenderEmail *string `json:"resend_sender_email"`

	AdminEmail        *string `json:"admin_email"`
	AdminPasswordHash *string `json:"admin_password_hash,omitempty"`
}

func DefaultSiteSettings() *SiteSettings {
	siteName := "DOWNLOAD ZONE"
	return &SiteSettings{
		DailySubmissionLimit:     10,
		TopDownloadsEnabled:      true,
		TopDownloadsCount:        5,
		SponsoredDownloads:       []SponsoredDownload{},
		TrendingDownloadsEnabled: false,
		TrendingDownloadsCount:   5,
		SiteName:                 &siteName,
		SiteNameFontFamily:       "JetBrains Mono",
		SiteNameFontWeight:       "700",
		SiteNameFontColor:        "#00FF41",
		BodyFontFamily:           "JetBrains Mono",
		BodyFontWeight:           "400",
		FooterEnabled:            true,
		FooterLine1Template:      "For DMCA copyright complaints send an email to {admin_email}.",
		FooterLine2Template:      "Copyright © {site_name} {year}. All rights reserved.",
	}
}

// Normalize clamps bounded fields into range. It is applied on every write
// and after every read so stored documents can never escape the bounds.
func (s *SiteSettings) Normalize() {
	s.DailySubmissionLimit = clamp(s.DailySubmissionLimit, MinDailySubmissionLimit, MaxDailySubmissionLimit)
	s.TopDownloadsCount = clamp(s.TopDownloadsCount, MinListCount, MaxListCount)
	s.TrendingDownloadsCount = clamp(s.TrendingDownloadsCount, MinListCount, MaxListCount)
	if s.SponsoredDownloads == nil {
		s.SponsoredDownloads = []SponsoredDownload{}
	}
	if len(s.SponsoredDownloads) > MaxSponsoredDownloads {
		s.SponsoredDownloads = s.SponsoredDownloads[:MaxSponsoredDownloads]
	}
}

// Validate checks cross-field rules.
func (s *SiteSettings) Validate() error {
	if (s.RecaptchaEnableSubmit || s.RecaptchaEnableAuth) && !s.RecaptchaConfigured() {
		return ErrRecaptchaKeysRequired
	}
	return nil
}

func (s *SiteSettings) RecaptchaConfigured() bool {
	return s.RecaptchaSiteKey != nil && *s.RecaptchaSiteKey != "" &&
		s.RecaptchaSecretKey != nil && *s.RecaptchaSecretKey != ""
}

func (s *SiteSettings) HasAdminPassword() bool {
	return s.AdminPasswordHash != nil && *s.AdminPasswordHash != ""
}

func (s *SiteSettings) SponsoredByID(id string) (SponsoredDownload, bool) {
	for _, sp := range s.SponsoredDownloads {
		if sp.ID == id {
			return sp, true
		}
	}
	return SponsoredDownload{}, false
}

// Clone returns a deep copy safe to mutate.
func (s *SiteSettings) Clone() *SiteSettings {
	c := *s
	c.SponsoredDownloads = make([]SponsoredDownload, len(s.SponsoredDownloads))
	copy(c.SponsoredDownloads, s.SponsoredDownloads)
	return &c
}

// SettingsUpdate carries a partial settings change. Nil fields are left
// untouched. For optional strings an empty value clears the field.
type SettingsUpdate struct {
	DailySubmissionLimit *int                 `json:"daily_submission_limit"`
	TopDownloadsEnabled  *bool                `json:"top_downloads_enabled"`
	TopDownloadsCount    *int                 `json:"top_downloads_count"`
	SponsoredDownloads   *[]SponsoredDownload `json:"sponsored_downloads"`

	TrendingDownloadsEnabled *bool `json:"trending_downloads_enabled"`
	TrendingDownloadsCount   *int  `json:"trending_downloads_count"`

	SiteName           *string `json:"site_name"`
	SiteNameFontFamily *string `json:"site_name_font_family"`
	SiteNameFontWeight *string `json:"site_name_font_weight"`
	SiteNameFontColor  *string `json:"site_name_font_color"`
	BodyFontFamily     *string `json:"body_font_family"`
	BodyFontWeight     *string `json:"body_font_weight"`

	FooterEnabled       *bool   `json:"footer_enabled"`
	FooterLine1Template *string `json:"footer_line1_template"`
	FooterLine2Template *string `json:"footer_line2_template"`

	AutoApproveSubmissions *bool `json:"auto_approve_submissions"`

	RecaptchaSiteKey      *string `json:"recaptcha_site_key"`
	RecaptchaSecretKey    *string `json:"recaptcha_secret_key"`
	RecaptchaEnableSubmit *bool   `json:"recaptcha_enable_submit"`
	RecaptchaEnableAuth   *bool   `json:"recaptcha_enable_auth"`

	ResendAPIKey      *string `json:"resend_api_key"`
	ResendSenderEmail *string `json:"resend_sender_email"`

	AdminEmail *string `json:"admin_email"`
}

// Apply merges the supplied fields into s.
func (s *SiteSettings) Apply(u SettingsUpdate) {
	setInt(&s.DailySubmissionLimit, u.DailySubmissionLimit)
	setBool(&s.TopDownloadsEnabled, u.TopDownloadsEnabled)
	setInt(&s.TopDownloadsCount, u.TopDownloadsCount)
	if u.SponsoredDownloads != nil {
		s.SponsoredDownloads = normalizeSponsored(*u.SponsoredDownloads)
	}

	setBool(&s.TrendingDownloadsEnabled, u.TrendingDownloadsEnabled)
	setInt(&s.TrendingDownloadsCount, u.TrendingDownloadsCount)

	setOptional(&s.SiteName, u.SiteName)
	setString(&s.SiteNameFontFamily, u.SiteNameFontFamily)
	setString(&s.SiteNameFontWeight, u.SiteNameFontWeight)
	setString(&s.SiteNameFontColor, u.SiteNameFontColor)
	setString(&s.BodyFontFamily, u.BodyFontFamily)
	setString(&s.BodyFontWeight, u.BodyFontWeight)

	setBool(&s.FooterEnabled, u.FooterEnabled)
	setString(&s.FooterLine1Template, u.FooterLine1Template)
	setString(&s.FooterLine2Template, u.FooterLine2Template)

	setBool(&s.AutoApproveSubmissions, u.AutoApproveSubmissions)

	setOptional(&s.RecaptchaSiteKey, u.RecaptchaSiteKey)
	setOptional(&s.RecaptchaSecretKey, u.RecaptchaSecretKey)
	setBool(&s.RecaptchaEnableSubmit, u.RecaptchaEnableSubmit)
	setBool(&s.RecaptchaEnableAuth, u.RecaptchaEnableAuth)

	setOptional(&s.ResendAPIKey, u.ResendAPIKey)
	setOptional(&s.ResendSenderEmail, u.ResendSenderEmail)

	setOptional(&s.AdminEmail, u.AdminEmail)

	s.Normalize()
}

// normalizeSponsored trims entries, drops ones without a name or link,
// assigns missing ids and keeps at most MaxSponsoredDownloads.
func normalizeSponsored(in []SponsoredDownload) []SponsoredDownload {
	out := make([]SponsoredDownload, 0, min(len(in), MaxSponsoredDownloads))
	for _, sp := range in {
		sp.Name = strings.TrimSpace(sp.Name)
		sp.DownloadLink = strings.TrimSpace(sp.DownloadLink)
		if sp.Name == "" || sp.DownloadLink == "" {
			continue
		}
		sp.ID = strings.TrimSpace(sp.ID)
		if sp.ID == "" {
			sp.ID = uuid.NewString()
		}
		out = append(out, sp)
		if len(out) == MaxSponsoredDownloads {
			break
		}
	}
	return out
}

// FooterLines renders the footer templates.
func (s *SiteSettings) FooterLines(now time.Time) (string, string) {
	adminEmail := ""
	if s.AdminEmail != nil {
		adminEmail = *s.AdminEmail
	}
	siteName := ""
	if s.SiteName != nil {
		siteName = *s.SiteName
	}
	r := strings.NewReplacer(
		"{admin_email}", adminEmail,
		"{site_name}", siteName,
		"{year}", strconv.Itoa(now.Year()),
	)
	return r.Replace(s.FooterLine1Template), r.Replace(s.FooterLine2Template)
}

// PublicSettings is the settings document without secrets.
type PublicSettings struct {
	SiteSettings
	FooterLine1Rendered string         `json:"footer_line1_rendered"`
	FooterLine2Rendered string         `json:"footer_line2_rendered"`
	Secrets             *SecretsStatus `json:"secrets,omitempty"`
}

// SecretsStatus tells the admin which secrets are stored without revealing them.
type SecretsStatus struct {
	RecaptchaSecretKey bool `json:"recaptcha_secret_key"`
	ResendAPIKey       bool `json:"resend_api_key"`
	AdminPassword      bool `json:"admin_password"`
}

// Public returns a redacted view. withStatus adds which secrets are set.
func (s *SiteSettings) Public(now time.Time, withStatus bool) PublicSettings {
	c := s.Clone()
	c.RecaptchaSecretKey = nil
	c.ResendAPIKey = nil
	c.AdminPasswordHash = nil

	line1, line2 := s.FooterLines(now)
	p := PublicSettings{
		SiteSettings:        *c,
		FooterLine1Rendered: line1,
		FooterLine2Rendered: line2,
	}
	if withStatus {
		p.Secrets = &SecretsStatus{
			RecaptchaSecretKey: s.RecaptchaSecretKey != nil && *s.RecaptchaSecretKey != "",
			ResendAPIKey:       s.ResendAPIKey != nil && *s.ResendAPIKey != "",
			AdminPassword:      s.HasAdminPassword(),
		}
	}
	return p
}

type RecaptchaPublic struct {
	SiteKey      *string `json:"site_key"`
	EnableSubmit bool    `json:"enable_submit"`
	EnableAuth   bool    `json:"enable_auth"`
}

func (s *SiteSettings) RecaptchaPublic() RecaptchaPublic {
	return RecaptchaPublic{
		SiteKey:      s.RecaptchaSiteKey,
		EnableSubmit: s.RecaptchaEnableSubmit,
		EnableAuth:   s.RecaptchaEnableAuth,
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			*dst = trimmed
		}
	}
}

func setOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	*dst = optional(v)
}

// SettingsDocument is the stored form of a singleton settings row.
type SettingsDocument struct {
	ID        string    `db:"id"`
	Data      string    `db:"data"`
	Version   int       `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}
