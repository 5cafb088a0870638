package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/service"
)

type settingsHandler struct {
	settingsService *service.SettingsService
	emailService    *service.EmailService
}

func NewSettingsHandler(settingsService *service.SettingsService, emailService *service.EmailService) *settingsHandler {
	return &settingsHandler{
		settingsService: settingsService,
		emailService:    emailService,
	}
}

// Public is the redacted settings document for the site frontend.
func (h *settingsHandler) Public(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings.Public(time.Now(), false))
}

func (h *settingsHandler) Recaptcha(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings.RecaptchaPublic())
}

// Admin is the redacted document plus which secrets are stored.
func (h *settingsHandler) Admin(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings.Public(time.Now(), true))
}

func (h *settingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update model.SettingsUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	h.save(w, r, update)
}

type resendSettingsRequest struct {
	ResendAPIKey      *string `json:"resend_api_key"`
	ResendSenderEmail *string `json:"resend_sender_email"`
}

func (h *settingsHandler) UpdateResend(w http.ResponseWriter, r *http.Request) {
	var req resendSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.save(w, r, model.SettingsUpdate{
		ResendAPIKey:      req.ResendAPIKey,
		ResendSenderEmail: req.ResendSenderEmail,
	})
}

func (h *settingsHandler) save(w http.ResponseWriter, r *http.Request, update model.SettingsUpdate) {
	settings, err := h.settingsService.Update(r.Context(), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings.Public(time.Now(), true))
}

// TestEmail sends the test template to the admin email through whichever
// transport is currently configured.
func (h *settingsHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if settings.AdminEmail == nil || *settings.AdminEmail == "" {
		writeError(w, r, service.ErrAdminEmailNotSet)
		return
	}

	err = h.emailService.SendTemplate(r.Context(), *settings.AdminEmail, service.TemplateTestEmail, nil)
	if errors.Is(err, service.ErrEmailNotConfigured) {
		writeError(w, r, err)
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to send test email")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *settingsHandler) Theme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.settingsService.Theme(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (h *settingsHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var update model.ThemeUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, err)
		return
	}

	theme, err := h.settingsService.UpdateTheme(r.Context(), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}
