package handler

import (
	"net/http"
	"time"

	"github.com/templui/downloadzone/internal/ctxkeys"
	"github.com/templui/downloadzone/internal/service"
)

type submissionHandler struct {
	submissionService *service.SubmissionService
	challengeService  *service.ChallengeService
	rateLimitService  *service.RateLimitService
	settingsService   *service.SettingsService
}

func NewSubmissionHandler(
	submissionService *service.SubmissionService,
	challengeService *service.ChallengeService,
	rateLimitService *service.RateLimitService,
	settingsService *service.SettingsService,
) *submissionHandler {
	return &submissionHandler{
		submissionService: submissionService,
		challengeService:  challengeService,
		rateLimitService:  rateLimitService,
		settingsService:   settingsService,
	}
}

func (h *submissionHandler) Captcha(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.challengeService.Issue(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (h *submissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := h.submissionService.Submit(r.Context(), req, ctxkeys.ClientIP(r.Context()), userID(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *submissionHandler) SubmitBulk(w http.ResponseWriter, r *http.Request) {
	var req service.BulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.submissionService.SubmitBulk(r.Context(), req, ctxkeys.ClientIP(r.Context()), userID(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *submissionHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	status, err := h.rateLimitService.Remaining(r.Context(), ctxkeys.ClientIP(r.Context()), time.Now(), settings.DailySubmissionLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
