package handler

import (
	"math"
	"net/http"
	"strings"

	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/service"
)

type moderationHandler struct {
	moderationService *service.ModerationService
}

func NewModerationHandler(moderationService *service.ModerationService) *moderationHandler {
	return &moderationHandler{
		moderationService: moderationService,
	}
}

func (h *moderationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1, 1, math.MaxInt32)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultModerationLimit, 1, service.MaxPageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := model.SubmissionStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		writeError(w, r, &paramError{field: "status", message: "status must be pending, approved or rejected"})
		return
	}

	result, err := h.moderationService.List(r.Context(), status, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *moderationHandler) UnseenCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.moderationService.UnseenCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

type approveResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Download *model.Download `json:"download"`
}

func (h *moderationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	download, err := h.moderationService.Approve(r.Context(), r.PathValue("id"), false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, approveResponse{Success: true, Message: "Submission approved", Download: download})
}

func (h *moderationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.moderationService.Reject(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Submission rejected"})
}

func (h *moderationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.moderationService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
