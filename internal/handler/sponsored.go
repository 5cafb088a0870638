package handler

import (
	"net/http"
	"time"

	"github.com/templui/downloadzone/internal/service"
)

type sponsoredHandler struct {
	analyticsService *service.AnalyticsService
}

func NewSponsoredHandler(analyticsService *service.AnalyticsService) *sponsoredHandler {
	return &sponsoredHandler{
		analyticsService: analyticsService,
	}
}

func (h *sponsoredHandler) Click(w http.ResponseWriter, r *http.Request) {
	if err := h.analyticsService.RecordSponsoredClick(r.Context(), r.PathValue("id"), time.Now()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *sponsoredHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analyticsService.SponsoredAnalytics(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stats == nil {
		stats = []service.SponsoredStats{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"analytics": stats})
}
