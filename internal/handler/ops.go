package handler

import (
	"net/http"
	"time"

	"github.com/templui/downloadzone/internal/service"
)

type opsHandler struct {
	seedService   *service.SeedService
	exportService *service.ExportService
}

func NewOpsHandler(seedService *service.SeedService, exportService *service.ExportService) *opsHandler {
	return &opsHandler{
		seedService:   seedService,
		exportService: exportService,
	}
}

func (h *opsHandler) Seed(w http.ResponseWriter, r *http.Request) {
	result, err := h.seedService.Seed(r.Context(), service.DefaultSeedCount, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *opsHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.exportService.Export(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
