package handler

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
	"github.com/templui/downloadzone/internal/service"
)

type downloadHandler struct {
	catalogService *service.CatalogService
}

func NewDownloadHandler(catalogService *service.CatalogService) *downloadHandler {
	return &downloadHandler{
		catalogService: catalogService,
	}
}

func (h *downloadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1, 1, math.MaxInt32)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultPageLimit, 1, service.MaxPageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := downloadFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.catalogService.List(r.Context(), filter, firstQuery(r, "sort_by", "sort"), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// downloadFilter reads the catalog filters from the query string. Size
// bounds that do not parse are ignored rather than rejected.
func downloadFilter(r *http.Request) (repository.DownloadFilter, error) {
	q := r.URL.Query()
	filter := repository.DownloadFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
		SizeMin:  model.ParseFileSize(q.Get("size_min")),
		SizeMax:  model.ParseFileSize(q.Get("size_max")),
	}
	if typ := firstQuery(r, "type_filter", "type"); typ != "all" {
		filter.Type = typ
	}
	for _, tag := range model.NormalizeTags(strings.Split(q.Get("tags"), ",")) {
		filter.Tags = append(filter.Tags, model.FoldTag(tag))
	}

	var err error
	if filter.DateFrom, err = queryDate(r, "date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = queryDate(r, "date_to"); err != nil {
		return filter, err
	}
	return filter, nil
}

// firstQuery returns the first non-empty value among the given parameter
// names. The short names are accepted as aliases.
func firstQuery(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, name := range names {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

func (h *downloadHandler) Top(w http.ResponseWriter, r *http.Request) {
	top, err := h.catalogService.Top(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *downloadHandler) Trending(w http.ResponseWriter, r *http.Request) {
	trending, err := h.catalogService.Trending(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trending)
}

func (h *downloadHandler) Track(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.TrackActivity(r.Context(), r.PathValue("id"), time.Now()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *downloadHandler) Increment(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.IncrementDownloadCount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *downloadHandler) Tags(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultPageLimit, 1, service.MaxPageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := h.catalogService.PopularTags(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []model.TagCount{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *downloadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalogService.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Search is the admin lookup by name.
func (h *downloadHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultPageLimit, 1, service.MaxPageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.catalogService.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []*model.Download{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *downloadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
