package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/downloadzone/internal/repository"
	"github.com/templui/downloadzone/internal/storage"
)

type ExportResult struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	URL   string `json:"url,omitempty"`
}

// ExportService writes a JSON snapshot of the catalog to object storage.
type ExportService struct {
	downloadRepository repository.DownloadRepository
	storage            storage.Storage
	urlExpiry          time.Duration
}

// NewExportService accepts a nil storage; Export then fails with
// ErrStorageNotConfigured.
func NewExportService(downloadRepository repository.DownloadRepository, store storage.Storage, urlExpiry time.Duration) *ExportService {
	return &ExportService{downloadRepository: downloadRepository, storage: store, urlExpiry: urlExpiry}
}

// Export writes every entry, oldest first, as a JSON array under
// exports/downloads-<timestamp>.json.
func (s *ExportService) Export(ctx context.Context, now time.Time) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	count := 0
	for page := 1; ; page++ {
		items, total, err := s.downloadRepository.List(ctx, repository.DownloadFilter{}, repository.DownloadSortDateAsc, page, MaxPageLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		for _, d := range items {
			if count > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(d)
			if err != nil {
				return nil, fmt.Errorf("failed to encode download %s: %w", d.ID, err)
			}
			buf.Write(b)
			count++
		}
		if len(items) == 0 || page*MaxPageLimit >= total {
			break
		}
	}
	buf.WriteByte(']')

	key := fmt.Sprintf("exports/downloads-%s.json", now.UTC().Format("20060102T150405Z"))
	if err := s.storage.Save(ctx, key, &buf, "application/json"); err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	result := &ExportResult{Key: key, Count: count}
	if s.urlExpiry > 0 {
		url, err := s.storage.PresignedURL(ctx, key, s.urlExpiry)
		if err != nil {
			slog.Warn("failed to presign export link", "error", err, "key", key)
		} else {
			result.URL = url
		}
	}

	slog.Info("catalog exported", "key", key, "count", count)
	return result, nil
}
