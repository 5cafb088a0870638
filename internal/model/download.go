package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

type DownloadType string

const (
	DownloadTypeGame     DownloadType = "game"
	DownloadTypeSoftware DownloadType = "software"
	DownloadTypeMovie    DownloadType = "movie"
	DownloadTypeTVShow   DownloadType = "tv_show"
)

var DownloadTypes = []DownloadType{
	DownloadTypeGame,
	DownloadTypeSoftware,
	DownloadTypeMovie,
	DownloadTypeTVShow,
}

func (t DownloadType) Valid() bool {
	for _, v := range DownloadTypes {
		if t == v {
			return true
		}
	}
	return false
}

// DateLayout is the zero-padded calendar date used for submission_date and
// rate limit days. Range filters compare these strings lexicographically.
const DateLayout = "2006-01-02"

func Day(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Download is a published catalog entry.
type Download struct {
	ID             string       `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	DownloadLink   string       `db:"download_link" json:"download_link"`
	Type           DownloadType `db:"type" json:"type"`
	SubmissionDate string       `db:"submission_date" json:"submission_date"`
	Approved       bool         `db:"approved" json:"approved"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	DownloadCount  int64        `db:"download_count" json:"download_count"`
	FileSize       *string      `db:"file_size" json:"file_size"`
	FileSizeBytes  *int64       `db:"file_size_bytes" json:"file_size_bytes"`
	Description    *string      `db:"description" json:"description"`
	Category       *string      `db:"category" json:"category"`
	SiteName       *string      `db:"site_name" json:"site_name"`
	SiteURL        *string      `db:"site_url" json:"site_url"`
	Tags           Tags         `db:"tags" json:"tags"`
}

// DownloadFromSubmission materializes a catalog entry from a submission.
// The entry gets its own id and creation time; approved is always true.
func DownloadFromSubmission(s *Submission, id string, now time.Time) *Download {
	tags := make(Tags, len(s.Tags))
	copy(tags, s.Tags)

	return &Download{
		ID:             id,
		Name:           s.Name,
		DownloadLink:   s.DownloadLink,
		Type:           s.Type,
		SubmissionDate: s.SubmissionDate,
		Approved:       true,
		CreatedAt:      now.UTC(),
		FileSize:       s.FileSize,
		FileSizeBytes:  s.FileSizeBytes,
		Description:    s.Description,
		Category:       s.Category,
		SiteName:       s.SiteName,
		SiteURL:        s.SiteURL,
		Tags:           tags,
	}
}

// Tags is an ordered tag list stored as a JSON array.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("tags: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// FoldTag returns the case-insensitive key used to index and match tags.
// Casers carry state, so each call gets its own.
func FoldTag(tag string) string {
	return cases.Fold().String(strings.TrimSpace(tag))
}

// NormalizeTags trims tags, drops empties and removes case-insensitive
// duplicates while keeping the first spelling and the original order.
func NormalizeTags(raw []string) Tags {
	out := Tags{}
	seen := make(map[string]bool, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := FoldTag(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
