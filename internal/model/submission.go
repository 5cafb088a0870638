package model

import (
	"strings"
	"time"

	"github.com/templui/downloadzone/internal/validation"
)

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

type Submission struct {
	ID              string           `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	DownloadLink    string           `db:"download_link" json:"download_link"`
	Type            DownloadType     `db:"type" json:"type"`
	SubmissionDate  string           `db:"submission_date" json:"submission_date"`
	Status          SubmissionStatus `db:"status" json:"status"`
	SeenByAdmin     bool             `db:"seen_by_admin" json:"seen_by_admin"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	FileSize        *string          `db:"file_size" json:"file_size"`
	FileSizeBytes   *int64           `db:"file_size_bytes" json:"file_size_bytes"`
	Description     *string          `db:"description" json:"description"`
	Category        *string          `db:"category" json:"category"`
	SiteName        *string          `db:"site_name" json:"site_name"`
	SiteURL         *string          `db:"site_url" json:"site_url"`
	Tags            Tags             `db:"tags" json:"tags"`
	SubmitterEmail  *string          `db:"submitter_email" json:"submitter_email"`
	SubmitterUserID *string          `db:"submitter_user_id" json:"submitter_user_id"`
}

// SubmissionInput is the client-supplied part of a submission.
type SubmissionInput struct {
	Name           string   `json:"name"`
	DownloadLink   string   `json:"download_link"`
	Type           string   `json:"type"`
	SiteName       string   `json:"site_name"`
	SiteURL        string   `json:"site_url"`
	FileSize       *string  `json:"file_size"`
	Description    *string  `json:"description"`
	Category       *string  `json:"category"`
	Tags           []string `json:"tags"`
	SubmitterEmail *string  `json:"submitter_email"`
}

// NewSubmission validates input and builds a pending, unseen submission.
// Every submission path goes through here, so site_name and site_url rules
// hold for single, bulk and generated entries alike.
func NewSubmission(id string, in SubmissionInput, now time.Time) (*Submission, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, validation.Field("name", err)
	}

	link := strings.TrimSpace(in.DownloadLink)
	if link == "" {
		return nil, validation.NewError("download_link", "download link is required")
	}

	typ := DownloadType(strings.TrimSpace(in.Type))
	if !typ.Valid() {
		return nil, validation.NewError("type", "type must be one of game, software, movie, tv_show")
	}

	if err := validation.ValidateSiteName(in.SiteName); err != nil {
		return nil, validation.Field("site_name", err)
	}
	siteName := strings.TrimSpace(in.SiteName)

	if err := validation.ValidateHTTPURL(in.SiteURL); err != nil {
		return nil, validation.Field("site_url", err)
	}
	siteURL := strings.TrimSpace(in.SiteURL)

	email := optional(in.SubmitterEmail)
	if email != nil {
		normalized := validation.NormalizeEmail(*email)
		if err := validation.ValidateEmail(normalized); err != nil {
			return nil, validation.Field("submitter_email", err)
		}
		email = &normalized
	}

	fileSize := optional(in.FileSize)
	var fileSizeBytes *int64
	if fileSize != nil {
		fileSizeBytes = ParseFileSize(*fileSize)
	}

	return &Submission{
		ID:             id,
		Name:           name,
		DownloadLink:   link,
		Type:           typ,
		SubmissionDate: Day(now),
		Status:         SubmissionStatusPending,
		SeenByAdmin:    false,
		CreatedAt:      now.UTC(),
		FileSize:       fileSize,
		FileSizeBytes:  fileSizeBytes,
		Description:    optional(in.Description),
		Category:       optional(in.Category),
		SiteName:       &siteName,
		SiteURL:        &siteURL,
		Tags:           NormalizeTags(in.Tags),
		SubmitterEmail: email,
	}, nil
}

// optional trims a string pointer and maps blank values to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
