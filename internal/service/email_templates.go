package service

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/templui/downloadzone/internal/markdown"
)

//go:embed emails/*.md
var emailFS embed.FS

const (
	TemplateSubmissionReceived  = "submission_received"
	TemplateBulkReceived        = "bulk_received"
	TemplateSubmissionApproved  = "submission_approved"
	TemplateAdminSummary        = "admin_summary"
	TemplateAdminPasswordChange = "admin_password_change"
	TemplateAdminPasswordReset  = "admin_password_reset"
	TemplateUserPasswordReset   = "user_password_reset"
	TemplateTestEmail           = "test_email"
)

var emailTemplates = template.Must(
	template.New("emails").Funcs(template.FuncMap{
		"md":    markdown.Escape,
		"quote": quoteYAML,
	}).ParseFS(emailFS, "emails/*.md"),
)

// quoteYAML renders s as a double-quoted scalar, which YAML reads the
// same way JSON does.
func quoteYAML(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// renderEmail executes the named Markdown template and converts it to
// HTML. The subject comes from the template's frontmatter.
func renderEmail(parser *markdown.Parser, name string, data any) (subject, html string, err error) {
	var src bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&src, name+".md", data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template %s: %w", name, err)
	}

	doc, err := parser.Render(src.Bytes())
	if err != nil {
		return "", "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}
	return doc.Subject, doc.HTML, nil
}

// SubmissionEmailData feeds the submission received and approved emails.
type SubmissionEmailData struct {
	AppName   string
	Name      string
	Type      string
	Category  string
	FileSize  string
	Date      string
	Time      string
	SubmitURL string
	HomeURL   string
}

type EmailRow struct {
	Name string
	Type string
	Date string
}

// BatchEmailData feeds the bulk confirmation and the admin summary.
type BatchEmailData struct {
	AppName   string
	Count     int
	Items     []EmailRow
	SubmitURL string
}

type LinkEmailData struct {
	AppName   string
	Link      string
	ExpiresIn string
}
