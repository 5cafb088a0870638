package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/markdown"
	"github.com/templui/downloadzone/internal/model"
)

func TestRenderSubmissionReceivedEscapesValues(t *testing.T) {
	subject, html, err := renderEmail(markdown.NewParser(), TemplateSubmissionReceived, SubmissionEmailData{
		AppName:   "Download Zone",
		Name:      `*Doom* "Eternal" [v2]`,
		Type:      "game",
		Category:  "N/A",
		FileSize:  "40 GB",
		SubmitURL: "https://dz.example/submit",
		HomeURL:   "https://dz.example",
	})
	require.NoError(t, err)

	assert.Equal(t, `Download Zone - Submission Received: *Doom* "Eternal" [v2]`, subject)
	assert.Contains(t, html, "*Doom*")
	assert.NotContains(t, html, "<em>Doom</em>")
	assert.Contains(t, html, `href="https://dz.example/submit"`)
}

func TestRenderBulkTableCapsRows(t *testing.T) {
	rows := make([]EmailRow, 0, 2)
	rows = append(rows, EmailRow{Name: "A | B", Type: "game", Date: "2025-01-01"}, EmailRow{Name: "C", Type: "movie", Date: "2025-01-02"})

	subject, html, err := renderEmail(markdown.NewParser(), TemplateBulkReceived, BatchEmailData{
		AppName: "Download Zone", Count: 2, Items: rows, SubmitURL: "https://dz.example/submit",
	})
	require.NoError(t, err)
	assert.Equal(t, "Download Zone - Batch Submission Received (2)", subject)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "A | B")
}

func TestEmailServiceTransportSelection(t *testing.T) {
	e := newTestEnv(t)
	settings := model.DefaultSiteSettings()

	svc := NewEmailService(e.settings, markdown.NewParser(), EmailConfig{From: "noreply@dz.example"})
	_, err := svc.transport(settings)
	require.ErrorIs(t, err, ErrEmailNotConfigured)

	svc.config.IsDev = true
	tr, err := svc.transport(settings)
	require.NoError(t, err)
	assert.IsType(t, logTransport{}, tr)

	svc.config.SMTPHost = "smtp.example"
	svc.config.SMTPPort = 587
	tr, err = svc.transport(settings)
	require.NoError(t, err)
	assert.IsType(t, &smtpTransport{}, tr)

	settings.ResendAPIKey = ptr("re_123")
	settings.ResendSenderEmail = ptr("news@dz.example")
	tr, err = svc.transport(settings)
	require.NoError(t, err)
	require.IsType(t, &resendTransport{}, tr)
	assert.Equal(t, "news@dz.example", tr.(*resendTransport).from)
}

func TestSendTemplateWrapsFailures(t *testing.T) {
	e := newTestEnv(t)
	e.mail.err = errSend

	err := e.email.SendTemplate(context.Background(), "a@example.com", TemplateTestEmail, nil)
	require.ErrorIs(t, err, ErrEmailSendFailed)
}
