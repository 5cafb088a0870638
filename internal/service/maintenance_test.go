package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanup(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	now := time.Now()

	_, err := e.challenge.Issue(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = e.challenge.Issue(ctx, now.Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, e.admin.Init(ctx, "admin@dz.example", "old-password"))
	require.NoError(t, e.admin.ForgotPassword(ctx, "admin@dz.example"))

	e.notification.Enqueue(ctx, "fan@example.com", "test", TemplateTestEmail, nil, now.Add(-40*24*time.Hour))
	_, err = e.notification.ProcessDue(ctx, now)
	require.NoError(t, err)

	svc := NewMaintenanceService(e.challenge, e.tokenRepository, e.notification)
	res, err := svc.Cleanup(ctx, now.Add(40*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, &CleanupResult{Captchas: 1, Tokens: 1, Emails: 1}, res)
	assert.Equal(t, 1, e.count(t, "captchas"))
}
