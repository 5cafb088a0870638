package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/validation"
)

func TestAdminInitAndLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.admin.Login(ctx, "anything")
	require.ErrorIs(t, err, ErrAdminNotInitialized)

	require.NoError(t, e.admin.Init(ctx, "Admin@DZ.example", "correct-horse"))
	require.ErrorIs(t, e.admin.Init(ctx, "admin@dz.example", "another-pass"), ErrAdminInitialized)

	_, err = e.admin.Login(ctx, "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	token, err := e.admin.Login(ctx, "correct-horse")
	require.NoError(t, err)

	session, err := e.admin.VerifyToken(token)
	require.NoError(t, err)
	assert.True(t, session.IsAdmin())

	settings, err := e.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin@dz.example", *settings.AdminEmail)
	assert.NotContains(t, *settings.AdminPasswordHash, "correct-horse")
}

func TestAdminInitValidatesPassword(t *testing.T) {
	e := newTestEnv(t)

	err := e.admin.Init(context.Background(), "admin@dz.example", "short")
	var ve *validation.Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
}

func TestAdminBootstrapPassword(t *testing.T) {
	e := newTestEnv(t)
	e.admin.bootstrapPassword = "from-env-123"

	_, err := e.admin.Login(context.Background(), "from-env-123")
	require.NoError(t, err)
	_, err = e.admin.Login(context.Background(), "from-env-124")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminVerifyTokenRejectsUserTokens(t *testing.T) {
	e := newTestEnv(t)

	token, err := e.admin.sessions.Issue(Session{Role: RoleUser, UserID: "u-1"})
	require.NoError(t, err)

	_, err = e.admin.VerifyToken(token)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = e.admin.VerifyToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminPasswordChangeFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.admin.Init(ctx, "admin@dz.example", "old-password"))

	require.ErrorIs(t, e.admin.RequestPasswordChange(ctx, "bad-password", "new-password"), ErrInvalidCredentials)
	require.NoError(t, e.admin.RequestPasswordChange(ctx, "old-password", "new-password"))

	email := e.mail.last(t)
	assert.Equal(t, "admin@dz.example", email.To)
	assert.Equal(t, "Confirm admin password change", email.Subject)
	assert.Contains(t, email.HTML, testAppURL+"/admin/confirm-password-change?token=")

	// the old password stays valid until the link is used
	_, err := e.admin.Login(ctx, "old-password")
	require.NoError(t, err)

	token := tokenFrom(t, email)
	require.NoError(t, e.admin.ConfirmPasswordChange(ctx, token))
	require.ErrorIs(t, e.admin.ConfirmPasswordChange(ctx, token), ErrInvalidToken)

	_, err = e.admin.Login(ctx, "new-password")
	require.NoError(t, err)
}

func TestAdminPasswordChangeNeedsEmail(t *testing.T) {
	e := newTestEnv(t)
	e.admin.bootstrapPassword = "from-env-123"

	err := e.admin.RequestPasswordChange(context.Background(), "from-env-123", "new-password")
	require.ErrorIs(t, err, ErrAdminEmailNotSet)
}

func TestAdminPasswordChangeSendFailure(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.admin.Init(ctx, "admin@dz.example", "old-password"))
	e.mail.err = errSend

	err := e.admin.RequestPasswordChange(ctx, "old-password", "new-password")
	require.ErrorIs(t, err, ErrEmailSendFailed)
}

func TestAdminForgotAndReset(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.admin.Init(ctx, "admin@dz.example", "old-password"))

	require.NoError(t, e.admin.ForgotPassword(ctx, "someone@else.example"))
	assert.Empty(t, e.mail.sent)

	require.NoError(t, e.admin.ForgotPassword(ctx, "ADMIN@dz.example"))
	email := e.mail.last(t)
	assert.Contains(t, email.HTML, testAppURL+"/admin/reset-password?token=")

	token := tokenFrom(t, email)
	require.NoError(t, e.admin.ResetPassword(ctx, token, "brand-new-pass"))
	require.ErrorIs(t, e.admin.ResetPassword(ctx, token, "brand-new-pass"), ErrInvalidToken)

	_, err := e.admin.Login(ctx, "brand-new-pass")
	require.NoError(t, err)
}

func TestAdminResetRejectsExpiredToken(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.admin.Init(ctx, "admin@dz.example", "old-password"))
	require.NoError(t, e.admin.ForgotPassword(ctx, "admin@dz.example"))
	token := tokenFrom(t, e.mail.last(t))

	e.admin.now = func() time.Time { return time.Now().Add(time.Hour) }
	require.ErrorIs(t, e.admin.ResetPassword(ctx, token, "brand-new-pass"), ErrInvalidToken)
	assert.Equal(t, 0, e.count(t, "password_reset_tokens"))
}

func TestAdminUpdateEmail(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.admin.Init(ctx, "admin@dz.example", "old-password"))

	_, err := e.admin.UpdateEmail(ctx, "new@dz.example", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	email, err := e.admin.UpdateEmail(ctx, " New@DZ.example ", "old-password")
	require.NoError(t, err)
	assert.Equal(t, "new@dz.example", email)

	settings, err := e.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new@dz.example", *settings.AdminEmail)
}
