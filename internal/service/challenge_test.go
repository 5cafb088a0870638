package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/model"
)

func TestIssueAndVerifyMath(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	now := time.Now()

	picks := []int{19, 4, 2} // 20 × 5
	e.challenge.intN = func(int) int {
		v := picks[0]
		picks = picks[1:]
		return v
	}

	c, err := e.challenge.Issue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "20 × 5 = ?", c.Challenge)
	assert.WithinDuration(t, now.Add(5*time.Minute), c.ExpiresAt, time.Second)

	ok, err := e.challenge.VerifyMath(ctx, c.ID, 100, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// single use
	ok, err = e.challenge.VerifyMath(ctx, c.ID, 100, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMathRejectsWrongOrExpired(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	now := time.Now()

	c, err := e.challenge.Issue(ctx, now)
	require.NoError(t, err)
	ok, err := e.challenge.VerifyMath(ctx, c.ID, 3, now)
	require.NoError(t, err)
	assert.False(t, ok)

	c, err = e.challenge.Issue(ctx, now)
	require.NoError(t, err)
	ok, err = e.challenge.VerifyMath(ctx, c.ID, 2, now.Add(6*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.challenge.VerifyMath(ctx, "", 2, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyUsesRecaptchaWhenEnabled(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	settings := model.DefaultSiteSettings()
	settings.RecaptchaEnableSubmit = true

	err := e.challenge.Verify(ctx, ScopeSubmit, Proof{RecaptchaToken: "tok"}, "1.2.3.4", settings, time.Now())
	require.ErrorIs(t, err, ErrRecaptchaNotConfigured)

	settings.RecaptchaSiteKey = ptr("site")
	settings.RecaptchaSecretKey = ptr("secret")
	require.NoError(t, e.challenge.Verify(ctx, ScopeSubmit, Proof{RecaptchaToken: "tok"}, "1.2.3.4", settings, time.Now()))

	e.recaptcha.ok = false
	err = e.challenge.Verify(ctx, ScopeSubmit, Proof{RecaptchaToken: "tok"}, "1.2.3.4", settings, time.Now())
	require.ErrorIs(t, err, ErrInvalidChallenge)
	assert.Equal(t, "Invalid reCAPTCHA. Please try again.", err.Error())

	// the auth toggle is independent
	require.NoError(t, e.challenge.Verify(ctx, ScopeAuth, e.proof(t), "1.2.3.4", settings, time.Now()))
}

func TestRecaptchaClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		assert.Equal(t, "1.2.3.4", r.PostForm.Get("remoteip"))
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("response") == "good" {
			_, _ = w.Write([]byte(`{"success": true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := NewRecaptchaVerifier(srv.URL, time.Second)
	ctx := context.Background()

	assert.True(t, v.Verify(ctx, "good", "1.2.3.4", "secret"))
	assert.False(t, v.Verify(ctx, "bad", "1.2.3.4", "secret"))
	assert.False(t, v.Verify(ctx, "", "1.2.3.4", "secret"))
}

func TestRecaptchaClientFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.False(t, NewRecaptchaVerifier(srv.URL, time.Second).Verify(context.Background(), "good", "1.2.3.4", "secret"))

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer slow.Close()

	assert.False(t, NewRecaptchaVerifier(slow.URL, 50*time.Millisecond).Verify(context.Background(), "good", "1.2.3.4", "secret"))
}
