package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/downloadzone/internal/app"
	"github.com/templui/downloadzone/internal/handler"
	"github.com/templui/downloadzone/internal/middleware"
)

// SetupRoutes builds the API handler. The returned limiter owns a cleanup
// goroutine; callers stop it on shutdown.
func SetupRoutes(app *app.App) (http.Handler, *middleware.RateLimiter) {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	downloads := handler.NewDownloadHandler(app.CatalogService)
	submissions := handler.NewSubmissionHandler(app.SubmissionService, app.ChallengeService, app.RateLimitService, app.SettingsService)
	moderation := handler.NewModerationHandler(app.ModerationService)
	settings := handler.NewSettingsHandler(app.SettingsService, app.EmailService)
	categories := handler.NewCategoryHandler(app.CategoryService)
	sponsored := handler.NewSponsoredHandler(app.AnalyticsService)
	users := handler.NewUserHandler(app.UserService)
	admin := handler.NewAdminHandler(app.AdminAuthService)
	ops := handler.NewOpsHandler(app.SeedService, app.ExportService)

	// Everything except /healthz and /metrics lives under /api.
	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/{$}", health.Root)
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Catalog
	mux.HandleFunc("GET /api/downloads", downloads.List)
	mux.HandleFunc("GET /api/downloads/top", downloads.Top)
	mux.HandleFunc("GET /api/downloads/trending", downloads.Trending)
	mux.HandleFunc("POST /api/downloads/{id}/track", downloads.Track)
	mux.HandleFunc("POST /api/downloads/{id}/increment", downloads.Increment)
	mux.HandleFunc("GET /api/tags", downloads.Tags)
	mux.HandleFunc("GET /api/stats", downloads.Stats)
	mux.HandleFunc("GET /api/categories", categories.List)
	mux.HandleFunc("POST /api/sponsored/{id}/click", sponsored.Click)

	// Submissions
	mux.HandleFunc("GET /api/captcha", submissions.Captcha)
	mux.HandleFunc("POST /api/submissions", submissions.Submit)
	mux.HandleFunc("POST /api/submissions/bulk", submissions.SubmitBulk)
	mux.HandleFunc("GET /api/submissions/remaining", submissions.Remaining)

	// Site settings
	mux.HandleFunc("GET /api/settings", settings.Public)
	mux.HandleFunc("GET /api/recaptcha/settings", settings.Recaptcha)
	mux.HandleFunc("GET /api/theme", settings.Theme)
	mux.HandleFunc("PUT /api/theme", middleware.RequireAdmin(settings.UpdateTheme))

	// ============================================================================
	// AUTH ROUTES (rate limited)
	// ============================================================================

	limiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /api/auth/register", limiter.Limit(users.Register))
	mux.HandleFunc("POST /api/auth/login", limiter.Limit(users.Login))
	mux.HandleFunc("GET /api/auth/user/{id}", limiter.Limit(middleware.RequireUser(users.User)))
	mux.HandleFunc("POST /api/auth/forgot-password", limiter.Limit(users.ForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", limiter.Limit(users.ResetPassword))

	mux.HandleFunc("POST /api/admin/init", limiter.Limit(admin.Init))
	mux.HandleFunc("POST /api/admin/login", limiter.Limit(admin.Login))
	mux.HandleFunc("POST /api/admin/forgot-password", limiter.Limit(admin.ForgotPassword))
	mux.HandleFunc("POST /api/admin/reset-password", limiter.Limit(admin.ResetPassword))
	mux.HandleFunc("POST /api/admin/password/change/confirm", limiter.Limit(admin.ConfirmPasswordChange))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("POST /api/admin/password/change/request", middleware.RequireAdmin(admin.RequestPasswordChange))
	mux.HandleFunc("PUT /api/admin/email", middleware.RequireAdmin(admin.UpdateEmail))

	// Moderation
	mux.HandleFunc("GET /api/admin/submissions", middleware.RequireAdmin(moderation.List))
	mux.HandleFunc("GET /api/admin/submissions/unseen-count", middleware.RequireAdmin(moderation.UnseenCount))
	mux.HandleFunc("POST /api/admin/submissions/{id}/approve", middleware.RequireAdmin(moderation.Approve))
	mux.HandleFunc("POST /api/admin/submissions/{id}/reject", middleware.RequireAdmin(moderation.Reject))
	mux.HandleFunc("DELETE /api/admin/submissions/{id}", middleware.RequireAdmin(moderation.Delete))

	// Catalog
	mux.HandleFunc("GET /api/admin/downloads/search", middleware.RequireAdmin(downloads.Search))
	mux.HandleFunc("DELETE /api/admin/downloads/{id}", middleware.RequireAdmin(downloads.Delete))
	mux.HandleFunc("POST /api/admin/categories", middleware.RequireAdmin(categories.Create))
	mux.HandleFunc("DELETE /api/admin/categories/{id}", middleware.RequireAdmin(categories.Delete))
	mux.HandleFunc("GET /api/admin/sponsored/analytics", middleware.RequireAdmin(sponsored.Analytics))

	// Settings
	mux.HandleFunc("GET /api/admin/settings", middleware.RequireAdmin(settings.Admin))
	mux.HandleFunc("PUT /api/admin/settings", middleware.RequireAdmin(settings.Update))
	mux.HandleFunc("PUT /api/admin/resend", middleware.RequireAdmin(settings.UpdateResend))
	mux.HandleFunc("POST /api/admin/resend/test", middleware.RequireAdmin(settings.TestEmail))

	// Operations
	mux.HandleFunc("POST /api/admin/seed", middleware.RequireAdmin(ops.Seed))
	mux.HandleFunc("POST /api/admin/export", middleware.RequireAdmin(ops.Export))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		middleware.Route(mux),
		middleware.Metrics,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.ClientIP(app.Cfg.TrustProxyHeaders),
		middleware.BearerAuth(app.Sessions),
	)

	return h, limiter
}
