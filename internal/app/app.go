package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/downloadzone/internal/config"
	"github.com/templui/downloadzone/internal/db"
	"github.com/templui/downloadzone/internal/markdown"
	"github.com/templui/downloadzone/internal/repository"
	"github.com/templui/downloadzone/internal/service"
	"github.com/templui/downloadzone/internal/storage"
)

type App struct {
	Cfg *config.Config
	DB  *sqlx.DB

	Sessions            *service.SessionManager
	SettingsService     *service.SettingsService
	RateLimitService    *service.RateLimitService
	ChallengeService    *service.ChallengeService
	EmailService        *service.EmailService
	NotificationService *service.NotificationService
	CatalogService      *service.CatalogService
	ModerationService   *service.ModerationService
	SubmissionService   *service.SubmissionService
	AdminAuthService    *service.AdminAuthService
	UserService         *service.UserService
	CategoryService     *service.CategoryService
	AnalyticsService    *service.AnalyticsService
	SeedService         *service.SeedService
	ExportService       *service.ExportService
	MaintenanceService  *service.MaintenanceService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage is optional; exports fail with a config error without it
	var store storage.Storage
	if cfg.StorageEnabled() {
		s3, err := storage.New(ctx, cfg)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = s3
	}

	return Wire(cfg, database, store), nil
}

// Wire builds every repository and service over an open database.
func Wire(cfg *config.Config, database *sqlx.DB, store storage.Storage) *App {
	// Repositories
	settingsRepository := repository.NewSettingsRepository(database)
	rateLimitRepository := repository.NewRateLimitRepository(database)
	captchaRepository := repository.NewCaptchaRepository(database)
	downloadRepository := repository.NewDownloadRepository(database)
	submissionRepository := repository.NewSubmissionRepository(database)
	categoryRepository := repository.NewCategoryRepository(database)
	clickRepository := repository.NewClickRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	userRepository := repository.NewUserRepository(database)
	outboxRepository := repository.NewOutboxRepository(database)

	// Services
	sessions := service.NewSessionManager(cfg.JWTSecret, cfg.JWTExpiry)
	settingsService := service.NewSettingsService(settingsRepository, cfg.SettingsCacheTTL)
	rateLimitService := service.NewRateLimitService(rateLimitRepository)
	challengeService := service.NewChallengeService(
		captchaRepository,
		service.NewRecaptchaVerifier(cfg.RecaptchaVerifyURL, cfg.RecaptchaTimeout),
		cfg.CaptchaExpiry,
	)
	emailService := service.NewEmailService(settingsService, markdown.NewParser(), service.EmailConfig{
		AppName:      cfg.AppName,
		AppURL:       cfg.AppURL,
		From:         cfg.EmailFrom,
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
		IsDev:        cfg.IsDevelopment(),
	})
	notificationService := service.NewNotificationService(outboxRepository, emailService, cfg.OutboxPollInterval, cfg.OutboxMaxAttempts)
	catalogService := service.NewCatalogService(downloadRepository, settingsService)
	moderationService := service.NewModerationService(submissionRepository, settingsService, notificationService)
	submissionService := service.NewSubmissionService(
		submissionRepository,
		settingsService,
		challengeService,
		rateLimitService,
		moderationService,
		notificationService,
	)
	adminAuthService := service.NewAdminAuthService(
		settingsService,
		tokenRepository,
		emailService,
		sessions,
		cfg.TokenPasswordResetExpiry,
		cfg.AdminPassword,
		cfg.AdminEmail,
	)
	userService := service.NewUserService(
		userRepository,
		tokenRepository,
		settingsService,
		challengeService,
		emailService,
		sessions,
		cfg.TokenPasswordResetExpiry,
	)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		Sessions:            sessions,
		SettingsService:     settingsService,
		RateLimitService:    rateLimitService,
		ChallengeService:    challengeService,
		EmailService:        emailService,
		NotificationService: notificationService,
		CatalogService:      catalogService,
		ModerationService:   moderationService,
		SubmissionService:   submissionService,
		AdminAuthService:    adminAuthService,
		UserService:         userService,
		CategoryService:     service.NewCategoryService(categoryRepository),
		AnalyticsService:    service.NewAnalyticsService(clickRepository, settingsService),
		SeedService:         service.NewSeedService(downloadRepository, categoryRepository, uint64(time.Now().UnixNano())),
		ExportService:       service.NewExportService(downloadRepository, store, cfg.ExportURLExpiry),
		MaintenanceService:  service.NewMaintenanceService(challengeService, tokenRepository, notificationService),
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
