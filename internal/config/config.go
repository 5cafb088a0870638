package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string // Public frontend URL used for password links
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret                string
	JWTExpiry                time.Duration
	TokenPasswordResetExpiry time.Duration
	CaptchaExpiry            time.Duration
	TrustProxyHeaders        bool
	CORSAllowedOrigins       []string

	// Admin bootstrap (used until a password is stored in site settings)
	AdminPassword string
	AdminEmail    string

	// Email (settings can override the Resend key and sender at runtime)
	EmailFrom    string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// reCAPTCHA
	RecaptchaVerifyURL string
	RecaptchaTimeout   time.Duration

	// Background work
	SettingsCacheTTL   time.Duration
	OutboxPollInterval time.Duration
	OutboxMaxAttempts  int

	// Observability (optional)
	SentryDSN string

	// Storage for catalog exports (optional, S3-compatible)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	// Lifetime of the presigned link returned for an export
	ExportURLExpiry time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Download Zone"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  strings.TrimSuffix(envString("APP_URL", ""), "/"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/downloadzone.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_time_format=sqlite"),

		// Security
		JWTSecret:                envRequired("JWT_SECRET"),
		JWTExpiry:                envDuration("JWT_EXPIRY", 24*time.Hour),
		TokenPasswordResetExpiry: envDuration("TOKEN_PASSWORD_RESET_EXPIRY", 30*time.Minute),
		CaptchaExpiry:            envDuration("CAPTCHA_EXPIRY", 5*time.Minute),
		TrustProxyHeaders:        envBool("TRUST_PROXY_HEADERS", false),
		CORSAllowedOrigins:       envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Admin
		AdminPassword: envString("ADMIN_PASSWORD", ""),
		AdminEmail:    envString("ADMIN_EMAIL", ""),

		// Email
		EmailFrom:    envString("EMAIL_FROM", "onboarding@resend.dev"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),
		SMTPHost:     envString("SMTP_HOST", ""),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUsername: envString("SMTP_USERNAME", ""),
		SMTPPassword: envString("SMTP_PASSWORD", ""),

		// reCAPTCHA
		RecaptchaVerifyURL: envString("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		RecaptchaTimeout:   envDuration("RECAPTCHA_TIMEOUT", 10*time.Second),

		// Background work
		SettingsCacheTTL:   envDuration("SETTINGS_CACHE_TTL", 5*time.Second),
		OutboxPollInterval: envDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),
		OutboxMaxAttempts:  envInt("OUTBOX_MAX_ATTEMPTS", 5),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),

		ExportURLExpiry: envDuration("EXPORT_URL_EXPIRY", time.Hour),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction warns about missing services. Email credentials can
// still arrive later through site settings, so nothing here is fatal.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" && !cfg.SMTPEnabled() {
		slog.Warn("no email transport configured",
			"hint", "set RESEND_API_KEY or SMTP_HOST, or store a Resend key in site settings")
	}
	if cfg.AppURL == "" {
		slog.Warn("APP_URL not set, password reset links cannot be generated")
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
