package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	Port         string
	ClientOrigin string // React client base URL, target of OAuth redirects

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Tokens
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	KakaoRESTAPIKey    string
	KakaoClientSecret  string
	KakaoRedirectURL   string
	OAuthTimeout       time.Duration

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.) for profile photos
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "Maeulhub"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:         envString("PORT", "4000"),
		ClientOrigin: envRequired("CLIENT_ORIGIN"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/maeulhub.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Tokens
		AccessTokenSecret:  envRequired("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: envRequired("REFRESH_TOKEN_SECRET"),
		AccessTokenExpiry:  envDuration("ACCESS_TOKEN_EXPIRY", 12*time.Hour),
		RefreshTokenExpiry: envDuration("REFRESH_TOKEN_EXPIRY", 50*24*time.Hour),

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  envString("GOOGLE_REDIRECT_URL", ""),
		KakaoRESTAPIKey:    envString("KAKAO_REST_API_KEY", ""),
		KakaoClientSecret:  envString("KAKAO_CLIENT_SECRET", ""),
		KakaoRedirectURL:   envString("KAKAO_REDIRECT_URL", ""),
		OAuthTimeout:       envDuration("OAUTH_TIMEOUT", 10*time.Second),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for profile photo uploads)
		S3Region:    envRequired("S3_REGION"),
		S3Bucket:    envRequired("S3_BUCKET"),
		S3AccessKey: envRequired("S3_ACCESS_KEY"),
		S3SecretKey: envRequired("S3_SECRET_KEY"),
		S3Endpoint:  envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production
// deployments. Development allows OAuth to stay unconfigured for local testing.
func validateProduction(cfg *Config) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		slog.Error("production deployment requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET",
			"hint", "set APP_ENV=development to run without OAuth")
		os.Exit(1)
	}
	if cfg.KakaoRESTAPIKey == "" {
		slog.Error("production deployment requires KAKAO_REST_API_KEY",
			"hint", "set APP_ENV=development to run without OAuth")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
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
