package config

import (
	"os"
	"strconv"
)

// Config clientdesk-data (HTTP API) configuration.
// Built once in main and passed down explicitly; handlers and services never
// read the environment themselves.
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	// AdminToken guards the platform-level /admin routes (tenant management,
	// API key issuance). Empty disables those routes entirely.
	AdminToken string
	Webhook    WebhookConfig
	Export     ExportConfig
}

// DatabaseConfig Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// WebhookConfig outbound event notification settings.
type WebhookConfig struct {
	URL            string // empty disables webhooks
	TimeoutSeconds int
}

// ExportConfig contacts export limits.
type ExportConfig struct {
	MaxRows int
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable, clientdesk-data
	// falls back to in-memory repositories (see cmd/clientdesk-data).
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "clientdesk")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.AdminToken = getEnv("ADMIN_TOKEN", "")

	cfg.Webhook.URL = getEnv("WEBHOOK_URL", "")
	cfg.Webhook.TimeoutSeconds = parseInt(getEnv("WEBHOOK_TIMEOUT_SECONDS", "5"), 5)

	cfg.Export.MaxRows = parseInt(getEnv("EXPORT_MAX_ROWS", "5000"), 5000)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
