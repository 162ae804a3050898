package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Environment       string
	DatabaseDriver    string
	DatabaseURL       string
	HTTPPort          string
	LogLevel          string
	LogFormat         string
	NonceSecret       string
	NonceTTLHours     int
	AdminUsername     string
	AdminPasswordHash string
	AdminEmail        string
	AdminBaseURL      string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFromEmail     string
	SMTPFromName      string
	SentryDSN         string
}

// WidgetConfig configures the widget host (cmd/widget).
type WidgetConfig struct {
	BackendURL    string
	Origin        string
	Store         string
	StorePath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTLHours int
	LogLevel      string
	LogFormat     string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		DatabaseDriver:    getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:       getEnv("DATABASE_URL", "whisp_chat.db"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		NonceSecret:       getEnv("NONCE_SECRET", ""),
		NonceTTLHours:     getEnvAsInt("NONCE_TTL_HOURS", 12),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminBaseURL:      getEnv("ADMIN_BASE_URL", "http://localhost:8080"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:     getEnv("SMTP_FROM_EMAIL", ""),
		SMTPFromName:      getEnv("SMTP_FROM_NAME", "Whisp Chat"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
	}

	if AppConfig.NonceSecret == "" {
		logrus.Fatal("NONCE_SECRET environment variable is required")
	}

	if AppConfig.DatabaseDriver != "sqlite" && AppConfig.DatabaseDriver != "postgres" {
		logrus.Fatalf("DATABASE_DRIVER must be sqlite or postgres, got %q", AppConfig.DatabaseDriver)
	}

	if AppConfig.AdminPasswordHash == "" {
		logrus.Warn("ADMIN_PASSWORD_HASH is not set, admin API logins will be rejected")
	}
}

// LoadWidgetConfig reads the widget host settings. Unlike LoadConfig it has
// no required keys: the widget must come up even with nothing configured.
func LoadWidgetConfig() WidgetConfig {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on environment variables")
	}

	return WidgetConfig{
		BackendURL:    getEnv("WIDGET_BACKEND_URL", "http://localhost:8080"),
		Origin:        getEnv("WIDGET_ORIGIN", "http://localhost"),
		Store:         getEnv("WIDGET_STORE", "bolt"),
		StorePath:     getEnv("WIDGET_STORE_PATH", "whisp_widget.bolt"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisTTLHours: getEnvAsInt("REDIS_TTL_HOURS", 720),
		LogLevel:      getEnv("LOG_LEVEL", "WARN"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}
}

// SMTPEnabled reports whether enough SMTP settings are present to send mail.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFromEmail != "" && c.AdminEmail != ""
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
