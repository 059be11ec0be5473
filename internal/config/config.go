package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseURL string

	RedisURL string

	JWTSecret string

	ResendAPIKey string
	FromEmail    string
	FromName     string
	BaseCurrency string

	QueueBatchSize     int
	QueueTickInterval  time.Duration
	QueueRetentionDays int
	EmailRatePerSecond int

	AlertScanTime      string
	CleanupTime        string
	NotifRetentionDays int

	LogLevel  string
	LogFormat string

	CORSOrigins string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
		FromName:     getEnv("FROM_NAME", "Agência de Viagens"),
		BaseCurrency: getEnv("BASE_CURRENCY", "BRL"),

		QueueBatchSize:     getIntEnv("QUEUE_BATCH_SIZE", 50),
		QueueTickInterval:  getDurationEnv("QUEUE_TICK_INTERVAL", time.Minute),
		QueueRetentionDays: getIntEnv("QUEUE_RETENTION_DAYS", 30),
		EmailRatePerSecond: getIntEnv("EMAIL_RATE_PER_SECOND", 10),

		AlertScanTime:      getEnv("ALERT_SCAN_TIME", "07:00"),
		CleanupTime:        getEnv("CLEANUP_TIME", "03:00"),
		NotifRetentionDays: getIntEnv("NOTIF_RETENTION_DAYS", 90),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
