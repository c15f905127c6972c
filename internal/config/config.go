package config

import (
	"os"
	"strconv"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Port        string
	Environment string

	StorageDriver  string
	DatabaseURL    string
	MigrateOnStart bool

	RedisURL       string
	UnreadCacheTTL time.Duration
	EventsChannel  string

	JWTSecret      string
	InternalAPIKey string

	CORSOrigins string

	ResendAPIKey  string
	FromEmail     string
	LocalePath    string
	DefaultLocale string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		StorageDriver:  getEnv("STORAGE_DRIVER", StorageMemory),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getBoolEnv("MIGRATE_ON_START", true),

		RedisURL:       getEnv("REDIS_URL", ""),
		UnreadCacheTTL: getDurationEnv("UNREAD_CACHE_TTL", 5*time.Minute),
		EventsChannel:  getEnv("EVENTS_CHANNEL", "ham:notifications:events"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		FromEmail:     getEnv("FROM_EMAIL", "noreply@example.com"),
		LocalePath:    getEnv("LOCALE_PATH", "locales"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
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
