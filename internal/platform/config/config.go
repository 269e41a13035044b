package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	Environment        string
	TokenTTL           time.Duration
	DebounceWindow     time.Duration
	SessionTTL         time.Duration
	NoticeTTL          time.Duration
	MaxBodyBytes       int64
	RateLimitPerMinute int
	RunMigrations      bool
	RunSeed            bool
	SeedManagerEmail   string
	SeedEmployeeEmail  string
	SeedHREmail        string
	SeedPassword       string
}

func Load() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		Environment:        getEnv("APP_ENV", "development"),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 12*time.Hour),
		DebounceWindow:     getEnvDuration("DEBOUNCE_WINDOW", 500*time.Millisecond),
		SessionTTL:         getEnvDuration("SESSION_TTL", 30*time.Minute),
		NoticeTTL:          getEnvDuration("NOTICE_TTL", 2500*time.Millisecond),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", true),
		SeedManagerEmail:   getEnv("SEED_MANAGER_EMAIL", "manager@example.com"),
		SeedEmployeeEmail:  getEnv("SEED_EMPLOYEE_EMAIL", "employee@example.com"),
		SeedHREmail:        getEnv("SEED_HR_EMAIL", "hr@example.com"),
		SeedPassword:       getEnv("SEED_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedPassword) == "" {
			return fmt.Errorf("SEED_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.DebounceWindow <= 0 {
		return fmt.Errorf("DEBOUNCE_WINDOW must be positive")
	}
	if c.SessionTTL < c.DebounceWindow {
		return fmt.Errorf("SESSION_TTL must not be shorter than DEBOUNCE_WINDOW")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
