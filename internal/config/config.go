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
	// Database
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DatabaseURL string
	StoreDriver string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Server
	Port         string
	CORSOrigins  string
	UploadDir    string
	MaxBodyBytes int
	AppEnv       string
	SentryDSN    string

	// Rate limits, requests per window
	RateLimitMax           int
	RateLimitWindow        time.Duration
	AuthRateLimitMax       int
	ConfessionRateLimitMax int

	// Logging
	LogLevel         string
	LogRetentionDays int

	BadgesFile string
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set are left alone.
func LoadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("env file not loaded", "path", path, "error", err)
		}
		return
	}
	slog.Info("env file loaded", "path", path)
}

func Load() *Config {
	return &Config{
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "confessions"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "168h"), 7*24*time.Hour),

		Port:         getEnv("PORT", "5000"),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		MaxBodyBytes: getInt("MAX_BODY_BYTES", 10*1024*1024),
		AppEnv:       getEnv("APP_ENV", "development"),
		SentryDSN:    getEnv("SENTRY_DSN", ""),

		RateLimitMax:           getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:        parseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"), 15*time.Minute),
		AuthRateLimitMax:       getInt("AUTH_RATE_LIMIT_MAX", 10),
		ConfessionRateLimitMax: getInt("CONFESSION_RATE_LIMIT_MAX", 5),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: getInt("LOG_RETENTION_DAYS", 30),

		BadgesFile: getEnv("BADGES_FILE", "badges.yaml"),
	}
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
