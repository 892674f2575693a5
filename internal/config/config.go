package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port      string
	GinMode   string
	APIPrefix string
	LogLevel  slog.Level

	DB DatabaseConfig

	ImagesDir       string
	FilesDir        string
	ImagesURLPrefix string
	MaxUploadBytes  int64

	CORSOrigins []string
}

type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
	Echo   bool
}

// Load reads configuration from the environment. Call godotenv first if
// .env files should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("APP_PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "release"),
		APIPrefix: strings.TrimRight(getEnv("API_PREFIX", "/api/v1"), "/"),
		LogLevel:  parseLevel(getEnv("LOG_LEVEL", "info")),

		DB: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:    os.Getenv("DB_DSN"),
			Echo:   getEnvBool("DB_ECHO", false),
		},

		ImagesDir:       getEnv("IMAGES_DIR", "./images"),
		FilesDir:        getEnv("FILES_DIR", "./files"),
		ImagesURLPrefix: getEnv("IMAGES_URL_PREFIX", "/images"),
		MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	switch cfg.DB.Driver {
	case "postgres":
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = postgresDSN()
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is empty (check your .env)")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	return cfg, nil
}

// postgresDSN composes a URL from the discrete DB_* variables, or returns ""
// when DB_NAME is not set.
func postgresDSN() string {
	name := os.Getenv("DB_NAME")
	if name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")),
		Host:     getEnv("DB_HOST", "localhost") + ":" + getEnv("DB_PORT", "5432"),
		Path:     "/" + name,
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
