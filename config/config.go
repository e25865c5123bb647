package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config carries every runtime setting the services need. It is built once in
// main and passed down explicitly; no package reads the environment after
// Load returns.
type Config struct {
	ServerPort  string
	Environment string
	JWTSecret   string
	LogFile     string

	// Database
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DebugSQL   bool

	// Storage
	MediaDir         string
	DefaultMaxSizeMB int
	SwitchLimit      int

	// Render queue
	RedisAddr     string
	RenderTimeout time.Duration

	// SMTP
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFrom          string
	SMTPSkipTLSVerify bool
}

const (
	defaultMediaDir      = "media"
	defaultMaxSizeMB     = 5
	defaultSwitchLimit   = 1
	defaultRenderTimeout = 30 * time.Second
	defaultRedisAddr     = "127.0.0.1:6379"
)

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() *Config {
	return &Config{
		ServerPort:  readEnv("SERVER_PORT", "8080"),
		Environment: readEnv("ENVIRONMENT", "development"),
		JWTSecret:   readEnv("JWT_SECRET", ""),
		LogFile:     readEnv("LOG_FILE", filepath.Join("logs", "scholar-api.log")),

		DBHost:     readEnv("DB_HOST", "127.0.0.1"),
		DBPort:     readEnv("DB_PORT", "3306"),
		DBDatabase: readEnv("DB_DATABASE", "scholar"),
		DBUsername: readEnv("DB_USERNAME", "root"),
		DBPassword: readEnv("DB_PASSWORD", ""),
		DebugSQL:   readEnv("DEBUG_SQL", "") == "true",

		MediaDir:         readEnv("MEDIA_DIR", defaultMediaDir),
		DefaultMaxSizeMB: readInt("DEFAULT_MAX_SIZE_MB", defaultMaxSizeMB),
		SwitchLimit:      readInt("SCHOLARSHIP_SWITCH_LIMIT", defaultSwitchLimit),

		RedisAddr:     readEnv("REDIS_ADDR", defaultRedisAddr),
		RenderTimeout: readDuration("RENDER_TIMEOUT", defaultRenderTimeout),

		SMTPHost:          readEnv("SMTP_HOST", ""),
		SMTPPort:          readInt("SMTP_PORT", 587),
		SMTPUser:          readEnv("SMTP_USER", ""),
		SMTPPass:          readEnv("SMTP_PASS", ""),
		SMTPFrom:          readEnv("SMTP_FROM", ""),
		SMTPSkipTLSVerify: readEnv("SMTP_SKIP_TLS_VERIFY", "") == "1",
	}
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func readInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func readDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
