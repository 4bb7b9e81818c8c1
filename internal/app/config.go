package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nostella/nostella/pkg/jwtx"
)

// Config is the full runtime configuration, loaded from NOSTELLA_*
// environment variables.
type Config struct {
	Issuer    string // Issuer claim for session tokens (default: nostella)
	JWTSecret string // Required: HS256 signing secret, at least 32 bytes

	DatabaseFile string // Path to SQLite database file (default: ./nostella.db)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-code cleanup interval (default: 1h)
	SessionTTL           time.Duration // Session token lifetime (default: 24h)

	// SMTP settings. MailDisabled skips the mailer entirely and logs
	// codes instead; dev only.
	MailDisabled bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFromName string
	SMTPFromAddr string
	SMTPSkipTLS  bool

	// Object storage (S3-compatible).
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string

	// GeminiAPIKey enables story generation. Empty disables the feature.
	GeminiAPIKey string
}

func LoadConfig() Config {
	return Config{
		Issuer:    getEnvOrDefault("NOSTELLA_ISSUER", "nostella"),
		JWTSecret: os.Getenv("NOSTELLA_JWT_SECRET"),

		DatabaseFile: getEnvOrDefault("NOSTELLA_DATABASE_FILE", "nostella.db"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		SessionTTL:           getEnvDurationOrDefault("NOSTELLA_SESSION_TTL", jwtx.DefaultSessionTTL),

		MailDisabled: getEnvBoolOrDefault("NOSTELLA_MAIL_DISABLED", false),
		SMTPHost:     os.Getenv("NOSTELLA_SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("NOSTELLA_SMTP_PORT", 465),
		SMTPUsername: os.Getenv("NOSTELLA_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("NOSTELLA_SMTP_PASSWORD"),
		SMTPFromName: getEnvOrDefault("NOSTELLA_SMTP_FROM_NAME", "Nostella"),
		SMTPFromAddr: os.Getenv("NOSTELLA_SMTP_FROM_ADDRESS"),
		SMTPSkipTLS:  getEnvBoolOrDefault("NOSTELLA_SMTP_SKIP_VERIFY", false),

		S3Region:        getEnvOrDefault("NOSTELLA_S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("NOSTELLA_S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("NOSTELLA_S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("NOSTELLA_S3_SECRET_KEY"),
		S3Bucket:        os.Getenv("NOSTELLA_S3_BUCKET"),
		S3PublicBaseURL: os.Getenv("NOSTELLA_S3_PUBLIC_BASE_URL"),

		GeminiAPIKey: os.Getenv("NOSTELLA_GEMINI_API_KEY"),
	}
}

// Validate fails fast on configuration the service cannot run without.
// There is no fallback signing secret; a missing or short secret is a
// startup error, never a silent default.
func (c Config) Validate() error {
	if len(c.JWTSecret) < jwtx.MinSecretLength {
		return fmt.Errorf(
			"NOSTELLA_JWT_SECRET must be set and at least %d bytes",
			jwtx.MinSecretLength,
		)
	}
	if !c.MailDisabled && c.SMTPHost == "" {
		return fmt.Errorf("NOSTELLA_SMTP_HOST is required unless NOSTELLA_MAIL_DISABLED=true")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
