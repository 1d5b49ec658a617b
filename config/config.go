package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppMode string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBSSLMode   string

	ContentStudioAPIKey  string
	ContentStudioBaseURL string
	ContentStudioTimeout time.Duration
	ContentStudioRPS     float64
	SubmitMaxAttempts    int
	SubmitBaseDelay      time.Duration
	DefaultTimezone      string

	// AccountMapJSON is the raw ACCOUNT_MAP_JSON value; it is parsed once into a mapping.Snapshot.
	AccountMapJSON string

	CORSOrigins []string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Endpoint   string
	S3PublicBase string
	S3PresignTTL time.Duration

	WebhookReplayInterval time.Duration
	WebhookReplayWindow   time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort: getEnv("PORT", "3000"),
		AppMode: getEnv("APP_MODE", "debug"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "content_orchestrator"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		ContentStudioAPIKey:  getEnv("CONTENTSTUDIO_API_KEY", ""),
		ContentStudioBaseURL: getEnv("CONTENTSTUDIO_BASE_URL", "https://api.contentstudio.io/api/v1"),
		ContentStudioTimeout: getEnvAsDuration("CONTENTSTUDIO_TIMEOUT", 20*time.Second),
		ContentStudioRPS:     getEnvAsFloat("CONTENTSTUDIO_RPS", 5),
		SubmitMaxAttempts:    getEnvAsInt("SUBMIT_MAX_ATTEMPTS", 3),
		SubmitBaseDelay:      getEnvAsDuration("SUBMIT_BASE_DELAY", 500*time.Millisecond),
		DefaultTimezone:      getEnv("DEFAULT_TIMEZONE", "Europe/London"),

		AccountMapJSON: getEnv("ACCOUNT_MAP_JSON", ""),

		CORSOrigins: getEnvAsList("CORS_ORIGIN"),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),

		S3Region:     getEnv("S3_REGION", ""),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3PublicBase: getEnv("S3_PUBLIC_BASE", ""),
		S3PresignTTL: getEnvAsDuration("S3_PRESIGN_TTL", 15*time.Minute),

		WebhookReplayInterval: getEnvAsDuration("WEBHOOK_REPLAY_INTERVAL", 30*time.Second),
		WebhookReplayWindow:   getEnvAsDuration("WEBHOOK_REPLAY_WINDOW", 24*time.Hour),
	}
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// S3Enabled reports whether object storage for the media library was configured.
func (c *Config) S3Enabled() bool {
	return c.S3Region != "" && c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
