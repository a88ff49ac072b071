package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// Postgres
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration

	RedisURL string

	// Meilisearch listing index
	MeiliHost   string
	MeiliAPIKey string

	// Auth
	JWTSecret     string
	TokenTTL      time.Duration
	SessionCookie string
	SessionMaxAge time.Duration
	VerifyCodeTTL time.Duration
	ResetTokenTTL time.Duration

	// Outbound email
	SMTPHost string
	SMTPPort int
	SMTPFrom string
	SMTPUser string
	SMTPPass string

	// Payment proof uploads
	UploadDir     string
	UploadBaseURL string
	MaxUploadMB   int

	// Background sweep (cron spec)
	SweepSpec string

	CORSAllowedOrigins []string

	RateLimitPerMinute int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	maxIdle, err := intEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	connLifetimeMin, err := intEnv("DB_CONN_LIFETIME_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	smtpPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	maxUploadMB, err := intEnv("MAX_UPLOAD_MB", 8)
	if err != nil {
		return nil, err
	}
	tokenTTLMin, err := intEnv("TOKEN_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	sessionMaxAgeMin, err := intEnv("SESSION_MAX_AGE_MINUTES", 1440)
	if err != nil {
		return nil, err
	}
	verifyTTLMin, err := intEnv("VERIFY_CODE_TTL_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	resetTTLMin, err := intEnv("RESET_TOKEN_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	ratePerMinute, err := intEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     port,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         dbPort,
		DBUser:         getEnv("DB_USER", "estately"),
		DBPassword:     getEnv("DB_PASSWORD", "dev"),
		DBName:         getEnv("DB_NAME", "estately"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: maxOpen,
		DBMaxIdleConns: maxIdle,
		DBConnLifetime: time.Duration(connLifetimeMin) * time.Minute,
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		MeiliHost:      getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliAPIKey:    getEnv("MEILISEARCH_KEY", ""),
		JWTSecret:      jwtSecret,
		TokenTTL:       time.Duration(tokenTTLMin) * time.Minute,
		SessionCookie:  getEnv("SESSION_COOKIE_NAME", "estately_session"),
		SessionMaxAge:  time.Duration(sessionMaxAgeMin) * time.Minute,
		VerifyCodeTTL:  time.Duration(verifyTTLMin) * time.Minute,
		ResetTokenTTL:  time.Duration(resetTTLMin) * time.Minute,
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       smtpPort,
		SMTPFrom:       getEnv("SMTP_FROM", "no-reply@estately.local"),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPass:       getEnv("SMTP_PASS", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL:  getEnv("UPLOAD_BASE_URL", "/uploads"),
		MaxUploadMB:    maxUploadMB,
		SweepSpec:      getEnv("SWEEP_CRON_SPEC", "*/5 * * * *"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		RateLimitPerMinute: ratePerMinute,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
