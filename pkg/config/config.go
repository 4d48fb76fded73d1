package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseDSN      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	GeminiApiKey string

	// CronSecret, when set, must accompany calls to the job trigger endpoint.
	CronSecret string

	// AutoReplyInterval enables the in-process scheduler when > 0.
	// By default the job is triggered externally via /api/cron/process.
	AutoReplyInterval time.Duration

	// MaxMessagesPerRule caps how many messages one rule handles per run.
	MaxMessagesPerRule int

	// GmailRateLimit is the provider call budget in calls per second.
	GmailRateLimit float64

	// RunLeaseTTL bounds how long a crashed run can hold the job lease.
	RunLeaseTTL time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	interval := time.Duration(0)
	if v := os.Getenv("AUTO_REPLY_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			interval = parsed
		}
	}

	maxMessages := 5
	if v := os.Getenv("MAX_MESSAGES_PER_RULE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxMessages = parsed
		}
	}

	rateLimit := 5.0
	if v := os.Getenv("GMAIL_RATE_LIMIT"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			rateLimit = parsed
		}
	}

	leaseTTL := 10 * time.Minute
	if v := os.Getenv("RUN_LEASE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			leaseTTL = parsed
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseDSN:        getEnv("DATABASE_DSN", ""),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:    accessExpiry,
		JWTRefreshExpiry:   refreshExpiry,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/auth/callback"),
		GeminiApiKey:       getEnv("GEMINI_API_KEY", ""),
		CronSecret:         getEnv("CRON_SECRET", ""),
		AutoReplyInterval:  interval,
		MaxMessagesPerRule: maxMessages,
		GmailRateLimit:     rateLimit,
		RunLeaseTTL:        leaseTTL,
	}
}

// Validate reports missing mandatory settings. The auto-reply job cannot run
// at all without the database and the Gmail app credentials, so this is
// checked at startup and again by the trigger endpoint.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("configuration incomplete: please set %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
