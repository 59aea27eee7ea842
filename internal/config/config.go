package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// ScoringWeights holds the per-factor weights used by the scoring engine.
// The values are expected to sum to 1.0 but this is not enforced; any
// non-negative values are accepted and the total scales accordingly.
type ScoringWeights struct {
	CompanySize     float64
	DigitalMaturity float64
	CloudUsage      float64
	SectorFit       float64
}

// JobChangeConfig tunes the tracked-contact poller.
type JobChangeConfig struct {
	// PollDelay is the mandatory pause between profile lookups. Dropping it
	// risks the profile provider blocking the account.
	PollDelay     time.Duration
	MaxPerCycle   int
	CycleEvery    time.Duration
	InactiveAfter time.Duration
	Retention     time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL    string
	JWTSecret      string
	Port           string
	CRMBaseURL     string
	ProfileBaseURL string
	PhoneRegion    string
	RateLimitSync  RateLimitConfig
	TokenTTL       time.Duration
	Weights        ScoringWeights
	JobChange      JobChangeConfig
	RefreshEvery   time.Duration
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		Port:           getEnv("PORT", "8080"),
		CRMBaseURL:     getEnv("CRM_BASE_URL", "http://crm-sync:9000"),
		ProfileBaseURL: getEnv("PROFILE_BASE_URL", "http://profile-lookup:9100"),
		PhoneRegion:    getEnv("PHONE_REGION", "BR"),
		TokenTTL:       parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		RefreshEvery:   parseDuration(getEnv("PLAYLIST_REFRESH_EVERY", "1h"), time.Hour),
		Weights: ScoringWeights{
			CompanySize:     parseFloat(getEnv("WEIGHT_COMPANY_SIZE", "0.3"), 0.3),
			DigitalMaturity: parseFloat(getEnv("WEIGHT_DIGITAL_MATURITY", "0.25"), 0.25),
			CloudUsage:      parseFloat(getEnv("WEIGHT_CLOUD_USAGE", "0.25"), 0.25),
			SectorFit:       parseFloat(getEnv("WEIGHT_SECTOR_FIT", "0.2"), 0.2),
		},
		JobChange: JobChangeConfig{
			PollDelay:     parseDuration(getEnv("JOBCHANGE_POLL_DELAY", "2s"), 2*time.Second),
			MaxPerCycle:   parseInt(getEnv("JOBCHANGE_MAX_PER_CYCLE", "100"), 100),
			CycleEvery:    parseDuration(getEnv("JOBCHANGE_CYCLE_EVERY", "6h"), 6*time.Hour),
			InactiveAfter: parseDuration(getEnv("JOBCHANGE_INACTIVE_AFTER", "8760h"), 365*24*time.Hour),
			Retention:     parseDuration(getEnv("JOBCHANGE_RETENTION", "8760h"), 365*24*time.Hour),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_CRM_SYNC", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CRM_SYNC value: %w", err)
	}
	cfg.RateLimitSync = rl

	if cfg.Weights.CompanySize < 0 || cfg.Weights.DigitalMaturity < 0 ||
		cfg.Weights.CloudUsage < 0 || cfg.Weights.SectorFit < 0 {
		return nil, fmt.Errorf("scoring weights must be non-negative")
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}

func parseFloat(input string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseInt(input string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return i
}
