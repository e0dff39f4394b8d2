package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the portrait server.
type Config struct {
	Server     ServerConfig
	Generation GenerationConfig
	Runware    RunwareConfig
	Storage    StorageConfig
	Email      EmailConfig
	BotCheck   BotCheckConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// Development reports whether the server runs with relaxed kiosk defaults.
func (c ServerConfig) Development() bool {
	return c.Env == "development"
}

type GenerationConfig struct {
	Provider                string
	RateLimitPerMinute      int
	EmailRateLimitPerMinute int
	DailyMaxGenerations     int
}

type RunwareConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type StorageConfig struct {
	BasePath      string
	PublicBaseURL string
}

type EmailConfig struct {
	Provider string
	APIKey   string
	From     string
	BaseURL  string
	Timeout  time.Duration
}

type BotCheckConfig struct {
	Token string
}

var validGenerationProviders = map[string]bool{
	"runware": true,
	"mock":    true,
}

var validEmailProviders = map[string]bool{
	"sendgrid": true,
	"mock":     true,
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value is
// missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("BOOTH_PORT", 8080),
			Env:  envString("BOOTH_ENV", "development"),
		},
		Generation: GenerationConfig{
			Provider:                envString("GENERATION_PROVIDER", "runware"),
			RateLimitPerMinute:      envInt("RATE_LIMIT_PER_MINUTE", 10),
			EmailRateLimitPerMinute: envInt("EMAIL_RATE_LIMIT_PER_MINUTE", 5),
			DailyMaxGenerations:     envInt("DAILY_MAX_GENERATIONS", 1000),
		},
		Runware: RunwareConfig{
			APIKey:  os.Getenv("RUNWARE_API_KEY"),
			BaseURL: envString("RUNWARE_BASE_URL", "https://api.runware.ai/v1"),
			Timeout: envDuration("RUNWARE_TIMEOUT", 90*time.Second),
		},
		Storage: StorageConfig{
			BasePath:      envString("STORAGE_BASE_PATH", "./data/generated"),
			PublicBaseURL: envString("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/generated"),
		},
		Email: EmailConfig{
			Provider: envString("EMAIL_PROVIDER", "mock"),
			APIKey:   os.Getenv("EMAIL_API_KEY"),
			From:     envString("EMAIL_FROM", "noreply@kioskbooth.local"),
			BaseURL:  envString("EMAIL_BASE_URL", "https://api.sendgrid.com"),
			Timeout:  envDuration("EMAIL_TIMEOUT", 15*time.Second),
		},
		BotCheck: BotCheckConfig{
			Token: os.Getenv("BOT_CHECK_TOKEN"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !validGenerationProviders[c.Generation.Provider] {
		return fmt.Errorf("GENERATION_PROVIDER must be one of runware, mock; got %q", c.Generation.Provider)
	}
	if c.Generation.Provider == "runware" && c.Runware.APIKey == "" {
		return fmt.Errorf("RUNWARE_API_KEY is required (or set GENERATION_PROVIDER=mock for local development)")
	}

	if !validEmailProviders[c.Email.Provider] {
		return fmt.Errorf("EMAIL_PROVIDER must be one of sendgrid, mock; got %q", c.Email.Provider)
	}
	if c.Email.Provider == "sendgrid" && c.Email.APIKey == "" {
		return fmt.Errorf("EMAIL_API_KEY is required when EMAIL_PROVIDER is sendgrid")
	}

	if c.Storage.BasePath == "" {
		return fmt.Errorf("STORAGE_BASE_PATH is required")
	}
	if !strings.HasPrefix(c.Storage.PublicBaseURL, "http://") && !strings.HasPrefix(c.Storage.PublicBaseURL, "https://") {
		return fmt.Errorf("STORAGE_PUBLIC_BASE_URL must start with http:// or https://, got %q", c.Storage.PublicBaseURL)
	}

	if c.Generation.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.Generation.RateLimitPerMinute)
	}
	if c.Generation.EmailRateLimitPerMinute <= 0 {
		return fmt.Errorf("EMAIL_RATE_LIMIT_PER_MINUTE must be positive, got %d", c.Generation.EmailRateLimitPerMinute)
	}
	if c.Generation.DailyMaxGenerations <= 0 {
		return fmt.Errorf("DAILY_MAX_GENERATIONS must be positive, got %d", c.Generation.DailyMaxGenerations)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
