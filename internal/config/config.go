package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// ErrMissingCredential marks a required credential or store URL that is not configured.
var ErrMissingCredential = eris.New("missing credential")

type Config struct {
	DatabaseURL string
	Port        string
	Environment string

	// Completion backends
	AIProvider   string // openai | gemini
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// Search-augmented completion
	PerplexityAPIKey       string
	PerplexityModel        string
	PerplexityRefreshModel string

	HTTPTimeout time.Duration

	JWTSecret  string
	SessionTTL time.Duration
	CronSecret string

	StoragePublicURL string
	AIDailyLimit     int

	Pricing Pricing
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		AIProvider:   getEnv("AI_PROVIDER", "openai"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		PerplexityAPIKey:       getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityModel:        getEnv("PERPLEXITY_MODEL", "sonar"),
		PerplexityRefreshModel: getEnv("PERPLEXITY_REFRESH_MODEL", "sonar"),

		HTTPTimeout: getDuration("HTTP_TIMEOUT", 30*time.Second),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getDuration("SESSION_TTL", 7*24*time.Hour),
		CronSecret: getEnv("CRON_SECRET", ""),

		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", ""),
		AIDailyLimit:     getInt("AI_DAILY_LIMIT", 50),

		Pricing: DefaultPricing(),
	}

	if path := getEnv("PRICING_CONFIG", ""); path != "" {
		if err := cfg.Pricing.LoadFile(path); err != nil {
			return nil, eris.Wrapf(err, "load pricing config %s", path)
		}
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, eris.Wrap(ErrMissingCredential, "JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RequireStore fails when no database DSN is configured.
func (c *Config) RequireStore() error {
	if c.DatabaseURL == "" {
		return eris.Wrap(ErrMissingCredential, "DATABASE_URL is not set")
	}
	return nil
}

// RequireCompletion fails when the selected completion backend has no key.
func (c *Config) RequireCompletion() error {
	switch c.AIProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return eris.Wrap(ErrMissingCredential, "GEMINI_API_KEY is not set")
		}
	default:
		if c.OpenAIAPIKey == "" {
			return eris.Wrap(ErrMissingCredential, "OPENAI_API_KEY is not set")
		}
	}
	return nil
}

// RequireSearch fails when the search-augmented completion key is missing.
func (c *Config) RequireSearch() error {
	if c.PerplexityAPIKey == "" {
		return eris.Wrap(ErrMissingCredential, "PERPLEXITY_API_KEY is not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
