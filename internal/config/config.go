// Package config loads run settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderNone       = "none"
)

// Keyword matchers selectable through KEYWORD_MATCHER.
const (
	MatcherSubstring = "substring"
	MatcherWord      = "word"
)

type Config struct {
	// Summary generation
	SummaryProvider       string `validate:"omitempty,oneof=openrouter gemini none"`
	OpenRouterAPIKey      string
	OpenRouterModel       string `validate:"required"`
	OpenRouterBaseURL     string `validate:"required,url"`
	GeminiAPIKey          string
	GeminiModel           string `validate:"required"`
	MaxSummariesPerRun    int    `validate:"gte=0"` // 0 = unlimited
	SummaryTimeoutSeconds int    `validate:"gt=0"`
	SummaryDelayMs        int    `validate:"gte=0"`

	// RSS settings
	FeedsConfigPath     string `validate:"required"`
	FeedTimeoutSeconds  int    `validate:"gt=0"`
	MaxEntriesPerFeed   int    `validate:"gt=0"`
	MaxDescriptionRunes int    `validate:"gt=0"`

	// Pipeline
	ClusterThreshold float64 `validate:"gte=0,lte=1"`
	KeywordMatcher   string  `validate:"required,oneof=substring word"`
	OutputDir        string  `validate:"required"`

	// Optional Postgres summary cache
	DatabaseURL string

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		OpenRouterModel:       "qwen/qwen3-235b-a22b-2507",
		OpenRouterBaseURL:     "https://openrouter.ai/api/v1",
		GeminiModel:           "gemini-1.5-flash",
		SummaryTimeoutSeconds: 30,
		SummaryDelayMs:        500,
		FeedsConfigPath:       "configs/feeds.yaml",
		FeedTimeoutSeconds:    10,
		MaxEntriesPerFeed:     20,
		MaxDescriptionRunes:   500,
		ClusterThreshold:      0.4,
		KeywordMatcher:        MatcherSubstring,
		OutputDir:             "data",
	}

	cfg.SummaryProvider = os.Getenv("SUMMARY_PROVIDER")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.OpenRouterModel = getEnvOrDefault("OPENROUTER_MODEL", cfg.OpenRouterModel)
	cfg.OpenRouterBaseURL = getEnvOrDefault("OPENROUTER_BASE_URL", cfg.OpenRouterBaseURL)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.MaxSummariesPerRun = getEnvIntOrDefault("MAX_SUMMARIES_PER_RUN", 0)
	cfg.SummaryTimeoutSeconds = getEnvIntOrDefault("SUMMARY_TIMEOUT_SECONDS", cfg.SummaryTimeoutSeconds)
	cfg.SummaryDelayMs = getEnvIntOrDefault("SUMMARY_DELAY_MS", cfg.SummaryDelayMs)

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.FeedTimeoutSeconds = getEnvIntOrDefault("FEED_TIMEOUT_SECONDS", cfg.FeedTimeoutSeconds)
	cfg.MaxEntriesPerFeed = getEnvIntOrDefault("MAX_ENTRIES_PER_FEED", cfg.MaxEntriesPerFeed)
	cfg.MaxDescriptionRunes = getEnvIntOrDefault("MAX_DESCRIPTION_RUNES", cfg.MaxDescriptionRunes)

	if v := os.Getenv("CLUSTER_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ClusterThreshold = val
		}
	}
	cfg.KeywordMatcher = getEnvOrDefault("KEYWORD_MATCHER", cfg.KeywordMatcher)
	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", cfg.OutputDir)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Provider resolves which summary generator to use. An explicit choice
// without its API key, or no key at all, yields ProviderNone.
func (c *Config) Provider() string {
	switch c.SummaryProvider {
	case ProviderNone:
		return ProviderNone
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return ProviderNone
		}
		return ProviderOpenRouter
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return ProviderNone
		}
		return ProviderGemini
	}

	switch {
	case c.OpenRouterAPIKey != "":
		return ProviderOpenRouter
	case c.GeminiAPIKey != "":
		return ProviderGemini
	default:
		return ProviderNone
	}
}

func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutSeconds) * time.Second
}

func (c *Config) SummaryTimeout() time.Duration {
	return time.Duration(c.SummaryTimeoutSeconds) * time.Second
}

func (c *Config) SummaryDelay() time.Duration {
	return time.Duration(c.SummaryDelayMs) * time.Millisecond
}
