package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SUMMARY_PROVIDER", "OPENROUTER_API_KEY", "OPENROUTER_MODEL", "OPENROUTER_BASE_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "MAX_SUMMARIES_PER_RUN", "SUMMARY_TIMEOUT_SECONDS",
	"SUMMARY_DELAY_MS", "FEEDS_CONFIG_PATH", "FEED_TIMEOUT_SECONDS", "MAX_ENTRIES_PER_FEED",
	"MAX_DESCRIPTION_RUNES", "CLUSTER_THRESHOLD", "KEYWORD_MATCHER", "OUTPUT_DIR", "DATABASE_URL", "DEBUG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "qwen/qwen3-235b-a22b-2507", cfg.OpenRouterModel)
	assert.Equal(t, 0, cfg.MaxSummariesPerRun)
	assert.Equal(t, "configs/feeds.yaml", cfg.FeedsConfigPath)
	assert.Equal(t, "data", cfg.OutputDir)
	assert.Equal(t, 20, cfg.MaxEntriesPerFeed)
	assert.Equal(t, 500, cfg.MaxDescriptionRunes)
	assert.Equal(t, 0.4, cfg.ClusterThreshold)
	assert.Equal(t, MatcherSubstring, cfg.KeywordMatcher)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout())
	assert.Equal(t, 30*time.Second, cfg.SummaryTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.SummaryDelay())
	assert.Equal(t, ProviderNone, cfg.Provider())
	assert.False(t, cfg.Debug)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("MAX_SUMMARIES_PER_RUN", "15")
	t.Setenv("CLUSTER_THRESHOLD", "0.55")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("KEYWORD_MATCHER", "word")
	t.Setenv("DEBUG", "true")
	t.Setenv("FEED_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.MaxSummariesPerRun)
	assert.Equal(t, 0.55, cfg.ClusterThreshold)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, MatcherWord, cfg.KeywordMatcher)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 10, cfg.FeedTimeoutSeconds, "unparsable value keeps the default")
	assert.Equal(t, ProviderOpenRouter, cfg.Provider())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"negative cap":       {"MAX_SUMMARIES_PER_RUN": "-1"},
		"threshold too high": {"CLUSTER_THRESHOLD": "1.5"},
		"unknown provider":   {"SUMMARY_PROVIDER": "carrier-pigeon"},
		"bad base url":       {"OPENROUTER_BASE_URL": "not a url"},
		"unknown matcher":    {"KEYWORD_MATCHER": "fuzzy"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no keys", Config{}, ProviderNone},
		{"openrouter preferred", Config{OpenRouterAPIKey: "a", GeminiAPIKey: "b"}, ProviderOpenRouter},
		{"gemini fallback", Config{GeminiAPIKey: "b"}, ProviderGemini},
		{"explicit gemini", Config{SummaryProvider: ProviderGemini, OpenRouterAPIKey: "a", GeminiAPIKey: "b"}, ProviderGemini},
		{"explicit without key", Config{SummaryProvider: ProviderGemini, OpenRouterAPIKey: "a"}, ProviderNone},
		{"explicit none", Config{SummaryProvider: ProviderNone, OpenRouterAPIKey: "a"}, ProviderNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Provider())
		})
	}
}
