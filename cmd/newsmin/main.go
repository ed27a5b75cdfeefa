// Package main is the entry point for the news-minimalist pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deusflow/newsmin/internal/app"
	"github.com/deusflow/newsmin/internal/config"
	"github.com/deusflow/newsmin/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "newsmin",
	Short: "Fetch, rank and summarize news feeds into static JSON",
	Long: `newsmin runs one pass of the news pipeline: it fetches the configured RSS feeds,
deduplicates and scores the entries, reuses or generates Russian summaries, clusters
related stories and writes articles.json, articles_by_id.json and stats.json.

Environment variables (optionally from .env) configure the run. Flags override them.`,
	SilenceUsage: true,
	RunE:         runPipeline,
}

var (
	outDir       string
	feedsPath    string
	maxSummaries int
	noSummaries  bool
	debug        bool
)

func init() {
	rootCmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to OUTPUT_DIR or ./data)")
	rootCmd.Flags().StringVar(&feedsPath, "feeds", "", "Path to feeds YAML (defaults to FEEDS_CONFIG_PATH)")
	rootCmd.Flags().IntVar(&maxSummaries, "max-summaries", 0, "Maximum summaries to generate this run, 0 for unlimited")
	rootCmd.Flags().BoolVar(&noSummaries, "no-summaries", false, "Skip summary generation and only reuse cached summaries")
	rootCmd.Flags().BoolVarP(&debug, "debug", "v", false, "Enable debug logging")
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cmd.Flags().Changed("out") {
		cfg.OutputDir = outDir
	}
	if cmd.Flags().Changed("feeds") {
		cfg.FeedsConfigPath = feedsPath
	}
	if cmd.Flags().Changed("max-summaries") {
		cfg.MaxSummariesPerRun = maxSummaries
	}
	if noSummaries {
		cfg.SummaryProvider = config.ProviderNone
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Debug)

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting news pipeline", "provider", cfg.Provider(), "out", cfg.OutputDir)
	return app.Run(ctx, cfg)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
