package app

import (
	"context"
	"fmt"
	"time"

	"github.com/deusflow/newsmin/internal/cluster"
	"github.com/deusflow/newsmin/internal/config"
	"github.com/deusflow/newsmin/internal/gemini"
	"github.com/deusflow/newsmin/internal/logger"
	"github.com/deusflow/newsmin/internal/metrics"
	"github.com/deusflow/newsmin/internal/news"
	"github.com/deusflow/newsmin/internal/openrouter"
	"github.com/deusflow/newsmin/internal/ratelimit"
	"github.com/deusflow/newsmin/internal/rss"
	"github.com/deusflow/newsmin/internal/scoring"
	"github.com/deusflow/newsmin/internal/stats"
	"github.com/deusflow/newsmin/internal/storage"
	"github.com/deusflow/newsmin/internal/summary"
)

// FeedSource yields raw entries for the configured feeds. Failing feeds
// contribute nothing.
type FeedSource interface {
	FetchAll(ctx context.Context, feeds []rss.Feed) []news.RawEntry
}

// SummaryCache is an optional durable store for generated summaries.
type SummaryCache interface {
	LoadSummaries(ctx context.Context, ids []string) (map[string]string, error)
	summary.Sink
}

// Deps are the collaborators of one pipeline pass. Generator and Cache may
// be nil.
type Deps struct {
	Feeds      []rss.Feed
	Source     FeedSource
	Store      *storage.FileStore
	Generator  summary.Generator
	Pacer      summary.Waiter
	Cache      SummaryCache
	Metrics    *metrics.Metrics
	Scorer     *scoring.Scorer
	Classifier *scoring.Classifier
	Timestamps news.TimestampPolicy
	Now        func() time.Time
}

type Options struct {
	MaxSummaries     int
	ClusterThreshold float64
	SummaryTimeout   time.Duration
}

// Result describes what a pass published.
type Result struct {
	RawCount  int
	Articles  []news.Article
	Stats     stats.Stats
	Summaries summary.Result
}

// Process runs one full pass: fetch, dedupe, score, reconcile summaries,
// generate missing ones, cluster, aggregate and publish. A cancelled ctx
// aborts the pass before anything is published, leaving the previous
// artifacts in place. Otherwise only a failure to publish is returned.
func Process(ctx context.Context, deps Deps, opts Options) (Result, error) {
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if deps.Scorer == nil {
		deps.Scorer = scoring.NewScorer(nil)
	}
	if deps.Classifier == nil {
		deps.Classifier = scoring.NewClassifier(nil)
	}
	if deps.Timestamps.Now == nil {
		deps.Timestamps.Now = time.Now
	}
	if deps.Timestamps.Rand == nil {
		deps.Timestamps.Rand = news.NewTimestampPolicy().Rand
	}
	if opts.ClusterThreshold <= 0 {
		opts.ClusterThreshold = cluster.DefaultThreshold
	}

	previous, err := deps.Store.LoadPreviousSummaries()
	if err != nil {
		logger.Warn("Ignoring previous output", "error", err)
		previous = map[string]string{}
	}

	raw := deps.Source.FetchAll(ctx, deps.Feeds)
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("run interrupted while fetching: %w", err)
	}
	logger.Info("Total raw articles", "count", len(raw))

	articles, dropped := news.Dedupe(raw, deps.Timestamps)
	m.AddDuplicatesFiltered(dropped)
	logger.Info("Unique articles", "count", len(articles), "duplicates", dropped)

	articles = scoring.Apply(articles, deps.Scorer, deps.Classifier)

	if deps.Cache != nil {
		mergeDurable(ctx, deps.Cache, articles, previous)
	}

	cached := summary.LoadCached(previous, nil)
	articles = summary.Reconcile(articles, cached)
	reused := countGenerated(articles)
	m.AddSummariesCached(reused)
	logger.Info("Loaded cached summaries", "available", len(cached), "reused", reused)

	var genResult summary.Result
	if deps.Generator != nil {
		ids := summary.Candidates(articles, cached, opts.MaxSummaries)
		logger.Info("Generating summaries", "provider", deps.Generator.Name(), "count", len(ids))

		genOpts := summary.Options{Timeout: opts.SummaryTimeout, Pacer: deps.Pacer}
		if deps.Cache != nil {
			genOpts.Sink = deps.Cache
		}
		articles, genResult = summary.Generate(ctx, articles, ids, deps.Generator, genOpts)
		m.AddSummaries(genResult.Generated, genResult.Failed)
		logger.Info("Generated summaries", "generated", genResult.Generated, "failed", genResult.Failed, "total_generated", countGenerated(articles))
	} else {
		logger.Info("No summary provider configured, skipping summary generation")
	}

	clusters := cluster.Cluster(articles, opts.ClusterThreshold)
	articles = cluster.Apply(articles, clusters)
	logger.Info("Clustered articles", "clusters", len(clusters.Order))

	// Summaries generated before a cancellation already reached the cache
	// sink; the published files stay as they were.
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("run interrupted before publishing: %w", err)
	}

	at := now()
	st := stats.Build(articles, len(raw), at)
	articles = stats.StampTimeAgo(articles, at)

	if err := deps.Store.Write(articles, st); err != nil {
		return Result{}, fmt.Errorf("publish artifacts: %w", err)
	}

	logger.Info("Generated data files",
		"dir", deps.Store.Dir(),
		"articles", len(articles),
		"high_significance", st.HighSignificanceCount,
	)

	return Result{RawCount: len(raw), Articles: articles, Stats: st, Summaries: genResult}, nil
}

// mergeDurable fills in summaries the previous output lacks from the
// database cache. The previous output wins on conflict.
func mergeDurable(ctx context.Context, cache SummaryCache, articles []news.Article, previous map[string]string) {
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	durable, err := cache.LoadSummaries(ctx, ids)
	if err != nil {
		logger.Warn("Summary cache unavailable", "error", err)
		return
	}

	added := 0
	for id, text := range durable {
		if _, ok := previous[id]; ok {
			continue
		}
		previous[id] = text
		added++
	}
	logger.Debug("Merged durable summaries", "found", len(durable), "added", added)
}

func countGenerated(articles []news.Article) int {
	n := 0
	for _, a := range articles {
		if a.Language == news.LanguageGenerated {
			n++
		}
	}
	return n
}

// Run wires production collaborators from cfg and performs one pass.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	m := metrics.Global

	feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		m.SetError(err.Error())
		return fmt.Errorf("load feeds: %w", err)
	}
	logger.Info("Loaded feed list", "feeds", len(feeds), "path", cfg.FeedsConfigPath)

	deps := Deps{
		Feeds: feeds,
		Source: rss.NewSource(rss.Options{
			Timeout:             cfg.FeedTimeout(),
			MaxEntries:          cfg.MaxEntriesPerFeed,
			MaxDescriptionRunes: cfg.MaxDescriptionRunes,
			Metrics:             m,
		}),
		Store:      storage.NewFileStore(cfg.OutputDir),
		Metrics:    m,
		Timestamps: news.NewTimestampPolicy(),
	}

	matcher := newMatcher(cfg.KeywordMatcher)
	deps.Scorer = scoring.NewScorer(matcher)
	deps.Classifier = scoring.NewClassifier(matcher)

	generator, closeGenerator := newGenerator(ctx, cfg)
	defer closeGenerator()
	if generator != nil {
		pacer := ratelimit.NewPacer(generator.Name(), cfg.SummaryDelay())
		defer pacer.LogStats()
		deps.Generator = generator
		deps.Pacer = pacer
	}

	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresCache(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("PostgreSQL summary cache disabled", "error", err)
		} else {
			defer pg.Close()
			deps.Cache = pg
		}
	}

	_, err = Process(ctx, deps, Options{
		MaxSummaries:     cfg.MaxSummariesPerRun,
		ClusterThreshold: cfg.ClusterThreshold,
		SummaryTimeout:   cfg.SummaryTimeout(),
	})

	m.RecordProcessingTime(time.Since(start))
	if err != nil {
		m.SetError(err.Error())
		return err
	}
	m.SetLastRun()
	logger.Info("Run complete", m.LogArgs()...)
	return nil
}

func newMatcher(name string) scoring.Matcher {
	if name == config.MatcherWord {
		return scoring.NewWordMatcher()
	}
	return scoring.SubstringMatcher{}
}

func newGenerator(ctx context.Context, cfg *config.Config) (summary.Generator, func()) {
	noop := func() {}

	switch cfg.Provider() {
	case config.ProviderOpenRouter:
		c, err := openrouter.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
		if err != nil {
			logger.Warn("OpenRouter disabled", "error", err)
			return nil, noop
		}
		return c, noop
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Gemini disabled", "error", err)
			return nil, noop
		}
		return c, c.Close
	default:
		return nil, noop
	}
}
