package rss

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsmin/internal/htmltext"
	"github.com/deusflow/newsmin/internal/logger"
	"github.com/deusflow/newsmin/internal/metrics"
	"github.com/deusflow/newsmin/internal/news"
)

// FeedsConfig is YAML config structure
// categories:
//   - name: politics
//     feeds:
//       - https://...
type FeedsConfig struct {
	Categories []CategoryFeeds `yaml:"categories"`
}

type CategoryFeeds struct {
	Name  string   `yaml:"name"`
	Feeds []string `yaml:"feeds"`
}

// Feed is one configured feed URL and the category it is filed under.
type Feed struct {
	URL      string
	Category news.Category
}

// LoadFeeds reads the feed list from a YAML file, keeping file order.
func LoadFeeds(path string) ([]Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	var feeds []Feed
	for _, c := range cfg.Categories {
		cat := news.Category(c.Name)
		if !cat.Valid() {
			return nil, fmt.Errorf("unknown category %q in %s", c.Name, path)
		}
		for _, u := range c.Feeds {
			feeds = append(feeds, Feed{URL: u, Category: cat})
		}
	}
	return feeds, nil
}

type Options struct {
	Timeout             time.Duration
	MaxEntries          int
	MaxDescriptionRunes int
	UserAgent           string
	Metrics             *metrics.Metrics
}

// Source fetches feeds one after another and converts their items into raw
// entries.
type Source struct {
	parser *gofeed.Parser
	opts   Options
}

func NewSource(opts Options) *Source {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 20
	}
	if opts.MaxDescriptionRunes <= 0 {
		opts.MaxDescriptionRunes = 500
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "newsmin/1.0"
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: opts.Timeout}
	parser.UserAgent = opts.UserAgent

	return &Source{parser: parser, opts: opts}
}

// Fetch downloads and parses one feed.
func (s *Source) Fetch(ctx context.Context, feed Feed) ([]news.RawEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feed.URL, err)
	}

	items := parsed.Items
	if len(items) > s.opts.MaxEntries {
		items = items[:s.opts.MaxEntries]
	}

	entries := make([]news.RawEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, s.toEntry(item, feed.Category))
	}
	return entries, nil
}

func (s *Source) toEntry(item *gofeed.Item, category news.Category) news.RawEntry {
	description := item.Description
	if description == "" {
		description = item.Content
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	return news.RawEntry{
		Title:        item.Title,
		Summary:      htmltext.Truncate(htmltext.Text(description), s.opts.MaxDescriptionRunes),
		Link:         item.Link,
		FeedCategory: category,
		Published:    published,
	}
}

// FetchAll fetches every feed in order. A failing feed is logged and
// contributes no entries; it never stops the run.
func (s *Source) FetchAll(ctx context.Context, feeds []Feed) []news.RawEntry {
	var all []news.RawEntry
	successCount := 0

	for _, feed := range feeds {
		if ctx.Err() != nil {
			logger.Warn("Feed fetching interrupted", "error", ctx.Err())
			break
		}

		logger.Debug("Fetching feed", "url", feed.URL, "category", feed.Category)
		entries, err := s.Fetch(ctx, feed)
		if s.opts.Metrics != nil {
			s.opts.Metrics.RecordFeed(len(entries), err)
		}
		if err != nil {
			logger.Warn("Error parsing RSS", "url", feed.URL, "error", err)
			continue
		}

		all = append(all, entries...)
		successCount++
		logger.Debug("Loaded news", "count", len(entries), "url", feed.URL)
	}

	logger.Info("Processed RSS feeds", "ok", successCount, "total", len(feeds), "entries", len(all))
	return all
}
