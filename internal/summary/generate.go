package summary

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/deusflow/newsmin/internal/logger"
	"github.com/deusflow/newsmin/internal/news"
)

// DefaultTimeout bounds a single generator call.
const DefaultTimeout = 30 * time.Second

// ErrEmptySummary is returned when a generator answers with nothing usable.
var ErrEmptySummary = errors.New("empty summary")

// Generator produces a summary for one article.
type Generator interface {
	Summarize(ctx context.Context, title, description string) (string, error)
	Name() string
}

// Waiter paces successive generator calls.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Sink receives every successfully generated summary.
type Sink interface {
	SaveSummary(ctx context.Context, id, summary, provider string) error
}

type Options struct {
	Timeout time.Duration
	Pacer   Waiter
	Sink    Sink
}

// Result counts what a Generate pass did.
type Result struct {
	Attempted int
	Generated int
	Failed    int
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes <think>...</think> blocks some models emit before
// the answer.
func StripThinking(text string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(text, ""))
}

// Generate asks gen for a summary of each candidate in order. A failed call
// leaves the article untouched and moves on; nothing is retried. A nil gen
// returns the articles unchanged.
func Generate(ctx context.Context, articles []news.Article, ids []string, gen Generator, opts Options) ([]news.Article, Result) {
	out := news.Clone(articles)
	var res Result
	if gen == nil || len(ids) == 0 {
		return out, res
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	idx := news.Index(out)

	for n, id := range ids {
		i, ok := idx[id]
		if !ok {
			continue
		}
		if opts.Pacer != nil {
			if err := opts.Pacer.Wait(ctx); err != nil {
				logger.Warn("Summary generation interrupted", "error", err, "done", n, "total", len(ids))
				break
			}
		}

		a := &out[i]
		res.Attempted++
		logger.Debug("Summarizing", "n", n+1, "total", len(ids), "title", truncate(a.Title, 50))

		text, err := summarizeOne(ctx, gen, timeout, a.Title, a.OriginalDescription)
		if err != nil {
			res.Failed++
			logger.Warn("Summary generation failed", "id", id, "provider", gen.Name(), "error", err)
			continue
		}

		a.Summary = text
		a.Language = news.LanguageGenerated
		res.Generated++

		if opts.Sink != nil {
			if err := opts.Sink.SaveSummary(ctx, id, text, gen.Name()); err != nil {
				logger.Warn("Failed to persist summary", "id", id, "error", err)
			}
		}
	}

	return out, res
}

func summarizeOne(ctx context.Context, gen Generator, timeout time.Duration, title, description string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := gen.Summarize(callCtx, title, description)
	if err != nil {
		return "", err
	}
	text = StripThinking(text)
	if text == "" {
		return "", ErrEmptySummary
	}
	return text, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
