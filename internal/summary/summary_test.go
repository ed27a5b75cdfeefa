package summary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsmin/internal/news"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]error
	replies map[string]string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Summarize(ctx context.Context, title, description string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, title)
	if err, ok := f.fail[title]; ok {
		return "", err
	}
	if r, ok := f.replies[title]; ok {
		return r, nil
	}
	return "Краткое резюме: " + title, nil
}

type recordingSink struct {
	saved map[string]string
}

func (s *recordingSink) SaveSummary(ctx context.Context, id, summary, provider string) error {
	if s.saved == nil {
		s.saved = make(map[string]string)
	}
	s.saved[id] = summary
	return nil
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func testArticles() []news.Article {
	mk := func(id, title string, score float64) news.Article {
		a := news.Article{
			ID:                  id,
			Title:               title,
			Summary:             "desc " + id,
			OriginalDescription: "desc " + id,
			CoverageCount:       1,
			RelatedIDs:          []string{},
			Language:            news.LanguageOriginal,
		}
		a.SignificanceScore = score
		return a
	}
	return []news.Article{
		mk("a", "Alpha", 3.0),
		mk("b", "Bravo", 7.5),
		mk("c", "Charlie", 5.0),
		mk("d", "Delta", 7.5),
	}
}

func TestIsRussian(t *testing.T) {
	assert.True(t, IsRussian("Правительство объявило"))
	assert.True(t, IsRussian("mostly english with one й"))
	assert.False(t, IsRussian("Plain English description"))
	assert.False(t, IsRussian(""))
	// Upper case alone is not enough.
	assert.False(t, IsRussian("ПРАВИТЕЛЬСТВО"))
}

func TestLoadCached(t *testing.T) {
	previous := map[string]string{
		"ru":    "Краткое резюме новости.",
		"en":    "An English description.",
		"empty": "",
	}

	cached := LoadCached(previous, nil)
	assert.Equal(t, map[string]string{"ru": "Краткое резюме новости."}, cached)

	all := LoadCached(previous, func(string) bool { return true })
	assert.Len(t, all, 2)
	assert.NotContains(t, all, "empty")

	assert.Empty(t, LoadCached(nil, nil))
}

func TestReconcile(t *testing.T) {
	articles := testArticles()
	cached := map[string]string{"b": "Готовое резюме", "zzz": "Неизвестный id"}

	out := Reconcile(articles, cached)
	require.Len(t, out, len(articles))

	for _, a := range out {
		if a.ID == "b" {
			assert.Equal(t, "Готовое резюме", a.Summary)
			assert.Equal(t, news.LanguageGenerated, a.Language)
			assert.Equal(t, "desc b", a.OriginalDescription)
			continue
		}
		assert.Equal(t, a.OriginalDescription, a.Summary)
		assert.Equal(t, news.LanguageOriginal, a.Language)
	}
	assert.Equal(t, "desc b", articles[1].Summary, "input must not be mutated")
}

func TestCandidates(t *testing.T) {
	articles := testArticles()

	t.Run("score order with stable ties", func(t *testing.T) {
		assert.Equal(t, []string{"b", "d", "c", "a"}, Candidates(articles, nil, 0))
	})

	t.Run("cached ids skipped", func(t *testing.T) {
		cached := map[string]string{"b": "Резюме"}
		assert.Equal(t, []string{"d", "c", "a"}, Candidates(articles, cached, 0))
	})

	t.Run("capped", func(t *testing.T) {
		assert.Equal(t, []string{"b", "d"}, Candidates(articles, nil, 2))
		assert.Len(t, Candidates(articles, nil, 10), 4)
		assert.Len(t, Candidates(articles, nil, -1), 4)
	})
}

func TestStripThinking(t *testing.T) {
	assert.Equal(t, "Ответ.", StripThinking("<think>reasoning\nmore</think>\n Ответ. "))
	assert.Equal(t, "A B", StripThinking("A<think>x</think> <think>y</think>B"))
	assert.Equal(t, "", StripThinking("<think>only thoughts</think>"))
}

func TestGenerate(t *testing.T) {
	articles := testArticles()
	gen := &fakeGenerator{
		fail:    map[string]error{"Delta": errors.New("upstream 503")},
		replies: map[string]string{"Charlie": "<think>hmm</think>"},
	}
	pacer := &countingPacer{}
	sink := &recordingSink{}

	ids := Candidates(articles, nil, 0)
	out, res := Generate(context.Background(), articles, ids, gen, Options{Timeout: time.Second, Pacer: pacer, Sink: sink})

	assert.Equal(t, Result{Attempted: 4, Generated: 2, Failed: 2}, res)
	assert.Equal(t, []string{"Bravo", "Delta", "Charlie", "Alpha"}, gen.calls)
	assert.Equal(t, 4, pacer.waits)

	byID := make(map[string]news.Article)
	for _, a := range out {
		byID[a.ID] = a
	}
	assert.Equal(t, "Краткое резюме: Bravo", byID["b"].Summary)
	assert.Equal(t, news.LanguageGenerated, byID["b"].Language)
	assert.Equal(t, "desc d", byID["d"].Summary)
	assert.Equal(t, news.LanguageOriginal, byID["d"].Language)
	assert.Equal(t, "desc c", byID["c"].Summary, "thinking-only reply counts as a failure")
	assert.Equal(t, news.LanguageGenerated, byID["a"].Language)

	assert.Equal(t, map[string]string{
		"b": "Краткое резюме: Bravo",
		"a": "Краткое резюме: Alpha",
	}, sink.saved)

	assert.Equal(t, news.LanguageOriginal, articles[1].Language, "input must not be mutated")
}

func TestGenerate_NilGenerator(t *testing.T) {
	articles := testArticles()
	out, res := Generate(context.Background(), articles, []string{"a", "b"}, nil, Options{})
	assert.Equal(t, articles, out)
	assert.Zero(t, res)
}

func TestGenerate_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{}
	_, res := Generate(ctx, testArticles(), []string{"a", "b"}, gen, Options{Pacer: &countingPacer{}})
	assert.Zero(t, res.Attempted)
	assert.Empty(t, gen.calls)
}

func TestGenerate_AppliesTimeout(t *testing.T) {
	var deadline time.Time
	gen := generatorFunc(func(ctx context.Context, title, description string) (string, error) {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		deadline = d
		return "Готово", nil
	})

	start := time.Now()
	_, res := Generate(context.Background(), testArticles(), []string{"a"}, gen, Options{Timeout: 2 * time.Second})
	assert.Equal(t, 1, res.Generated)
	assert.WithinDuration(t, start.Add(2*time.Second), deadline, time.Second)
}

// A second run with generation switched off must keep every summary the
// first run produced.
func TestReconcile_IdempotentAcrossRuns(t *testing.T) {
	articles := testArticles()

	first := Reconcile(articles, LoadCached(nil, nil))
	first, _ = Generate(context.Background(), first, Candidates(first, nil, 0), &fakeGenerator{}, Options{})

	previous := make(map[string]string)
	for _, a := range first {
		previous[a.ID] = a.Summary
	}

	cached := LoadCached(previous, nil)
	second := Reconcile(articles, cached)
	second, _ = Generate(context.Background(), second, Candidates(second, cached, 0), nil, Options{})

	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, news.LanguageGenerated, first[i].Language)
		assert.Equal(t, first[i].Summary, second[i].Summary)
		assert.Equal(t, news.LanguageGenerated, second[i].Language)
		assert.True(t, strings.HasPrefix(second[i].Summary, "Краткое"))
	}
}

type generatorFunc func(ctx context.Context, title, description string) (string, error)

func (f generatorFunc) Summarize(ctx context.Context, title, description string) (string, error) {
	return f(ctx, title, description)
}

func (f generatorFunc) Name() string { return "func" }
