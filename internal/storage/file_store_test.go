package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsmin/internal/news"
	"github.com/deusflow/newsmin/internal/schemas"
	"github.com/deusflow/newsmin/internal/stats"
)

var now = time.Date(2025, 3, 3, 13, 0, 0, 0, time.UTC)

func sampleArticles() []news.Article {
	a := news.Article{
		ID:                  news.GenerateID("Government Announces New Climate Policy", "example.com"),
		Title:               "Government Announces New Climate Policy",
		Summary:             "Правительство <объявило> политику & план.",
		OriginalDescription: "Officials unveiled the plan.",
		URL:                 "https://example.com/a",
		Source:              "example.com",
		Category:            news.CategoryPolitics,
		PublishedAt:         now.Add(-3 * time.Hour),
		CoverageCount:       1,
		RelatedIDs:          []string{},
		Language:            news.LanguageGenerated,
		TimeAgo:             "3h",
	}
	a.Scores = news.Scores{SignificanceScore: 4.3, Scale: 3.1, Impact: 3.6, Novelty: 3.9, Potential: 2.8, Legacy: 2, Positivity: 0.52, Credibility: 0.7}

	b := a
	b.ID = news.GenerateID("Local team wins", "example.org")
	b.Title = "Local team wins"
	b.Source = "example.org"
	b.Category = news.CategorySports
	b.Language = news.LanguageOriginal
	b.Summary = b.OriginalDescription
	b.RelatedIDs = []string{}

	return []news.Article{a, b}
}

func TestFileStore_WriteAndReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	fs := NewFileStore(dir)
	articles := sampleArticles()

	require.NoError(t, fs.Write(articles, stats.Build(articles, 5, now)))

	for _, name := range []string{ArticlesFile, StatsFile, ArticlesByIDFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), name)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	raw, err := os.ReadFile(filepath.Join(dir, ArticlesFile))
	require.NoError(t, err)
	var doc struct {
		Articles []news.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Articles, 2)
	assert.Equal(t, articles[0].ID, doc.Articles[0].ID, "insertion order kept")
	assert.Equal(t, articles[1].ID, doc.Articles[1].ID)
	assert.Contains(t, string(raw), "<объявило>", "HTML characters stay unescaped")

	var st map[string]any
	raw, err = os.ReadFile(filepath.Join(dir, StatsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &st))
	assert.Equal(t, 5.0, st["total_articles"])
	assert.Len(t, st["histogram"], stats.Buckets)

	summaries, err := fs.LoadPreviousSummaries()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		articles[0].ID: articles[0].Summary,
		articles[1].ID: articles[1].Summary,
	}, summaries)
}

func TestFileStore_WriteRejectsInvalidAndKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	articles := sampleArticles()
	require.NoError(t, fs.Write(articles, stats.Build(articles, 2, now)))

	before, err := os.ReadFile(filepath.Join(dir, ArticlesFile))
	require.NoError(t, err)

	broken := sampleArticles()
	broken[0].CoverageCount = 0
	err = fs.Write(broken, stats.Build(broken, 2, now))

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)

	after, err := os.ReadFile(filepath.Join(dir, ArticlesFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStore_WritePublishesByIDLast(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, ArticlesByIDFile)
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "keep"), 0o755))

	articles := sampleArticles()
	err := NewFileStore(dir).Write(articles, stats.Build(articles, 2, now))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ArticlesByIDFile)

	for _, name := range []string{ArticlesFile, StatsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "%s renamed before the failing cache file", name)
	}

	info, err := os.Stat(blocked)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStore_WriteEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileStore(dir).Write(nil, stats.Build(nil, 0, now)))

	raw, err := os.ReadFile(filepath.Join(dir, ArticlesFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"articles": []}`, string(raw))
}

func TestFileStore_LoadPreviousSummaries(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		got, err := NewFileStore(t.TempDir()).LoadPreviousSummaries()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ArticlesByIDFile), []byte("  \n"), 0o644))
		got, err := NewFileStore(dir).LoadPreviousSummaries()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("legacy file with naive timestamps", func(t *testing.T) {
		dir := t.TempDir()
		legacy := `{
  "abc123def456": {
    "id": "abc123def456",
    "summary": "Краткое резюме.",
    "published_at": "2025-03-03T10:00:00",
    "related_ids": []
  },
  "0123456789ab": {"id": "0123456789ab", "summary": "English text"}
}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ArticlesByIDFile), []byte(legacy), 0o644))

		got, err := NewFileStore(dir).LoadPreviousSummaries()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"abc123def456": "Краткое резюме.",
			"0123456789ab": "English text",
		}, got)
	})

	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ArticlesByIDFile), []byte("[1,2"), 0o644))
		_, err := NewFileStore(dir).LoadPreviousSummaries()
		assert.Error(t, err)
	})
}
