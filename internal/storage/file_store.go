package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deusflow/newsmin/internal/news"
	"github.com/deusflow/newsmin/internal/schemas"
	"github.com/deusflow/newsmin/internal/stats"
)

const (
	ArticlesFile     = "articles.json"
	StatsFile        = "stats.json"
	ArticlesByIDFile = "articles_by_id.json"
)

// FileStore reads the previous run's artifacts and publishes new ones in a
// single output directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (fs *FileStore) Dir() string { return fs.dir }

// previousArticle decodes only what the summary cache needs, so older files
// with extra fields or odd timestamps still load.
type previousArticle struct {
	Summary string `json:"summary"`
}

// LoadPreviousSummaries returns id -> summary from the last published
// articles_by_id.json. A missing or empty file yields an empty map.
func (fs *FileStore) LoadPreviousSummaries() (map[string]string, error) {
	path := filepath.Join(fs.dir, ArticlesByIDFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read previous output: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}

	var previous map[string]previousArticle
	if err := json.Unmarshal(data, &previous); err != nil {
		return nil, fmt.Errorf("failed to unmarshal previous output: %w", err)
	}

	summaries := make(map[string]string, len(previous))
	for id, a := range previous {
		summaries[id] = a.Summary
	}
	return summaries, nil
}

type articlesDoc struct {
	Articles []news.Article `json:"articles"`
}

// Write validates and publishes all three artifacts. Every file is written
// to a temp file first and renamed into place, and nothing is renamed until
// all three documents have been validated and staged. Each rename is atomic
// on its own; the set is not, so articles_by_id.json goes last.
func (fs *FileStore) Write(articles []news.Article, st stats.Stats) error {
	if articles == nil {
		articles = []news.Article{}
	}
	byID := make(map[string]news.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	docs := []struct {
		name     string
		artifact string
		value    any
	}{
		{ArticlesFile, schemas.Articles, articlesDoc{Articles: articles}},
		{StatsFile, schemas.Stats, st},
		// Renamed last so a failed publish leaves the summary cache intact.
		{ArticlesByIDFile, schemas.ArticlesByID, byID},
	}

	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	staged := make(map[string]string, len(docs))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()

	for _, d := range docs {
		data, err := marshal(d.value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", d.name, err)
		}
		if err := schemas.Validate(d.artifact, data); err != nil {
			return err
		}
		tmp, err := writeTemp(fs.dir, d.name, data)
		if err != nil {
			return err
		}
		staged[d.name] = tmp
	}

	for _, d := range docs {
		if err := os.Rename(staged[d.name], filepath.Join(fs.dir, d.name)); err != nil {
			return fmt.Errorf("failed to publish %s: %w", d.name, err)
		}
		delete(staged, d.name)
	}
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	return tmp, nil
}
