package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/deusflow/newsmin/internal/logger"
)

const summaryTable = "summary_cache"

// PostgresCache keeps generated summaries in PostgreSQL so they survive a
// lost output directory.
type PostgresCache struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// NewPostgresCache connects, pings and makes sure the table exists.
func NewPostgresCache(ctx context.Context, connectionString string) (*PostgresCache, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache := NewPostgresCacheWithDB(db)
	if err := cache.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("PostgreSQL summary cache connected")
	return cache, nil
}

func NewPostgresCacheWithDB(db *sql.DB) *PostgresCache {
	return &PostgresCache{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (pc *PostgresCache) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS summary_cache (
		article_id VARCHAR(12) PRIMARY KEY,
		summary TEXT NOT NULL,
		provider VARCHAR(50),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_summary_cache_updated_at ON summary_cache(updated_at);
	`

	if _, err := pc.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (pc *PostgresCache) loadQuery(ids []string) sq.SelectBuilder {
	return pc.sb.
		Select("article_id", "summary").
		From(summaryTable).
		Where("article_id = ANY(?)", pq.StringArray(ids))
}

func (pc *PostgresCache) saveQuery(id, summary, provider string) sq.InsertBuilder {
	return pc.sb.
		Insert(summaryTable).
		Columns("article_id", "summary", "provider").
		Values(id, summary, provider).
		Suffix(`ON CONFLICT (article_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			provider = EXCLUDED.provider,
			updated_at = NOW()`)
}

// LoadSummaries returns the cached summaries for the given article ids.
func (pc *PostgresCache) LoadSummaries(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string)
	if pc.db == nil || len(ids) == 0 {
		return result, nil
	}

	query, args, err := pc.loadQuery(ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary query: %w", err)
	}

	rows, err := pc.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		result[id] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveSummary upserts one generated summary.
func (pc *PostgresCache) SaveSummary(ctx context.Context, id, summary, provider string) error {
	if pc.db == nil {
		return nil
	}

	query, args, err := pc.saveQuery(id, summary, provider).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := pc.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// Close closes the database connection
func (pc *PostgresCache) Close() error {
	if pc.db != nil {
		return pc.db.Close()
	}
	return nil
}
