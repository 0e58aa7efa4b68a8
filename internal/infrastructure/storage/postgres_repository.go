package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"MoodScanner/internal/domain"
	"MoodScanner/internal/ports"
)

const insertBatchSize = 500

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists per-run mood labels into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.MoodRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects with the lib/pq driver and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// SaveArticleMoods upserts one row per article for the run.
func (r *PostgresRepository) SaveArticleMoods(ctx context.Context, runID string, articles []domain.Article) error {
	if r.db == nil || len(articles) == 0 {
		return nil
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(articles); start += insertBatchSize {
			end := min(start+insertBatchSize, len(articles))
			insert := psql.Insert("article_moods").Columns("run_id", "source", "article_id", "url", "mood")
			for _, a := range articles[start:end] {
				insert = insert.Values(runID, string(a.Key.Source), a.Key.LocalID, a.URL, string(a.Mood))
			}
			insert = insert.Suffix(`ON CONFLICT (run_id, source, article_id) DO UPDATE
              SET mood = EXCLUDED.mood,
                  url = EXCLUDED.url,
                  updated_at = NOW()`)

			query, args, err := insert.ToSql()
			if err != nil {
				return fmt.Errorf("build article moods insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert article moods: %w", err)
			}
		}
		return nil
	})
}

// SavePostSentiments upserts one row per social post for the run.
func (r *PostgresRepository) SavePostSentiments(ctx context.Context, runID string, posts map[string]domain.Sentiment) error {
	if r.db == nil || len(posts) == 0 {
		return nil
	}

	urls := make([]string, 0, len(posts))
	for url := range posts {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(urls); start += insertBatchSize {
			end := min(start+insertBatchSize, len(urls))
			insert := psql.Insert("post_sentiments").Columns("run_id", "post_url", "sentiment")
			for _, url := range urls[start:end] {
				insert = insert.Values(runID, url, posts[url].String())
			}
			insert = insert.Suffix(`ON CONFLICT (run_id, post_url) DO UPDATE
              SET sentiment = EXCLUDED.sentiment,
                  updated_at = NOW()`)

			query, args, err := insert.ToSql()
			if err != nil {
				return fmt.Errorf("build post sentiments insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert post sentiments: %w", err)
			}
		}
		return nil
	})
}

// RunMoods returns the stored mood per article key string for a run.
func (r *PostgresRepository) RunMoods(ctx context.Context, runID string) (map[string]domain.Mood, error) {
	query, args, err := psql.Select("source", "article_id", "mood").
		From("article_moods").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("source", "article_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build run moods query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query run moods: %w", err)
	}

	result := make(map[string]domain.Mood)
	for rows.Next() {
		var (
			source string
			id     int64
			mood   string
		)
		if err := rows.Scan(&source, &id, &mood); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		result[domain.ArticleKey{Source: domain.Source(source), LocalID: id}.String()] = domain.Mood(mood)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
