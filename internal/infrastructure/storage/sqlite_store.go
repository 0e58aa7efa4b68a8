package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"MoodScanner/internal/domain"
	"MoodScanner/internal/ports"
)

// ErrSourceMissing reports that a source database file does not exist.
var ErrSourceMissing = errors.New("source database missing")

const (
	tableArticles       = "articles"
	tableComments       = "comments"
	tableEmotions       = "emotions"
	tableSummaries      = "summaries"
	tablePostSummaries  = "post_summaries"
	nullColumnExpr      = "NULL AS "
	sqliteDriverName    = "sqlite"
	sqliteBusyTimeoutMS = 5000
)

// SQLiteStore reads raw scrape rows from one SQLite file and stores summary pools.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ ports.RawReader = (*SQLiteStore)(nil)
var _ ports.SummaryStore = (*SQLiteStore)(nil)

// OpenSQLite opens an existing database file. When create is false a missing
// file yields ErrSourceMissing instead of an empty database being created.
func OpenSQLite(path string, create bool, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("open sqlite: %w", ErrSourceMissing)
	}
	if !create {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("open sqlite %s: %w", path, ErrSourceMissing)
			}
			return nil, fmt.Errorf("stat sqlite %s: %w", path, err)
		}
	}

	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = " + strconv.Itoa(sqliteBusyTimeoutMS),
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db, path: path, logger: logger.With("component", "sqlite", "path", path)}, nil
}

// DB exposes the underlying handle, mainly for fixtures.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Articles returns every row of the articles table.
func (s *SQLiteStore) Articles(ctx context.Context) ([]domain.RawArticle, error) {
	cols, ok, err := s.columns(ctx, tableArticles)
	if err != nil || !ok {
		return nil, err
	}
	query := sq.Select(
		pick(cols, "id"),
		pick(cols, "url"),
		pick(cols, "title"),
		pick(cols, "content"),
	).From(tableArticles).OrderBy("id")

	var out []domain.RawArticle
	err = s.scan(ctx, query, func(rows *sql.Rows) error {
		var row domain.RawArticle
		if err := rows.Scan(&row.ID, &row.URL, &row.Title, &row.Content); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

// Comments returns article comment rows. Columns absent from the schema are read as NULL.
func (s *SQLiteStore) Comments(ctx context.Context) ([]domain.RawComment, error) {
	cols, ok, err := s.columns(ctx, tableComments)
	if err != nil || !ok {
		return nil, err
	}
	query := sq.Select(
		pick(cols, "id"),
		pick(cols, "article_id"),
		pick(cols, "user"),
		pick(cols, "comment"),
		pick(cols, "upvotes"),
		pick(cols, "downvotes"),
	).From(tableComments).OrderBy("id")

	var out []domain.RawComment
	err = s.scan(ctx, query, func(rows *sql.Rows) error {
		var row domain.RawComment
		if err := rows.Scan(&row.ID, &row.ArticleID, &row.User, &row.Text, &row.Upvotes, &row.Downvotes); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

// Emotions returns reaction tally rows.
func (s *SQLiteStore) Emotions(ctx context.Context) ([]domain.RawEmotion, error) {
	cols, ok, err := s.columns(ctx, tableEmotions)
	if err != nil || !ok {
		return nil, err
	}
	query := sq.Select(
		pick(cols, "article_id"),
		pick(cols, "emotion"),
		pick(cols, "count"),
	).From(tableEmotions).OrderBy("rowid")

	var out []domain.RawEmotion
	err = s.scan(ctx, query, func(rows *sql.Rows) error {
		var row domain.RawEmotion
		if err := rows.Scan(&row.ArticleID, &row.Emotion, &row.Count); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

// SocialComments returns scraped social comments with their post metadata.
func (s *SQLiteStore) SocialComments(ctx context.Context) ([]domain.RawSocialComment, error) {
	cols, ok, err := s.columns(ctx, tableComments)
	if err != nil || !ok {
		return nil, err
	}
	query := sq.Select(
		pick(cols, "id"),
		pick(cols, "account_name"),
		pick(cols, "post_url"),
		pick(cols, "post_caption"),
		pick(cols, "username"),
		pick(cols, "comment"),
	).From(tableComments).OrderBy("id")

	var out []domain.RawSocialComment
	err = s.scan(ctx, query, func(rows *sql.Rows) error {
		var row domain.RawSocialComment
		if err := rows.Scan(&row.ID, &row.AccountName, &row.PostURL, &row.PostCaption, &row.Username, &row.Comment); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

// Summaries reads whichever summary tables exist. Post summaries are keyed by
// post url, article summaries by "source:article_id".
func (s *SQLiteStore) Summaries(ctx context.Context) ([]domain.RawSummary, error) {
	var out []domain.RawSummary

	if cols, ok, err := s.columns(ctx, tablePostSummaries); err != nil {
		return nil, err
	} else if ok {
		query := sq.Select(pick(cols, "post_url"), pick(cols, "summary")).From(tablePostSummaries).OrderBy("post_url")
		err := s.scan(ctx, query, func(rows *sql.Rows) error {
			var (
				key sql.NullString
				row domain.RawSummary
			)
			if err := rows.Scan(&key, &row.Summary); err != nil {
				return err
			}
			row.Key = key.String
			out = append(out, row)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if cols, ok, err := s.columns(ctx, tableSummaries); err != nil {
		return nil, err
	} else if ok {
		query := sq.Select(pick(cols, "source"), pick(cols, "article_id"), pick(cols, "summary")).
			From(tableSummaries).OrderBy("rowid")
		err := s.scan(ctx, query, func(rows *sql.Rows) error {
			var (
				source sql.NullString
				id     sql.NullInt64
				row    domain.RawSummary
			)
			if err := rows.Scan(&source, &id, &row.Summary); err != nil {
				return err
			}
			row.Key = domain.ArticleKey{Source: domain.Source(source.String), LocalID: id.Int64}.String()
			out = append(out, row)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if out == nil {
		s.logger.Warn("no summary tables found")
	}
	return out, nil
}

// ReplaceSummaries rewrites the summary tables touched by the batch. Social
// summaries go to post_summaries, article summaries to summaries.
func (s *SQLiteStore) ReplaceSummaries(ctx context.Context, summaries []domain.Summary) error {
	var posts, articles []domain.Summary
	for _, sm := range summaries {
		if sm.Source == domain.SourceInstagram {
			posts = append(posts, sm)
		} else {
			articles = append(articles, sm)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin summaries tx: %w", err)
	}

	if len(posts) > 0 {
		if err := replaceTable(ctx, tx, tablePostSummaries,
			`CREATE TABLE post_summaries (post_url TEXT PRIMARY KEY, caption TEXT, comment_count INTEGER, summary TEXT)`); err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, sm := range posts {
			query, args, err := sq.Insert(tablePostSummaries).
				Columns("post_url", "caption", "comment_count", "summary").
				Values(sm.Key, sm.Title, sm.CommentCount, sm.Text).
				ToSql()
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("build post summary insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert post summary %s: %w", sm.Key, err)
			}
		}
	}

	if len(articles) > 0 {
		if err := replaceTable(ctx, tx, tableSummaries,
			`CREATE TABLE summaries (source TEXT, article_id INTEGER, title TEXT, summary TEXT)`); err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, sm := range articles {
			id, _ := strconv.ParseInt(strings.TrimPrefix(sm.Key, string(sm.Source)+":"), 10, 64)
			query, args, err := sq.Insert(tableSummaries).
				Columns("source", "article_id", "title", "summary").
				Values(string(sm.Source), id, sm.Title, sm.Text).
				ToSql()
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("build article summary insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert article summary %s: %w", sm.Key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit summaries: %w", err)
	}
	return nil
}

func replaceTable(ctx context.Context, tx *sql.Tx, table, create string) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// columns reports the column set of table and whether the table exists.
// A missing table is logged and treated as empty.
func (s *SQLiteStore) columns(ctx context.Context, table string) (map[string]bool, bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, false, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, false, fmt.Errorf("scan %s column: %w", table, err)
		}
		cols[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("inspect %s: %w", table, err)
	}
	if len(cols) == 0 {
		s.logger.Warn("table missing", "table", table)
		return nil, false, nil
	}
	return cols, true, nil
}

// scan runs query and feeds each row to fn. Rows that fail to scan are
// skipped so one malformed value never hides the rest of the table.
func (s *SQLiteStore) scan(ctx context.Context, query sq.SelectBuilder, fn func(*sql.Rows) error) error {
	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("query %q: %w", stmt, err)
	}

	skipped := 0
	for rows.Next() {
		if err := fn(rows); err != nil {
			skipped++
			s.logger.Debug("skip malformed row", "error", err)
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return fmt.Errorf("close rows: %w", closeErr)
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed rows", "count", skipped, "query", stmt)
	}
	return nil
}

// pick selects a column when present and NULL under the same name otherwise.
func pick(cols map[string]bool, name string) string {
	if cols[name] {
		return name
	}
	return nullColumnExpr + name
}
