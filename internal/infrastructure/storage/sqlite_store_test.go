package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"MoodScanner/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, stmts ...string) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	store, err := OpenSQLite(path, true, quietLogger())
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	for _, stmt := range stmts {
		if _, err := store.DB().Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return store
}

func TestOpenSQLiteMissingFile(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite(filepath.Join(t.TempDir(), "absent.db"), false, quietLogger())
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
}

func TestGazetaSchema(t *testing.T) {
	t.Parallel()

	store := newFixture(t,
		`CREATE TABLE articles (id INTEGER PRIMARY KEY AUTOINCREMENT, url TEXT UNIQUE, title TEXT, content TEXT)`,
		`CREATE TABLE comments (id INTEGER PRIMARY KEY AUTOINCREMENT, article_id INTEGER, user TEXT, comment TEXT, upvotes INTEGER, downvotes INTEGER)`,
		`INSERT INTO articles (url, title, content) VALUES ('https://gazeta.uz/1', 'Налоги', '<p>Текст</p>')`,
		`INSERT INTO comments (article_id, user, comment, upvotes, downvotes) VALUES (1, 'ivan', 'Хорошо', 3, 1)`,
		`INSERT INTO comments (article_id, user, comment, upvotes, downvotes) VALUES (NULL, 'anon', 'Ничей', NULL, NULL)`,
	)
	ctx := context.Background()

	articles, err := store.Articles(ctx)
	if err != nil {
		t.Fatalf("articles: %v", err)
	}
	if len(articles) != 1 || articles[0].Title.String != "Налоги" {
		t.Fatalf("unexpected articles: %+v", articles)
	}

	comments, err := store.Comments(ctx)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].User.String != "ivan" || comments[0].Upvotes.Int64 != 3 {
		t.Fatalf("unexpected first comment: %+v", comments[0])
	}
	if comments[1].ArticleID.Valid {
		t.Fatalf("expected null article id: %+v", comments[1])
	}

	emotions, err := store.Emotions(ctx)
	if err != nil || emotions != nil {
		t.Fatalf("missing emotions table should be empty, got %v, %v", emotions, err)
	}
}

func TestPodrobnoSchemaWithoutAuthorColumns(t *testing.T) {
	t.Parallel()

	store := newFixture(t,
		`CREATE TABLE comments (id INTEGER PRIMARY KEY AUTOINCREMENT, article_id INTEGER, comment TEXT)`,
		`CREATE TABLE emotions (id INTEGER PRIMARY KEY AUTOINCREMENT, article_id INTEGER, emotion TEXT, count INTEGER)`,
		`INSERT INTO comments (article_id, comment) VALUES (7, 'Плохо')`,
		`INSERT INTO emotions (article_id, emotion, count) VALUES (7, 'Грусть', 4)`,
		`INSERT INTO emotions (article_id, emotion, count) VALUES (7, 'Радость', NULL)`,
	)
	ctx := context.Background()

	comments, err := store.Comments(ctx)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(comments) != 1 || comments[0].User.Valid || comments[0].Upvotes.Valid {
		t.Fatalf("expected author columns to read as NULL: %+v", comments)
	}

	emotions, err := store.Emotions(ctx)
	if err != nil {
		t.Fatalf("emotions: %v", err)
	}
	if len(emotions) != 2 || emotions[0].Count.Int64 != 4 || emotions[1].Count.Valid {
		t.Fatalf("unexpected emotions: %+v", emotions)
	}
}

func TestSocialComments(t *testing.T) {
	t.Parallel()

	store := newFixture(t,
		`CREATE TABLE comments (id INTEGER PRIMARY KEY AUTOINCREMENT, account_name TEXT, post_url TEXT, post_caption TEXT, username TEXT, comment TEXT)`,
		`INSERT INTO comments (account_name, post_url, post_caption, username, comment) VALUES ('gov', 'https://instagram.com/p/a', 'Закон', 'u1', 'Отличная новость для всех')`,
	)

	rows, err := store.SocialComments(context.Background())
	if err != nil {
		t.Fatalf("social comments: %v", err)
	}
	if len(rows) != 1 || rows[0].PostURL.String != "https://instagram.com/p/a" || rows[0].Username.String != "u1" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReplaceAndReadSummaries(t *testing.T) {
	t.Parallel()

	store := newFixture(t)
	ctx := context.Background()

	err := store.ReplaceSummaries(ctx, []domain.Summary{
		{Key: "https://instagram.com/p/a", Source: domain.SourceInstagram, Title: "Закон", CommentCount: 3, Text: "Пост"},
		{Key: "gazeta:5", Source: domain.SourceGazeta, Title: "Налоги", Text: "Статья"},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	err = store.ReplaceSummaries(ctx, []domain.Summary{
		{Key: "podrobno:9", Source: domain.SourcePodrobno, Title: "Цены", Text: "Новая"},
	})
	if err != nil {
		t.Fatalf("replace again: %v", err)
	}

	got, err := store.Summaries(ctx)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected post summary plus replaced article summary, got %+v", got)
	}
	if got[0].Key != "https://instagram.com/p/a" || got[0].Summary.String != "Пост" {
		t.Fatalf("unexpected post summary: %+v", got[0])
	}
	if got[1].Key != "podrobno:9" || got[1].Summary.String != "Новая" {
		t.Fatalf("unexpected article summary: %+v", got[1])
	}
}

func TestSummariesWithoutTables(t *testing.T) {
	t.Parallel()

	got, err := newFixture(t).Summaries(context.Background())
	if err != nil || got != nil {
		t.Fatalf("expected nil summaries, got %v, %v", got, err)
	}
}
