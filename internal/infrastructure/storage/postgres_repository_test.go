package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"MoodScanner/internal/domain"
)

func TestSaveArticleMoodsUpserts(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	articles := []domain.Article{
		{Key: domain.ArticleKey{Source: domain.SourceGazeta, LocalID: 1}, URL: "https://gazeta.uz/1", Mood: domain.MoodPositive},
		{Key: domain.ArticleKey{Source: domain.SourcePodrobno, LocalID: 1}, URL: "https://podrobno.uz/1", Mood: domain.MoodNoComment},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO article_moods \(run_id,source,article_id,url,mood\) VALUES \(\$1,\$2,\$3,\$4,\$5\),\(\$6,\$7,\$8,\$9,\$10\) ON CONFLICT`).
		WithArgs("run-1", "gazeta", int64(1), "https://gazeta.uz/1", "positive",
			"run-1", "podrobno", int64(1), "https://podrobno.uz/1", "no-comment").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := NewPostgresRepository(db)
	if err := repo.SaveArticleMoods(context.Background(), "run-1", articles); err != nil {
		t.Fatalf("save moods: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSavePostSentimentsRollsBackOnError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO post_sentiments`).
		WithArgs("run-2", "https://instagram.com/p/a", "negative", "run-2", "https://instagram.com/p/b", "positive").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	err = repo.SavePostSentiments(context.Background(), "run-2", map[string]domain.Sentiment{
		"https://instagram.com/p/b": domain.Positive,
		"https://instagram.com/p/a": domain.Negative,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunMoods(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT source, article_id, mood FROM article_moods WHERE run_id = \$1`).
		WithArgs("run-3").
		WillReturnRows(sqlmock.NewRows([]string{"source", "article_id", "mood"}).
			AddRow("gazeta", int64(4), "negative").
			AddRow("podrobno", int64(4), "positive"))

	moods, err := NewPostgresRepository(db).RunMoods(context.Background(), "run-3")
	if err != nil {
		t.Fatalf("run moods: %v", err)
	}
	if moods["gazeta:4"] != domain.MoodNegative || moods["podrobno:4"] != domain.MoodPositive {
		t.Fatalf("unexpected moods: %v", moods)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNilDBIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	if err := repo.SaveArticleMoods(context.Background(), "run", []domain.Article{{}}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
