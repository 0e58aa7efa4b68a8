package ports

import (
	"context"
	"time"

	"MoodScanner/internal/domain"
)

// RawReader exposes the rows a scraper persisted for one source.
type RawReader interface {
	Articles(ctx context.Context) ([]domain.RawArticle, error)
	Comments(ctx context.Context) ([]domain.RawComment, error)
	Emotions(ctx context.Context) ([]domain.RawEmotion, error)
	SocialComments(ctx context.Context) ([]domain.RawSocialComment, error)
}

// SummaryStore reads and replaces precomputed summary pools.
type SummaryStore interface {
	Summaries(ctx context.Context) ([]domain.RawSummary, error)
	ReplaceSummaries(ctx context.Context, summaries []domain.Summary) error
}

// SentimentModel is the external three-class classifier returning a label index.
type SentimentModel interface {
	Predict(ctx context.Context, text string) (int, error)
}

// ReportWriter turns a prompt into report text via an LLM.
type ReportWriter interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MoodRepository persists per-run mood labels.
type MoodRepository interface {
	SaveArticleMoods(ctx context.Context, runID string, articles []domain.Article) error
	SavePostSentiments(ctx context.Context, runID string, posts map[string]domain.Sentiment) error
}

// ArtifactWriter persists the prompt and report text blobs.
type ArtifactWriter interface {
	WritePrompt(ctx context.Context, prompt string) (string, error)
	WriteReport(ctx context.Context, report string) (string, error)
}

// Notifier delivers reports and failure messages to the operator.
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
	PublishFailure(ctx context.Context, message string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// RunRecorder records batch-level metrics for a finished run.
type RunRecorder interface {
	RecordRun(ctx context.Context, stats domain.RunStats) error
}
