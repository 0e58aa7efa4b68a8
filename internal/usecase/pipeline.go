package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"MoodScanner/internal/adapter"
	"MoodScanner/internal/corpus"
	"MoodScanner/internal/domain"
	"MoodScanner/internal/mood"
	"MoodScanner/internal/ports"
	"MoodScanner/internal/relevance"
	"MoodScanner/internal/report"
)

// ErrNoArticles aborts a run when no news source produced a single article.
var ErrNoArticles = errors.New("no articles loaded from any news source")

// ReportError marks a run whose data artifacts were written but whose report
// could not be generated.
type ReportError struct {
	Err error
}

func (e *ReportError) Error() string {
	return "generate report: " + e.Err.Error()
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// Classifier labels comments; classifier.Gateway is the production implementation.
type Classifier interface {
	ClassifyAll(ctx context.Context, comments []domain.Comment) []domain.Comment
}

// ReportOptions tunes prompt sampling.
type ReportOptions struct {
	Seed         int64
	MaxSummaries int
	MaxComments  int
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Moods, Notifier, Metrics and both summary stores are optional.
type PipelineDeps struct {
	Sources          *adapter.Registry
	Relevance        *relevance.Filter
	Classifier       Classifier
	ArticleSummaries ports.SummaryStore
	PostSummaries    ports.SummaryStore
	Moods            ports.MoodRepository
	Writer           ports.ReportWriter
	Artifacts        ports.ArtifactWriter
	Notifier         ports.Notifier
	Metrics          ports.RunRecorder
	Report           ReportOptions
	Logger           *slog.Logger
	Now              func() time.Time
	NewRunID         func() string
}

// Pipeline implements the batch mood-analysis workflow.
type Pipeline struct {
	sources          *adapter.Registry
	relevance        *relevance.Filter
	classifier       Classifier
	articleSummaries ports.SummaryStore
	postSummaries    ports.SummaryStore
	moods            ports.MoodRepository
	writer           ports.ReportWriter
	artifacts        ports.ArtifactWriter
	notifier         ports.Notifier
	metrics          ports.RunRecorder
	report           ReportOptions
	logger           *slog.Logger
	now              func() time.Time
	newRunID         func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		sources:          deps.Sources,
		relevance:        deps.Relevance,
		classifier:       deps.Classifier,
		articleSummaries: deps.ArticleSummaries,
		postSummaries:    deps.PostSummaries,
		moods:            deps.Moods,
		writer:           deps.Writer,
		artifacts:        deps.Artifacts,
		notifier:         deps.Notifier,
		metrics:          deps.Metrics,
		report:           deps.Report,
		logger:           deps.Logger,
		now:              deps.Now,
		newRunID:         deps.NewRunID,
	}
	if p.sources == nil {
		p.sources = adapter.NewRegistry()
	}
	if p.relevance == nil {
		p.relevance = relevance.NewFilter(nil)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	if p.report.Seed == 0 {
		p.report.Seed = report.DefaultSeed
	}
	return p
}

// RunOptions controls optional stages of one run.
type RunOptions struct {
	SkipReport bool
}

// RunResult describes one finished run.
type RunResult struct {
	RunID         string
	Started       time.Time
	Articles      []domain.Article
	Histogram     map[domain.Mood]int
	PostSentiment map[string]domain.Sentiment
	Dominant      map[domain.ArticleKey]domain.Sentiment
	Stats         mood.Stats
	Build         corpus.BuildReport
	Comments      int
	ExcludedPosts int
	FailedSources map[domain.Source]error
	PromptPath    string
	ReportPath    string
	Report        string
}

// Run loads every source, labels moods, writes the prompt and, unless
// skipped, generates and publishes the report.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	res := RunResult{RunID: p.newRunID(), Started: p.now()}
	logger := p.logger.With("run_id", res.RunID)

	fragments, failures := p.sources.LoadAll(ctx, logger)
	res.FailedSources = failures

	unified, build := corpus.Build(logger, fragments...)
	res.Build = build
	if len(unified.Articles) == 0 {
		p.recordRun(ctx, logger, res, false)
		p.notifyFailure(ctx, logger, ErrNoArticles.Error())
		return res, ErrNoArticles
	}

	posts, excluded := p.relevance.Apply(unified.Posts)
	res.ExcludedPosts = excluded

	articleComments, posts := p.classify(ctx, unified.Comments, posts)
	for _, post := range posts {
		res.Comments += len(post.Comments)
	}
	res.Comments += len(articleComments)

	out := mood.Aggregate(mood.Input{
		Articles: unified.Articles,
		Comments: articleComments,
		Emotions: unified.Emotions,
		Posts:    posts,
	})
	res.Articles = out.Articles
	res.Histogram = out.Histogram()
	res.PostSentiment = out.PostSentiment
	res.Dominant = out.Dominant
	res.Stats = out.Stats

	logger.Info("moods aggregated",
		"articles", len(out.Articles),
		"posts", len(out.PostSentiment),
		"comments", res.Comments,
		"overridden", out.Stats.ArticlesOverridden,
		"defaulted", out.Stats.ArticlesDefaulted,
		"classifier_fallbacks", out.Stats.ClassifierFallbacks)

	p.persist(ctx, logger, res.RunID, out)

	prompt := report.Build(report.Input{
		Articles:         out.Articles,
		PostSentiment:    out.PostSentiment,
		PostCaptions:     captions(posts),
		Dominant:         out.Dominant,
		ArticleSummaries: p.loadSummaries(ctx, logger, p.articleSummaries, "article"),
		PostSummaries:    p.loadSummaries(ctx, logger, p.postSummaries, "post"),
		Comments:         commentTexts(articleComments, posts),
		Seed:             p.report.Seed,
		MaxSummaries:     p.report.MaxSummaries,
		MaxComments:      p.report.MaxComments,
	})

	if p.artifacts != nil {
		path, err := p.artifacts.WritePrompt(ctx, prompt)
		if err != nil {
			p.recordRun(ctx, logger, res, false)
			return res, fmt.Errorf("write prompt: %w", err)
		}
		res.PromptPath = path
	}

	if opts.SkipReport {
		p.recordRun(ctx, logger, res, false)
		return res, nil
	}

	text, err := p.generate(ctx, prompt)
	if err != nil {
		logger.Error("report generation failed", "error", err)
		p.recordRun(ctx, logger, res, false)
		p.notifyFailure(ctx, logger, err.Error())
		return res, &ReportError{Err: err}
	}
	res.Report = text

	if p.artifacts != nil {
		path, err := p.artifacts.WriteReport(ctx, text)
		if err != nil {
			p.recordRun(ctx, logger, res, false)
			return res, fmt.Errorf("write report: %w", err)
		}
		res.ReportPath = path
	}

	if p.notifier != nil {
		if err := p.notifier.PublishReport(ctx, text); err != nil {
			logger.Warn("publish report failed", "error", err)
		}
	}

	p.recordRun(ctx, logger, res, true)
	logger.Info("run finished", "prompt", res.PromptPath, "report", res.ReportPath)
	return res, nil
}

// classify labels article comments and relevant post comments in one batch
// and hands them back split by owner.
func (p *Pipeline) classify(ctx context.Context, comments []domain.Comment, posts []domain.SocialPost) ([]domain.Comment, []domain.SocialPost) {
	if p.classifier == nil {
		return comments, posts
	}

	batch := append([]domain.Comment(nil), comments...)
	for _, post := range posts {
		batch = append(batch, post.Comments...)
	}
	labeled := p.classifier.ClassifyAll(ctx, batch)

	articleComments := labeled[:len(comments):len(comments)]
	offset := len(comments)
	out := make([]domain.SocialPost, len(posts))
	for i, post := range posts {
		n := len(post.Comments)
		post.Comments = labeled[offset : offset+n : offset+n]
		offset += n
		out[i] = post
	}
	return articleComments, out
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (string, error) {
	if p.writer == nil {
		return "", errors.New("report writer is not configured")
	}
	text, err := p.writer.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("report writer returned no text")
	}
	return text, nil
}

func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, runID string, out mood.Output) {
	if p.moods == nil {
		return
	}
	if err := p.moods.SaveArticleMoods(ctx, runID, out.Articles); err != nil {
		logger.Warn("persist article moods failed", "error", err)
	}
	if err := p.moods.SavePostSentiments(ctx, runID, out.PostSentiment); err != nil {
		logger.Warn("persist post sentiments failed", "error", err)
	}
}

// loadSummaries returns nil when the pool is unavailable and a non-nil,
// possibly empty, slice when it was read.
func (p *Pipeline) loadSummaries(ctx context.Context, logger *slog.Logger, store ports.SummaryStore, kind string) []string {
	if store == nil {
		return nil
	}
	rows, err := store.Summaries(ctx)
	if err != nil {
		logger.Warn("summary pool unavailable", "kind", kind, "error", err)
		return nil
	}
	pool := make([]string, 0, len(rows))
	for _, row := range rows {
		if text := strings.TrimSpace(row.Summary.String); text != "" {
			pool = append(pool, text)
		}
	}
	return pool
}

func (p *Pipeline) recordRun(ctx context.Context, logger *slog.Logger, res RunResult, generated bool) {
	if p.metrics == nil {
		return
	}
	postCounts := map[domain.Sentiment]int{}
	for _, s := range res.PostSentiment {
		postCounts[s]++
	}
	stats := domain.RunStats{
		RunID:               res.RunID,
		Started:             res.Started,
		Duration:            p.now().Sub(res.Started),
		Moods:               res.Histogram,
		PostSentiments:      postCounts,
		Comments:            res.Comments,
		ClassifierFallbacks: res.Stats.ClassifierFallbacks,
		SkippedRows:         res.Build.SkippedRows + res.Build.OrphanComments + res.Build.OrphanEmotions,
		ExcludedPosts:       res.ExcludedPosts,
		FailedSources:       len(res.FailedSources),
		ReportGenerated:     generated,
	}
	if err := p.metrics.RecordRun(ctx, stats); err != nil {
		logger.Warn("record metrics failed", "error", err)
	}
}

func (p *Pipeline) notifyFailure(ctx context.Context, logger *slog.Logger, message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishFailure(ctx, message); err != nil {
		logger.Warn("publish failure notice failed", "error", err)
	}
}

func captions(posts []domain.SocialPost) map[string]string {
	out := make(map[string]string, len(posts))
	for _, post := range posts {
		out[post.URL] = post.Caption
	}
	return out
}

func commentTexts(comments []domain.Comment, posts []domain.SocialPost) []string {
	var out []string
	for _, c := range comments {
		if c.CleanText != "" {
			out = append(out, c.CleanText)
		}
	}
	for _, post := range posts {
		for _, c := range post.Comments {
			if c.CleanText != "" {
				out = append(out, c.CleanText)
			}
		}
	}
	return out
}
