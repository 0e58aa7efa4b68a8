package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"MoodScanner/internal/adapter"
	"MoodScanner/internal/classifier"
	"MoodScanner/internal/config"
	"MoodScanner/internal/domain"
	"MoodScanner/internal/infrastructure/artifacts"
	"MoodScanner/internal/infrastructure/llm"
	"MoodScanner/internal/infrastructure/metrics"
	"MoodScanner/internal/infrastructure/ml"
	"MoodScanner/internal/infrastructure/scheduler"
	"MoodScanner/internal/infrastructure/storage"
	"MoodScanner/internal/infrastructure/telegram"
	"MoodScanner/internal/logging"
	"MoodScanner/internal/ports"
	"MoodScanner/internal/relevance"
	"MoodScanner/internal/usecase"
)

const (
	postSummarySystemPrompt    = "Ты — аналитик социальных сетей. Делай краткие обзоры на русском языке."
	articleSummarySystemPrompt = "Ты — аналитик СМИ. Напиши краткое содержание и выяви главные темы статьи и комментариев."
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	registry  *adapter.Registry
	relevance *relevance.Filter
	gateway   *classifier.Gateway
	moodsDB   *sql.DB
	closers   []io.Closer
}

// New opens the source databases and builds the shared components. Missing
// source files are logged and skipped; the run decides whether enough remains.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	}

	a := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		registry:  adapter.NewRegistry(),
		relevance: relevance.NewFilter(cfg.Relevance.Keywords),
	}

	sources := []struct {
		source domain.Source
		path   string
		build  func(ports.RawReader, *slog.Logger) adapter.Adapter
	}{
		{domain.SourceGazeta, cfg.Sources.GazetaDB, func(r ports.RawReader, l *slog.Logger) adapter.Adapter { return adapter.NewGazeta(r, l) }},
		{domain.SourcePodrobno, cfg.Sources.PodrobnoDB, func(r ports.RawReader, l *slog.Logger) adapter.Adapter { return adapter.NewPodrobno(r, l) }},
		{domain.SourceInstagram, cfg.Sources.InstagramDB, func(r ports.RawReader, l *slog.Logger) adapter.Adapter { return adapter.NewInstagram(r, l) }},
	}
	for _, src := range sources {
		logger := baseLogger.With("component", "adapter."+string(src.source))
		store, err := storage.OpenSQLite(src.path, false, logger)
		if err != nil {
			if errors.Is(err, storage.ErrSourceMissing) {
				logger.Warn("source database missing", "path", src.path)
				continue
			}
			a.Close()
			return nil, fmt.Errorf("open %s source: %w", src.source, err)
		}
		a.closers = append(a.closers, store)
		a.registry.Register(src.build(store, logger))
	}

	model := ml.NewClient(cfg.Classifier.Endpoint, cfg.Classifier.APIKey)
	a.gateway = classifier.NewGateway(model, classifier.Options{
		Timeout:  cfg.Classifier.Timeout,
		Workers:  cfg.Classifier.Workers,
		MaxRunes: cfg.Classifier.MaxRunes,
		Logger:   baseLogger.With("component", "classifier"),
	})
	a.closers = append(a.closers, a.gateway)

	if cfg.Database.DSN != "" {
		db, err := storage.OpenPostgres(ctx, cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("mood database unavailable, labels will not be persisted", "error", err)
		} else {
			a.moodsDB = db
			a.closers = append(a.closers, db)
		}
	}

	return a, nil
}

// Pipeline builds the batch pipeline with read-only summary pools.
func (a *Application) Pipeline() (*usecase.Pipeline, error) {
	writer, err := llm.NewWriter(a.cfg.LLM, a.logger)
	if err != nil {
		return nil, fmt.Errorf("report writer: %w", err)
	}

	deps := usecase.PipelineDeps{
		Sources:    a.registry,
		Relevance:  a.relevance,
		Classifier: a.gateway,
		Writer:     writer,
		Artifacts:  artifacts.NewFiles(a.cfg.Report.PromptPath, a.cfg.Report.ReportPath),
		Metrics:    metrics.NewRecorder(a.cfg.Metrics.TextfilePath),
		Report: usecase.ReportOptions{
			Seed:         a.cfg.Report.Seed,
			MaxSummaries: a.cfg.Report.MaxSummaries,
			MaxComments:  a.cfg.Report.MaxComments,
		},
		Logger: a.logger.With("component", "pipeline"),
	}

	if store := a.openSummaries(a.cfg.Sources.ArticleSummariesDB, false); store != nil {
		deps.ArticleSummaries = store
	}
	if store := a.openSummaries(a.cfg.Sources.PostSummariesDB, false); store != nil {
		deps.PostSummaries = store
	}
	if a.moodsDB != nil {
		deps.Moods = storage.NewPostgresRepository(a.moodsDB)
	}
	notifier := telegram.NewNotifier(a.cfg.Notifications.Telegram.BotToken, a.cfg.Notifications.Telegram.ChatID)
	if notifier.Configured() {
		deps.Notifier = notifier
	}

	return usecase.NewPipeline(deps), nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context, opts usecase.RunOptions) (usecase.RunResult, error) {
	pipeline, err := a.Pipeline()
	if err != nil {
		return usecase.RunResult{}, err
	}
	return pipeline.Run(ctx, opts)
}

// Summarize refreshes both summary pools.
func (a *Application) Summarize(ctx context.Context) (usecase.SummaryResult, error) {
	postCfg := a.cfg.LLM
	postCfg.SystemPrompt = postSummarySystemPrompt
	postWriter, err := llm.NewWriter(postCfg, a.logger)
	if err != nil {
		return usecase.SummaryResult{}, fmt.Errorf("post summary writer: %w", err)
	}

	articleCfg := a.cfg.LLM
	articleCfg.SystemPrompt = articleSummarySystemPrompt
	articleWriter, err := llm.NewWriter(articleCfg, a.logger)
	if err != nil {
		return usecase.SummaryResult{}, fmt.Errorf("article summary writer: %w", err)
	}

	deps := usecase.SummarizerDeps{
		Sources:       a.registry,
		Relevance:     a.relevance,
		PostWriter:    postWriter,
		ArticleWriter: articleWriter,
		Seed:          a.cfg.Report.Seed,
		Logger:        a.logger,
	}
	if store := a.openSummaries(a.cfg.Sources.PostSummariesDB, true); store != nil {
		deps.PostStore = store
	}
	if store := a.openSummaries(a.cfg.Sources.ArticleSummariesDB, true); store != nil {
		deps.ArticleStore = store
	}

	return usecase.NewSummarizer(deps).Run(ctx)
}

// Schedule runs the pipeline on the configured interval until ctx is done.
func (a *Application) Schedule(ctx context.Context) error {
	pipeline, err := a.Pipeline()
	if err != nil {
		return err
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, pipeline, a.logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval, "timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.LLM.Timeout)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Close releases every opened resource.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close resource", "error", err)
		}
	}
	a.closers = nil
}

// openSummaries returns nil when the pool cannot be opened, which the prompt
// reports as an absent pool.
func (a *Application) openSummaries(path string, create bool) *storage.SQLiteStore {
	logger := a.logger.With("component", "summaries")
	store, err := storage.OpenSQLite(path, create, logger)
	if err != nil {
		logger.Warn("summary pool unavailable", "path", path, "error", err)
		return nil
	}
	a.closers = append(a.closers, store)
	return store
}
