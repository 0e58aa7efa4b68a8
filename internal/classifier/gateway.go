package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"MoodScanner/internal/domain"
	"MoodScanner/internal/ports"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxRunes = 2000
)

// ErrNoModel is returned when the gateway has no model to delegate to.
var ErrNoModel = errors.New("classifier model is not configured")

// Options tunes a Gateway.
type Options struct {
	Timeout  time.Duration
	Workers  int
	MaxRunes int
	Logger   *slog.Logger
}

// Gateway wraps the external sentiment model behind a total classify contract.
// It is built once per process and shared by every classification.
type Gateway struct {
	model    ports.SentimentModel
	timeout  time.Duration
	workers  int
	maxRunes int
	logger   *slog.Logger
}

// NewGateway builds a gateway around the provided model.
func NewGateway(model ports.SentimentModel, opts Options) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxRunes <= 0 {
		opts.MaxRunes = defaultMaxRunes
	}
	return &Gateway{
		model:    model,
		timeout:  opts.Timeout,
		workers:  opts.Workers,
		maxRunes: opts.MaxRunes,
		logger:   opts.Logger,
	}
}

// Classify labels one text. Blank input is neutral without calling the model.
// Model failures come back as a failed Classification, never as a panic or a
// sentinel label.
func (g *Gateway) Classify(ctx context.Context, text string) domain.Classification {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Classification{Sentiment: domain.Neutral}
	}
	if g == nil || g.model == nil {
		return domain.Classification{Sentiment: domain.Neutral, Err: ErrNoModel}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	idx, err := g.model.Predict(callCtx, truncateRunes(text, g.maxRunes))
	if err != nil {
		return domain.Classification{Sentiment: domain.Neutral, Err: fmt.Errorf("predict: %w", err)}
	}
	label, err := domain.SentimentFromIndex(idx)
	if err != nil {
		return domain.Classification{Sentiment: domain.Neutral, Err: err}
	}
	return domain.Classification{Sentiment: label}
}

// ClassifyAll labels the clean text of every comment using a bounded worker
// pool. The returned slice is a copy in input order.
func (g *Gateway) ClassifyAll(ctx context.Context, comments []domain.Comment) []domain.Comment {
	out := append([]domain.Comment(nil), comments...)
	if len(out) == 0 {
		return out
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers)

	for i := range out {
		i := i
		grp.Go(func() error {
			out[i].Classification = g.Classify(gctx, out[i].CleanText)
			return nil
		})
	}
	_ = grp.Wait()

	if g.logger != nil {
		failed := 0
		for _, c := range out {
			if c.Classification.Failed() {
				failed++
			}
		}
		g.logger.Debug("classified comments", "total", len(out), "failed", failed, "workers", g.workers)
	}
	return out
}

// Close releases the underlying model when it holds resources.
func (g *Gateway) Close() error {
	if g == nil || g.model == nil {
		return nil
	}
	if closer, ok := g.model.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
