package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"MoodScanner/internal/ports"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// RetryOptions configures Retrying.
type RetryOptions struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Logger     *slog.Logger
}

// Retrying bounds every attempt with a timeout and retries transient failures
// with jittered exponential backoff.
type Retrying struct {
	next     ports.ReportWriter
	timeout  time.Duration
	executor failsafe.Executor[string]
	logger   *slog.Logger
}

var _ ports.ReportWriter = (*Retrying)(nil)

// NewRetrying wraps next with a failsafe retry policy.
func NewRetrying(next ports.ReportWriter, opts RetryOptions) *Retrying {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay <= opts.BaseDelay {
		opts.MaxDelay = 10 * opts.BaseDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	policy := retrypolicy.NewBuilder[string]().
		WithBackoff(opts.BaseDelay, opts.MaxDelay).
		WithMaxRetries(opts.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(_ string, err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}).
		Build()

	return &Retrying{
		next:     next,
		timeout:  opts.Timeout,
		executor: failsafe.With[string](policy),
		logger:   opts.Logger,
	}
}

// Generate calls the wrapped writer until it succeeds or the policy gives up.
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	attempt := 0
	return r.executor.WithContext(ctx).Get(func() (string, error) {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		out, err := r.next.Generate(callCtx, prompt)
		if err == nil && strings.TrimSpace(out) == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			r.logger.Warn("llm attempt failed", "attempt", attempt, "error", err)
			return "", err
		}
		return out, nil
	})
}
