package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"MoodScanner/internal/corpus"
	"MoodScanner/internal/domain"
)

// Adapter maps one platform's raw schema into canonical entities.
type Adapter interface {
	Source() domain.Source
	Load(ctx context.Context) (corpus.Fragment, error)
}

// Registry keeps a mapping from sources to their adapters.
type Registry struct {
	adapters map[domain.Source]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[domain.Source]Adapter{}}
}

// Register adds or replaces an adapter implementation.
func (r *Registry) Register(a Adapter) {
	if r.adapters == nil {
		r.adapters = map[domain.Source]Adapter{}
	}
	r.adapters[a.Source()] = a
}

// Resolve returns an adapter by source or an error if it is absent.
func (r *Registry) Resolve(source domain.Source) (Adapter, error) {
	if a, ok := r.adapters[source]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("adapter %s is not registered", source)
}

// Sources lists registered sources in a stable order.
func (r *Registry) Sources() []domain.Source {
	sources := make([]domain.Source, 0, len(r.adapters))
	for s := range r.adapters {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}

// LoadAll runs every registered adapter. A failing source is logged and left
// out; only the caller decides whether the remaining data is enough.
func (r *Registry) LoadAll(ctx context.Context, logger *slog.Logger) ([]corpus.Fragment, map[domain.Source]error) {
	var (
		fragments []corpus.Fragment
		failures  = map[domain.Source]error{}
	)
	for _, source := range r.Sources() {
		frag, err := r.adapters[source].Load(ctx)
		if err != nil {
			failures[source] = err
			if logger != nil {
				logger.Warn("source unavailable", "source", source, "error", err)
			}
			continue
		}
		if logger != nil {
			logger.Debug("source loaded",
				"source", source,
				"articles", len(frag.Articles),
				"comments", len(frag.Comments),
				"emotions", len(frag.Emotions),
				"posts", len(frag.Posts),
				"skipped", frag.Skipped)
		}
		fragments = append(fragments, frag)
	}
	return fragments, failures
}
