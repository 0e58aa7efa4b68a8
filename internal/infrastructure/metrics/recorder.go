package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"MoodScanner/internal/domain"
	"MoodScanner/internal/ports"
)

const namespace = "moodscanner"

// Recorder keeps batch gauges in a private registry and, when a path is set,
// writes them in the node_exporter textfile format after every run.
type Recorder struct {
	path     string
	registry *prometheus.Registry

	articles      *prometheus.GaugeVec
	posts         *prometheus.GaugeVec
	comments      prometheus.Gauge
	fallbacks     prometheus.Gauge
	skippedRows   prometheus.Gauge
	excludedPosts prometheus.Gauge
	failedSources prometheus.Gauge
	duration      prometheus.Gauge
	lastRun       prometheus.Gauge
	reportOK      prometheus.Gauge
	runsTotal     *prometheus.CounterVec
}

var _ ports.RunRecorder = (*Recorder)(nil)

// NewRecorder registers all batch metrics.
func NewRecorder(path string) *Recorder {
	r := &Recorder{
		path:     path,
		registry: prometheus.NewRegistry(),
		articles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "articles",
			Help: "Articles per mood label in the last run.",
		}, []string{"mood"}),
		posts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "posts",
			Help: "Relevant social posts per sentiment in the last run.",
		}, []string{"sentiment"}),
		comments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "comments_classified",
			Help: "Comments sent to the classifier in the last run.",
		}),
		fallbacks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "classifier_fallbacks",
			Help: "Comments whose classification failed and defaulted to neutral.",
		}),
		skippedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "skipped_rows",
			Help: "Malformed or orphaned rows dropped while building the corpus.",
		}),
		excludedPosts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "excluded_posts",
			Help: "Social posts excluded by the relevance filter.",
		}),
		failedSources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "failed_sources",
			Help: "Sources that could not be loaded.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds",
			Help: "Start time of the last run.",
		}),
		reportOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "report_generated",
			Help: "1 when the last run produced a report.",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total",
			Help: "Runs by outcome since process start.",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(
		r.articles, r.posts, r.comments, r.fallbacks, r.skippedRows,
		r.excludedPosts, r.failedSources, r.duration, r.lastRun, r.reportOK, r.runsTotal,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordRun updates gauges from stats and flushes the textfile.
func (r *Recorder) RecordRun(_ context.Context, stats domain.RunStats) error {
	for _, m := range domain.Moods {
		r.articles.WithLabelValues(string(m)).Set(float64(stats.Moods[m]))
	}
	for _, s := range domain.Sentiments {
		r.posts.WithLabelValues(s.String()).Set(float64(stats.PostSentiments[s]))
	}
	r.comments.Set(float64(stats.Comments))
	r.fallbacks.Set(float64(stats.ClassifierFallbacks))
	r.skippedRows.Set(float64(stats.SkippedRows))
	r.excludedPosts.Set(float64(stats.ExcludedPosts))
	r.failedSources.Set(float64(stats.FailedSources))
	r.duration.Set(stats.Duration.Seconds())
	if !stats.Started.IsZero() {
		r.lastRun.Set(float64(stats.Started.Unix()))
	}

	outcome := "report_failed"
	r.reportOK.Set(0)
	if stats.ReportGenerated {
		outcome = "ok"
		r.reportOK.Set(1)
	}
	r.runsTotal.WithLabelValues(outcome).Inc()

	if r.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
