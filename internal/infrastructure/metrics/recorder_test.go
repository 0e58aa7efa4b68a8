package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"MoodScanner/internal/domain"
)

func TestRecordRunWritesTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "moodscanner.prom")
	r := NewRecorder(path)

	stats := domain.RunStats{
		RunID:               "run-1",
		Started:             time.Unix(1700000000, 0),
		Duration:            3 * time.Second,
		Moods:               map[domain.Mood]int{domain.MoodPositive: 2, domain.MoodNoComment: 5},
		PostSentiments:      map[domain.Sentiment]int{domain.Negative: 1},
		Comments:            40,
		ClassifierFallbacks: 2,
		ReportGenerated:     true,
	}
	if err := r.RecordRun(context.Background(), stats); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := testutil.ToFloat64(r.articles.WithLabelValues("no-comment")); got != 5 {
		t.Fatalf("expected 5 no-comment articles, got %v", got)
	}
	if got := testutil.ToFloat64(r.fallbacks); got != 2 {
		t.Fatalf("expected 2 fallbacks, got %v", got)
	}
	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected one ok run, got %v", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		`moodscanner_articles{mood="positive"} 2`,
		`moodscanner_posts{sentiment="negative"} 1`,
		`moodscanner_report_generated 1`,
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("textfile missing %q:\n%s", want, raw)
		}
	}
}

func TestRecordRunWithoutPath(t *testing.T) {
	t.Parallel()

	r := NewRecorder("")
	if err := r.RecordRun(context.Background(), domain.RunStats{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues("report_failed")); got != 1 {
		t.Fatalf("expected failed run counted, got %v", got)
	}
}
