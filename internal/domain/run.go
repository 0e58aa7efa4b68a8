package domain

import "time"

// RunStats summarizes one batch run for metrics and logs.
type RunStats struct {
	RunID               string
	Started             time.Time
	Duration            time.Duration
	Moods               map[Mood]int
	PostSentiments      map[Sentiment]int
	Comments            int
	ClassifierFallbacks int
	SkippedRows         int
	ExcludedPosts       int
	FailedSources       int
	ReportGenerated     bool
}
