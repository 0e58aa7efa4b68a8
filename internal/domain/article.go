package domain

import (
	"fmt"
	"strconv"
)

// Source tags the platform an entity was scraped from.
type Source string

const (
	SourceGazeta    Source = "gazeta"
	SourcePodrobno  Source = "podrobno"
	SourceInstagram Source = "instagram"
)

// IsNews reports whether the source publishes articles (as opposed to social posts).
func (s Source) IsNews() bool {
	return s == SourceGazeta || s == SourcePodrobno
}

// ArticleKey identifies an article across all sources. Two sources may reuse
// the same local id; the source tag keeps the keys apart.
type ArticleKey struct {
	Source  Source
	LocalID int64
}

// String renders the key for logs and persisted artifacts.
func (k ArticleKey) String() string {
	return string(k.Source) + ":" + strconv.FormatInt(k.LocalID, 10)
}

// IsZero reports whether the key is unset.
func (k ArticleKey) IsZero() bool {
	return k.Source == "" && k.LocalID == 0
}

// Article is a news item with its computed mood.
type Article struct {
	Key   ArticleKey
	URL   string
	Title string
	Body  string
	Mood  Mood
}

// Mood is the final label assigned to an article.
type Mood string

const (
	MoodPositive  Mood = "positive"
	MoodNeutral   Mood = "neutral"
	MoodNegative  Mood = "negative"
	MoodNoComment Mood = "no-comment"
)

// Moods lists every mood in histogram order.
var Moods = []Mood{MoodPositive, MoodNeutral, MoodNegative, MoodNoComment}

// MoodFromSentiment lifts a sentiment label into the mood space.
func MoodFromSentiment(s Sentiment) Mood {
	switch s {
	case Positive:
		return MoodPositive
	case Negative:
		return MoodNegative
	default:
		return MoodNeutral
	}
}

// ParseMood accepts the persisted mood spellings, including the legacy "no comment".
func ParseMood(value string) (Mood, error) {
	switch value {
	case "positive":
		return MoodPositive, nil
	case "neutral":
		return MoodNeutral, nil
	case "negative":
		return MoodNegative, nil
	case "no-comment", "no comment":
		return MoodNoComment, nil
	default:
		return "", fmt.Errorf("unknown mood %q", value)
	}
}
