package domain

import "fmt"

// Sentiment is the three-class label produced by the classifier.
// The zero value is not a valid label.
type Sentiment int

const (
	Negative Sentiment = iota + 1
	Neutral
	Positive
)

// Sentiments lists labels in enum order.
var Sentiments = []Sentiment{Negative, Neutral, Positive}

func (s Sentiment) String() string {
	switch s {
	case Negative:
		return "negative"
	case Neutral:
		return "neutral"
	case Positive:
		return "positive"
	default:
		return fmt.Sprintf("sentiment(%d)", int(s))
	}
}

// Index returns the model label index for s.
func (s Sentiment) Index() int {
	return int(s) - 1
}

// Valid reports whether s is one of the three known labels.
func (s Sentiment) Valid() bool {
	return s >= Negative && s <= Positive
}

// SentimentFromIndex maps a model label index (0 negative, 1 neutral,
// 2 positive) to a sentiment.
func SentimentFromIndex(idx int) (Sentiment, error) {
	s := Sentiment(idx + 1)
	if !s.Valid() {
		return Neutral, fmt.Errorf("label index %d out of range", idx)
	}
	return s, nil
}

// ParseSentiment parses the lower-case label spelling.
func ParseSentiment(value string) (Sentiment, error) {
	switch value {
	case "negative":
		return Negative, nil
	case "neutral":
		return Neutral, nil
	case "positive":
		return Positive, nil
	default:
		return Neutral, fmt.Errorf("unknown sentiment %q", value)
	}
}

// Classification is the outcome of classifying one piece of text.
// A failed classification keeps its cause instead of a placeholder label.
type Classification struct {
	Sentiment Sentiment
	Err       error
}

// Failed reports whether the classifier could not label the text.
func (c Classification) Failed() bool {
	return c.Err != nil
}

// Label resolves the classification to a usable label; failures count as neutral.
func (c Classification) Label() Sentiment {
	if c.Err != nil || !c.Sentiment.Valid() {
		return Neutral
	}
	return c.Sentiment
}
