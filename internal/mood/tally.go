package mood

import "MoodScanner/internal/domain"

// Tally counts comment labels for one article or post.
type Tally struct {
	Positive int
	Neutral  int
	Negative int
}

// Add records one label.
func (t *Tally) Add(s domain.Sentiment) {
	switch s {
	case domain.Positive:
		t.Positive++
	case domain.Negative:
		t.Negative++
	default:
		t.Neutral++
	}
}

// Total is the number of recorded labels.
func (t Tally) Total() int {
	return t.Positive + t.Neutral + t.Negative
}

// Vote applies plurality with neutral bias: positive or negative win only
// with a strict lead over both other counts; every other outcome is neutral.
func (t Tally) Vote() domain.Sentiment {
	switch {
	case t.Positive > t.Neutral && t.Positive > t.Negative:
		return domain.Positive
	case t.Negative > t.Neutral && t.Negative > t.Positive:
		return domain.Negative
	default:
		return domain.Neutral
	}
}

// Mode returns the most frequent label. Ties go to the earliest label in
// enum order (negative, neutral, positive).
func (t Tally) Mode() domain.Sentiment {
	best, bestCount := domain.Negative, t.Negative
	if t.Neutral > bestCount {
		best, bestCount = domain.Neutral, t.Neutral
	}
	if t.Positive > bestCount {
		best = domain.Positive
	}
	return best
}
