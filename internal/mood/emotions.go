package mood

import "MoodScanner/internal/domain"

// emotionSentiment maps reaction labels shown by podrobno (and their English
// equivalents) to a sentiment bucket. Unknown labels carry no signal.
var emotionSentiment = map[string]domain.Sentiment{
	"Нравится":      domain.Positive,
	"Восхищение":    domain.Positive,
	"Радость":       domain.Positive,
	"Удивление":     domain.Neutral,
	"Подавленность": domain.Negative,
	"Грусть":        domain.Negative,
	"Разочарование": domain.Negative,
	"Не нравится":   domain.Negative,

	"Like":           domain.Positive,
	"Admiration":     domain.Positive,
	"Joy":            domain.Positive,
	"Surprise":       domain.Neutral,
	"Depression":     domain.Negative,
	"Sadness":        domain.Negative,
	"Disappointment": domain.Negative,
	"Dislike":        domain.Negative,
}

// EmotionSentiment looks up the bucket for a reaction label.
func EmotionSentiment(name string) (domain.Sentiment, bool) {
	s, ok := emotionSentiment[name]
	return s, ok
}

// dominantOrder is the tie-break order for reaction buckets: the first
// bucket holding the maximal count wins.
var dominantOrder = []domain.Sentiment{domain.Positive, domain.Neutral, domain.Negative}

type bucketTotals map[domain.Sentiment]int64

// dominant returns the bucket with the highest summed count. It reports false
// when no mapped reaction was counted at all.
func (b bucketTotals) dominant() (domain.Sentiment, bool) {
	var (
		best     domain.Sentiment
		bestSum  int64 = -1
		anyCount bool
	)
	for _, s := range dominantOrder {
		sum := b[s]
		if sum > 0 {
			anyCount = true
		}
		if sum > bestSum {
			best, bestSum = s, sum
		}
	}
	return best, anyCount
}

// dominantSentiments sums reaction counts per (article, bucket) and picks the
// dominant bucket for each article that has any mapped reactions.
func dominantSentiments(reactions []domain.EmotionReaction) map[domain.ArticleKey]domain.Sentiment {
	totals := map[domain.ArticleKey]bucketTotals{}
	for _, r := range reactions {
		s, ok := EmotionSentiment(r.Emotion)
		if !ok || r.Count < 0 {
			continue
		}
		buckets := totals[r.Article]
		if buckets == nil {
			buckets = bucketTotals{}
			totals[r.Article] = buckets
		}
		buckets[s] += r.Count
	}

	out := make(map[domain.ArticleKey]domain.Sentiment, len(totals))
	for key, buckets := range totals {
		if s, ok := buckets.dominant(); ok {
			out[key] = s
		}
	}
	return out
}
