package mood

import "MoodScanner/internal/domain"

// Input holds the unified, already-classified collections for one run.
type Input struct {
	Articles []domain.Article
	Comments []domain.Comment
	Emotions []domain.EmotionReaction
	Posts    []domain.SocialPost
}

// Stats summarizes how labels were reached.
type Stats struct {
	ArticlesWithComments int
	ArticlesOverridden   int
	ArticlesDefaulted    int
	ClassifierFallbacks  int
	IgnoredComments      int
}

// Output is the annotated result of one aggregation.
type Output struct {
	// Articles mirrors the input order with Mood populated.
	Articles []domain.Article
	// PostSentiment holds the majority comment label per post url. Posts
	// without comments are absent.
	PostSentiment map[string]domain.Sentiment
	// Dominant holds the reaction-derived sentiment for articles that had one.
	Dominant map[domain.ArticleKey]domain.Sentiment
	Stats    Stats
}

// Histogram counts articles per mood; every mood is present.
func (o Output) Histogram() map[domain.Mood]int {
	hist := make(map[domain.Mood]int, len(domain.Moods))
	for _, m := range domain.Moods {
		hist[m] = 0
	}
	for _, a := range o.Articles {
		hist[a.Mood]++
	}
	return hist
}

// Aggregate computes article moods and per-post sentiment. It performs no
// I/O, never mutates its input, and returns the same output for the same input.
func Aggregate(in Input) Output {
	out := Output{
		Articles:      make([]domain.Article, len(in.Articles)),
		PostSentiment: map[string]domain.Sentiment{},
	}

	known := make(map[domain.ArticleKey]struct{}, len(in.Articles))
	for _, a := range in.Articles {
		known[a.Key] = struct{}{}
	}

	// Step 1: comment votes per article.
	tallies := map[domain.ArticleKey]*Tally{}
	for _, c := range in.Comments {
		if c.OnPost() {
			out.Stats.IgnoredComments++
			continue
		}
		if _, ok := known[c.Article]; !ok {
			out.Stats.IgnoredComments++
			continue
		}
		if c.Classification.Failed() {
			out.Stats.ClassifierFallbacks++
		}
		t := tallies[c.Article]
		if t == nil {
			t = &Tally{}
			tallies[c.Article] = t
		}
		t.Add(c.Classification.Label())
	}

	// Step 2: reaction override.
	out.Dominant = dominantSentiments(in.Emotions)

	// Step 3: default fill.
	for i, a := range in.Articles {
		a.Mood = domain.MoodNoComment
		if t, ok := tallies[a.Key]; ok {
			a.Mood = domain.MoodFromSentiment(t.Vote())
			out.Stats.ArticlesWithComments++
		}
		if s, ok := out.Dominant[a.Key]; ok {
			a.Mood = domain.MoodFromSentiment(s)
			out.Stats.ArticlesOverridden++
		}
		if a.Mood == domain.MoodNoComment {
			out.Stats.ArticlesDefaulted++
		}
		out.Articles[i] = a
	}

	// Step 4: per-post mode.
	for _, post := range in.Posts {
		var t Tally
		for _, c := range post.Comments {
			if c.Classification.Failed() {
				out.Stats.ClassifierFallbacks++
			}
			t.Add(c.Classification.Label())
		}
		if t.Total() > 0 {
			out.PostSentiment[post.URL] = t.Mode()
		}
	}

	return out
}
