package corpus

import (
	"log/slog"
	"sort"

	"MoodScanner/internal/domain"
)

// Fragment is one source's contribution to the unified corpus.
type Fragment struct {
	Source   domain.Source
	Articles []domain.Article
	Comments []domain.Comment
	Emotions []domain.EmotionReaction
	Posts    []domain.SocialPost
	Skipped  int
}

// Corpus is the unified entity graph across all sources for one run.
type Corpus struct {
	Articles []domain.Article
	Comments []domain.Comment
	Emotions []domain.EmotionReaction
	Posts    []domain.SocialPost
}

// BuildReport counts what unification had to discard.
type BuildReport struct {
	SkippedRows       int
	DuplicateArticles int
	OrphanComments    int
	OrphanEmotions    int
}

type emotionKey struct {
	article domain.ArticleKey
	emotion string
}

// Build merges fragments into one corpus. Duplicate article keys keep the
// first occurrence; comments and reactions pointing at unknown articles are
// dropped; reaction counts sharing (article, emotion) are summed.
func Build(logger *slog.Logger, fragments ...Fragment) (Corpus, BuildReport) {
	var (
		out    Corpus
		report BuildReport
		known  = map[domain.ArticleKey]struct{}{}
	)

	for _, frag := range fragments {
		report.SkippedRows += frag.Skipped
		for _, art := range frag.Articles {
			if _, dup := known[art.Key]; dup {
				report.DuplicateArticles++
				warn(logger, "duplicate article dropped", "article", art.Key.String())
				continue
			}
			known[art.Key] = struct{}{}
			out.Articles = append(out.Articles, art)
		}
	}

	emotionTotals := map[emotionKey]int64{}
	var emotionOrder []emotionKey
	for _, frag := range fragments {
		for _, c := range frag.Comments {
			if _, ok := known[c.Article]; !ok {
				report.OrphanComments++
				warn(logger, "comment references unknown article", "article", c.Article.String())
				continue
			}
			out.Comments = append(out.Comments, c)
		}
		for _, e := range frag.Emotions {
			if _, ok := known[e.Article]; !ok {
				report.OrphanEmotions++
				warn(logger, "reaction references unknown article", "article", e.Article.String())
				continue
			}
			key := emotionKey{article: e.Article, emotion: e.Emotion}
			if _, seen := emotionTotals[key]; !seen {
				emotionOrder = append(emotionOrder, key)
			}
			emotionTotals[key] += e.Count
		}
	}
	for _, key := range emotionOrder {
		out.Emotions = append(out.Emotions, domain.EmotionReaction{
			Article: key.article,
			Emotion: key.emotion,
			Count:   emotionTotals[key],
		})
	}

	out.Posts = mergePosts(fragments)
	return out, report
}

func mergePosts(fragments []Fragment) []domain.SocialPost {
	byURL := map[string]int{}
	var posts []domain.SocialPost
	for _, frag := range fragments {
		for _, post := range frag.Posts {
			if idx, ok := byURL[post.URL]; ok {
				merged := &posts[idx]
				if merged.Caption == "" {
					merged.Caption = post.Caption
				}
				if merged.Account == "" {
					merged.Account = post.Account
				}
				merged.Comments = append(merged.Comments, post.Comments...)
				continue
			}
			byURL[post.URL] = len(posts)
			post.Comments = append([]domain.Comment(nil), post.Comments...)
			posts = append(posts, post)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].URL < posts[j].URL })
	return posts
}

// AllComments returns article comments followed by post comments.
func (c Corpus) AllComments() []domain.Comment {
	all := make([]domain.Comment, 0, len(c.Comments))
	all = append(all, c.Comments...)
	for _, post := range c.Posts {
		all = append(all, post.Comments...)
	}
	return all
}

func warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
