package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"MoodScanner/internal/adapter"
	"MoodScanner/internal/corpus"
	"MoodScanner/internal/domain"
	"MoodScanner/internal/ports"
	"MoodScanner/internal/relevance"
	"MoodScanner/internal/report"
)

const (
	maxPostSummaryComments    = 50
	maxArticleSummaryComments = 5
)

// SummarizerDeps wires the stores and writers used to build summary pools.
type SummarizerDeps struct {
	Sources       *adapter.Registry
	Relevance     *relevance.Filter
	PostWriter    ports.ReportWriter
	ArticleWriter ports.ReportWriter
	PostStore     ports.SummaryStore
	ArticleStore  ports.SummaryStore
	Seed          int64
	Logger        *slog.Logger
}

// Summarizer precomputes the post and article summary pools that ground the report.
type Summarizer struct {
	deps SummarizerDeps
}

// SummaryResult counts what one summarization pass produced.
type SummaryResult struct {
	Posts    int
	Articles int
	Failed   int
}

// NewSummarizer constructs the summarization use case.
func NewSummarizer(deps SummarizerDeps) *Summarizer {
	if deps.Sources == nil {
		deps.Sources = adapter.NewRegistry()
	}
	if deps.Relevance == nil {
		deps.Relevance = relevance.NewFilter(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Seed == 0 {
		deps.Seed = report.DefaultSeed
	}
	return &Summarizer{deps: deps}
}

// Run summarizes every relevant post and every article with comments, then
// replaces the stored pools. A failed item is logged and left out.
func (s *Summarizer) Run(ctx context.Context) (SummaryResult, error) {
	var res SummaryResult
	logger := s.deps.Logger.With("component", "summarizer")

	fragments, _ := s.deps.Sources.LoadAll(ctx, logger)
	unified, _ := corpus.Build(logger, fragments...)

	if s.deps.PostWriter != nil && s.deps.PostStore != nil {
		posts, _ := s.deps.Relevance.Apply(unified.Posts)
		summaries := make([]domain.Summary, 0, len(posts))
		for _, post := range posts {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			text, err := s.deps.PostWriter.Generate(ctx, postSummaryPrompt(post, s.deps.Seed))
			if err != nil {
				res.Failed++
				logger.Warn("post summary failed", "post_url", post.URL, "error", err)
				continue
			}
			summaries = append(summaries, domain.Summary{
				Key:          post.URL,
				Source:       domain.SourceInstagram,
				Title:        post.Caption,
				CommentCount: len(post.Comments),
				Text:         strings.TrimSpace(text),
			})
		}
		if err := s.deps.PostStore.ReplaceSummaries(ctx, summaries); err != nil {
			return res, fmt.Errorf("store post summaries: %w", err)
		}
		res.Posts = len(summaries)
	}

	if s.deps.ArticleWriter != nil && s.deps.ArticleStore != nil {
		byArticle := map[domain.ArticleKey][]string{}
		for _, c := range unified.Comments {
			if text := strings.TrimSpace(c.RawText); text != "" {
				byArticle[c.Article] = append(byArticle[c.Article], text)
			}
		}

		var summaries []domain.Summary
		for _, article := range unified.Articles {
			comments := byArticle[article.Key]
			if strings.TrimSpace(article.Body) == "" || len(comments) == 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return res, err
			}
			text, err := s.deps.ArticleWriter.Generate(ctx, articleSummaryPrompt(article, comments))
			if err != nil {
				res.Failed++
				logger.Warn("article summary failed", "article", article.Key.String(), "error", err)
				continue
			}
			summaries = append(summaries, domain.Summary{
				Key:          article.Key.String(),
				Source:       article.Key.Source,
				Title:        article.Title,
				CommentCount: len(comments),
				Text:         strings.TrimSpace(text),
			})
		}
		if err := s.deps.ArticleStore.ReplaceSummaries(ctx, summaries); err != nil {
			return res, fmt.Errorf("store article summaries: %w", err)
		}
		res.Articles = len(summaries)
	}

	logger.Info("summaries refreshed", "posts", res.Posts, "articles", res.Articles, "failed", res.Failed)
	return res, nil
}

func postSummaryPrompt(post domain.SocialPost, seed int64) string {
	comments := make([]string, 0, len(post.Comments))
	for _, c := range post.Comments {
		if text := strings.TrimSpace(c.RawText); text != "" {
			comments = append(comments, text)
		}
	}
	total := len(comments)
	if total > maxPostSummaryComments {
		comments = report.Sample(comments, maxPostSummaryComments, seed)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Пост:\n%s\n\n", strings.TrimSpace(post.Caption))
	fmt.Fprintf(&b, "Комментарии (%d):\n", total)
	for i, c := range comments {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	b.WriteString("\nЗадача:\n")
	b.WriteString("На основе содержания поста и комментариев составь краткий аналитический обзор на русском языке. Укажи:\n")
	b.WriteString("- Основную тему поста\n")
	b.WriteString("- Общее настроение и реакцию людей\n")
	b.WriteString("- Конкретные примеры или тенденции, если они есть\n\n")
	b.WriteString("Будь прямолинеен в своих выводах и заключениях.")
	return b.String()
}

func articleSummaryPrompt(article domain.Article, comments []string) string {
	if len(comments) > maxArticleSummaryComments {
		comments = comments[:maxArticleSummaryComments]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "СТАТЬЯ:\n%s\n\n", strings.TrimSpace(article.Body))
	fmt.Fprintf(&b, "КОММЕНТАРИИ:\n%s\n\n", strings.Join(comments, "\n"))
	b.WriteString("Сформулируй краткое содержание статьи и основных реакций в комментариях. Ответ должен быть на русском языке.")
	return b.String()
}
