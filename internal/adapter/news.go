package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"MoodScanner/internal/corpus"
	"MoodScanner/internal/domain"
	"MoodScanner/internal/ports"
	"MoodScanner/internal/textnorm"
)

// Gazeta adapts the gazeta schema: articles plus comments with author and votes.
type Gazeta struct {
	reader ports.RawReader
	logger *slog.Logger
}

var _ Adapter = (*Gazeta)(nil)

// NewGazeta wires a raw reader for the gazeta database.
func NewGazeta(reader ports.RawReader, logger *slog.Logger) *Gazeta {
	return &Gazeta{reader: reader, logger: logger}
}

// Source identifies the adapter inside the registry.
func (g *Gazeta) Source() domain.Source {
	return domain.SourceGazeta
}

// Load reads articles and comments and maps them to canonical entities.
func (g *Gazeta) Load(ctx context.Context) (corpus.Fragment, error) {
	articles, err := g.reader.Articles(ctx)
	if err != nil {
		return corpus.Fragment{}, fmt.Errorf("load gazeta articles: %w", err)
	}
	comments, err := g.reader.Comments(ctx)
	if err != nil {
		return corpus.Fragment{}, fmt.Errorf("load gazeta comments: %w", err)
	}

	frag := corpus.Fragment{Source: domain.SourceGazeta}
	mapArticles(&frag, articles, g.logger)
	mapComments(&frag, comments, g.logger)
	return frag, nil
}

// Podrobno adapts the podrobno schema: articles, plain comments and reaction tallies.
type Podrobno struct {
	reader ports.RawReader
	logger *slog.Logger
}

var _ Adapter = (*Podrobno)(nil)

// NewPodrobno wires a raw reader for the podrobno database.
func NewPodrobno(reader ports.RawReader, logger *slog.Logger) *Podrobno {
	return &Podrobno{reader: reader, logger: logger}
}

// Source identifies the adapter inside the registry.
func (p *Podrobno) Source() domain.Source {
	return domain.SourcePodrobno
}

// Load reads articles, comments and emotions.
func (p *Podrobno) Load(ctx context.Context) (corpus.Fragment, error) {
	articles, err := p.reader.Articles(ctx)
	if err != nil {
		return corpus.Fragment{}, fmt.Errorf("load podrobno articles: %w", err)
	}
	comments, err := p.reader.Comments(ctx)
	if err != nil {
		return corpus.Fragment{}, fmt.Errorf("load podrobno comments: %w", err)
	}
	emotions, err := p.reader.Emotions(ctx)
	if err != nil {
		return corpus.Fragment{}, fmt.Errorf("load podrobno emotions: %w", err)
	}

	frag := corpus.Fragment{Source: domain.SourcePodrobno}
	mapArticles(&frag, articles, p.logger)
	mapComments(&frag, comments, p.logger)
	mapEmotions(&frag, emotions, p.logger)
	return frag, nil
}

func mapArticles(frag *corpus.Fragment, rows []domain.RawArticle, logger *slog.Logger) {
	for _, row := range rows {
		if row.ID <= 0 {
			frag.Skipped++
			skip(logger, frag.Source, "article without id", "url", row.URL.String)
			continue
		}
		frag.Articles = append(frag.Articles, domain.Article{
			Key:   domain.ArticleKey{Source: frag.Source, LocalID: row.ID},
			URL:   strings.TrimSpace(row.URL.String),
			Title: strings.TrimSpace(row.Title.String),
			Body:  flattenHTML(row.Content.String),
		})
	}
}

func mapComments(frag *corpus.Fragment, rows []domain.RawComment, logger *slog.Logger) {
	for _, row := range rows {
		if !row.ArticleID.Valid || row.ArticleID.Int64 <= 0 {
			frag.Skipped++
			skip(logger, frag.Source, "comment without article", "comment_id", row.ID)
			continue
		}
		frag.Comments = append(frag.Comments, domain.Comment{
			Article:   domain.ArticleKey{Source: frag.Source, LocalID: row.ArticleID.Int64},
			Author:    row.User.String,
			RawText:   row.Text.String,
			CleanText: textnorm.Normalize(row.Text.String),
			Upvotes:   row.Upvotes.Int64,
			Downvotes: row.Downvotes.Int64,
		})
	}
}

func mapEmotions(frag *corpus.Fragment, rows []domain.RawEmotion, logger *slog.Logger) {
	for _, row := range rows {
		name := strings.TrimSpace(row.Emotion.String)
		switch {
		case !row.ArticleID.Valid || row.ArticleID.Int64 <= 0:
			frag.Skipped++
			skip(logger, frag.Source, "reaction without article", "emotion", name)
			continue
		case name == "":
			frag.Skipped++
			skip(logger, frag.Source, "reaction without name", "article_id", row.ArticleID.Int64)
			continue
		case row.Count.Int64 < 0:
			frag.Skipped++
			skip(logger, frag.Source, "negative reaction count", "article_id", row.ArticleID.Int64, "count", row.Count.Int64)
			continue
		}
		frag.Emotions = append(frag.Emotions, domain.EmotionReaction{
			Article: domain.ArticleKey{Source: frag.Source, LocalID: row.ArticleID.Int64},
			Emotion: name,
			Count:   row.Count.Int64,
		})
	}
}

// flattenHTML returns readable text for bodies stored as markup; plain text passes through.
func flattenHTML(content string) string {
	content = strings.TrimSpace(content)
	if !strings.Contains(content, "<") || !strings.Contains(content, ">") {
		return content
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func skip(logger *slog.Logger, source domain.Source, msg string, args ...any) {
	if logger != nil {
		logger.Warn("skip row: "+msg, append([]any{"source", source}, args...)...)
	}
}
