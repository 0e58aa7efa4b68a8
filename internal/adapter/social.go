package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"MoodScanner/internal/corpus"
	"MoodScanner/internal/domain"
	"MoodScanner/internal/ports"
	"MoodScanner/internal/textnorm"
)

const minCommentRunes = 13

var (
	symbolExpr      = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	mentionOnlyExpr = regexp.MustCompile(`^(?:@[\p{L}\p{N}_]+\s*)+$`)
)

// Instagram adapts flat comment rows into posts with their comments.
type Instagram struct {
	reader ports.RawReader
	logger *slog.Logger
}

var _ Adapter = (*Instagram)(nil)

// NewInstagram wires a raw reader for the social-platform database.
func NewInstagram(reader ports.RawReader, logger *slog.Logger) *Instagram {
	return &Instagram{reader: reader, logger: logger}
}

// Source identifies the adapter inside the registry.
func (i *Instagram) Source() domain.Source {
	return domain.SourceInstagram
}

// Load groups comment rows by post url.
func (i *Instagram) Load(ctx context.Context) (corpus.Fragment, error) {
	rows, err := i.reader.SocialComments(ctx)
	if err != nil {
		return corpus.Fragment{}, fmt.Errorf("load instagram comments: %w", err)
	}

	frag := corpus.Fragment{Source: domain.SourceInstagram}
	index := map[string]int{}
	lowSignal := 0

	for _, row := range rows {
		url := strings.TrimSpace(row.PostURL.String)
		if url == "" {
			frag.Skipped++
			skip(i.logger, frag.Source, "comment without post url", "comment_id", row.ID)
			continue
		}

		idx, ok := index[url]
		if !ok {
			idx = len(frag.Posts)
			index[url] = idx
			frag.Posts = append(frag.Posts, domain.SocialPost{
				URL:     url,
				Caption: row.PostCaption.String,
				Account: row.AccountName.String,
			})
		}

		text := strings.TrimSpace(row.Comment.String)
		if IsLowSignal(text) {
			lowSignal++
			continue
		}

		frag.Posts[idx].Comments = append(frag.Posts[idx].Comments, domain.Comment{
			PostURL:   url,
			Author:    row.Username.String,
			RawText:   text,
			CleanText: textnorm.Normalize(text),
		})
	}

	if i.logger != nil && lowSignal > 0 {
		i.logger.Debug("dropped low-signal comments", "count", lowSignal)
	}
	return frag, nil
}

// IsLowSignal reports comments that carry no classifiable opinion: emoji or
// punctuation only, too short, or nothing but @mentions.
func IsLowSignal(text string) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minCommentRunes {
		return true
	}
	if strings.Join(strings.Fields(symbolExpr.ReplaceAllString(text, "")), "") == "" {
		return true
	}
	return mentionOnlyExpr.MatchString(text)
}
