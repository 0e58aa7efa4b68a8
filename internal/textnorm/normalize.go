package textnorm

import (
	"regexp"
	"strings"
)

var (
	noiseExpr      = regexp.MustCompile(`<.*?>|@[\p{L}\p{N}_]+|https?://\S+|www\.\S+`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// Normalize strips HTML tags, @mentions and URLs, then collapses whitespace.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := noiseExpr.ReplaceAllString(raw, "")
	text = whitespaceExpr.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizePtr treats a missing value as empty text.
func NormalizePtr(raw *string) string {
	if raw == nil {
		return ""
	}
	return Normalize(*raw)
}
