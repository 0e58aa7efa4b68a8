package relevance

import (
	"strings"

	"MoodScanner/internal/domain"
)

// DefaultKeywords covers governance, economy, safety and rights topics in
// English, Russian and Uzbek (Latin script).
var DefaultKeywords = []string{
	// English
	"uzbekistan", "tashkent", "government", "mirziyoyev", "reform", "tax", "taxes",
	"economy", "salary", "price", "healthcare", "education", "internet", "protest",
	"explosion", "accident", "fire", "rights", "law", "election", "police", "corruption",
	"job", "jobs", "employee", "employment", "tariffs", "tarif",

	// Russian
	"Узбекистан", "Ташкент", "правительство", "Мирзиёев", "реформа", "налог", "налоги",
	"экономика", "зарплата", "цена", "здравоохранение", "образование", "интернет", "протест",
	"взрыв", "авария", "пожар", "права", "закон", "выборы", "полиция", "коррупция",
	"работа", "рабочие места", "работник", "занятость", "тарифы", "тариф",

	// Uzbek
	"o'zbekiston", "toshkent", "hukumat", "islohot", "soliq", "soliqlar",
	"iqtisod", "maosh", "narx", "sog'liqni saqlash", "ta'lim", "norozilik",
	"portlash", "avariya", "yong'in", "huquqlar", "qonun", "saylov", "politsiya",
	"korruptsiya", "ish", "xodim", "bandlik", "tariflar",
}

// IsRelevant reports whether caption contains at least one keyword.
// Matching is case-sensitive and substring based, so "ish" also matches "kishi".
func IsRelevant(caption string, keywords map[string]struct{}) bool {
	for kw := range keywords {
		if kw != "" && strings.Contains(caption, kw) {
			return true
		}
	}
	return false
}

// Filter gates social posts by caption keywords.
type Filter struct {
	keywords map[string]struct{}
}

// NewFilter builds a filter; an empty list falls back to DefaultKeywords.
func NewFilter(keywords []string) *Filter {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			set[kw] = struct{}{}
		}
	}
	return &Filter{keywords: set}
}

// Keywords returns the size of the deduplicated keyword set.
func (f *Filter) Keywords() int {
	return len(f.keywords)
}

// Apply keeps relevant posts and reports how many were excluded. Excluded
// posts take their comments with them.
func (f *Filter) Apply(posts []domain.SocialPost) ([]domain.SocialPost, int) {
	kept := make([]domain.SocialPost, 0, len(posts))
	for _, post := range posts {
		if IsRelevant(post.Caption, f.keywords) {
			kept = append(kept, post)
		}
	}
	return kept, len(posts) - len(kept)
}
