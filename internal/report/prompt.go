package report

import (
	"fmt"
	"sort"
	"strings"

	"MoodScanner/internal/domain"
)

const (
	DefaultMaxSummaries = 5
	DefaultMaxComments  = 10
	topEmotions         = 5

	placeholderArticleSummariesMissing = "Сводки по статьям отсутствуют."
	placeholderArticleSummariesEmpty   = "Нет сводок по статьям."
	placeholderPostSummariesMissing    = "Instagram-данные отсутствуют."
	placeholderPostSummariesEmpty      = "Нет Instagram-сводок."
	placeholderEmotions                = "(эмоции не определены)"
	placeholderPosts                   = "Нет данных о реакции на посты."
	placeholderComments                = "Нет комментариев."
)

// Input carries everything the prompt is grounded on. A nil summary pool
// means the pool is unavailable; an empty non-nil pool means it had no rows.
type Input struct {
	Articles         []domain.Article
	PostSentiment    map[string]domain.Sentiment
	PostCaptions     map[string]string
	Dominant         map[domain.ArticleKey]domain.Sentiment
	ArticleSummaries []string
	PostSummaries    []string
	Comments         []string

	Seed         int64
	MaxSummaries int
	MaxComments  int
}

// Build renders the report prompt. Its length is bounded by the sampling caps
// on summaries and comments plus one line per post.
func Build(in Input) string {
	if in.MaxSummaries <= 0 {
		in.MaxSummaries = DefaultMaxSummaries
	}
	if in.MaxComments <= 0 {
		in.MaxComments = DefaultMaxComments
	}

	hist := histogram(in.Articles)

	var b strings.Builder
	b.WriteString("Вы — аналитик Узбекского СМИ про Узбекистан, изучающий общественное мнение по поводу новостей и комментариев читателей на русском языке, поэтому используйте только русский язык.\n\n")
	b.WriteString("Напишите **аналитический отчет на русском языке** для представителей государства на основе следующих данных.\n\n")

	b.WriteString("Сводка:\n")
	fmt.Fprintf(&b, "- Количество проанализированных статей: %d\n", len(in.Articles))
	b.WriteString("- Распределение настроения (по статьям):\n")
	fmt.Fprintf(&b, "    - Позитивное: %d\n", hist[domain.MoodPositive])
	fmt.Fprintf(&b, "    - Нейтральное: %d\n", hist[domain.MoodNeutral])
	fmt.Fprintf(&b, "    - Негативное: %d\n", hist[domain.MoodNegative])
	fmt.Fprintf(&b, "    - Без комментариев: %d\n", hist[domain.MoodNoComment])
	fmt.Fprintf(&b, "- Преобладающие эмоции читателей: %s\n\n", strings.Join(dominantEmotions(in.Dominant), ", "))

	b.WriteString("Краткие аналитические сводки по постам Instagram:\n")
	b.WriteString(summaryBlock(in.PostSummaries, in.MaxSummaries, in.Seed, placeholderPostSummariesMissing, placeholderPostSummariesEmpty))
	b.WriteString("\n\n")

	b.WriteString("Краткие аналитические сводки по статьям СМИ:\n")
	b.WriteString(summaryBlock(in.ArticleSummaries, in.MaxSummaries, in.Seed, placeholderArticleSummariesMissing, placeholderArticleSummariesEmpty))
	b.WriteString("\n\n")

	b.WriteString("Реакция на посты:\n")
	b.WriteString(postListing(in.PostSentiment, in.PostCaptions))
	b.WriteString("\n\n")

	b.WriteString("Примеры комментариев читателей:\n")
	b.WriteString(commentBlock(in.Comments, in.MaxComments, in.Seed))
	b.WriteString("\n\n")

	b.WriteString("Задача:\n")
	b.WriteString("Составьте профессиональный и связный отчет на **русском** языке, в котором вы проанализируете общее настроение населения по отношению к текущим новостям. ")
	b.WriteString("Упомяните эмоциональные тенденции, общие темы и возможные причины недовольства или поддержки. ")
	b.WriteString("При необходимости переформулируйте или редко процитируйте уместные пользовательские комментарии.")

	return b.String()
}

func histogram(articles []domain.Article) map[domain.Mood]int {
	hist := map[domain.Mood]int{}
	for _, a := range articles {
		hist[a.Mood]++
	}
	return hist
}

// dominantEmotions ranks reaction-derived sentiments by how many articles they
// dominate, most frequent first.
func dominantEmotions(dominant map[domain.ArticleKey]domain.Sentiment) []string {
	if len(dominant) == 0 {
		return []string{placeholderEmotions}
	}
	counts := map[domain.Sentiment]int{}
	for _, s := range dominant {
		counts[s]++
	}
	labels := make([]domain.Sentiment, 0, len(counts))
	for s := range counts {
		labels = append(labels, s)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] > labels[j]
	})
	if len(labels) > topEmotions {
		labels = labels[:topEmotions]
	}
	out := make([]string, len(labels))
	for i, s := range labels {
		out[i] = fmt.Sprintf("%s (%d)", s, counts[s])
	}
	return out
}

func summaryBlock(pool []string, limit int, seed int64, missing, empty string) string {
	if pool == nil {
		return missing
	}
	picked := Sample(pool, limit, seed)
	if len(picked) == 0 {
		return empty
	}
	lines := make([]string, len(picked))
	for i, s := range picked {
		lines[i] = "- " + s
	}
	return strings.Join(lines, "\n\n")
}

func postListing(sentiments map[string]domain.Sentiment, captions map[string]string) string {
	if len(sentiments) == 0 {
		return placeholderPosts
	}
	urls := make([]string, 0, len(sentiments))
	for url := range sentiments {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	lines := make([]string, len(urls))
	for i, url := range urls {
		caption := strings.Join(strings.Fields(captions[url]), " ")
		if caption == "" {
			caption = url
		}
		lines[i] = fmt.Sprintf("%d. Этот пост: %s, вызвал такую реакцию: %s", i+1, caption, sentiments[url])
	}
	return strings.Join(lines, "\n")
}

func commentBlock(comments []string, limit int, seed int64) string {
	picked := Sample(comments, limit, seed)
	if len(picked) == 0 {
		return placeholderComments
	}
	lines := make([]string, len(picked))
	for i, c := range picked {
		lines[i] = "- " + c
	}
	return strings.Join(lines, "\n")
}
