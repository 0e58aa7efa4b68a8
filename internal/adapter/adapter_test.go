package adapter

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"MoodScanner/internal/domain"
)

type fakeReader struct {
	articles []domain.RawArticle
	comments []domain.RawComment
	emotions []domain.RawEmotion
	social   []domain.RawSocialComment
	err      error
}

func (f *fakeReader) Articles(context.Context) ([]domain.RawArticle, error) {
	return f.articles, f.err
}

func (f *fakeReader) Comments(context.Context) ([]domain.RawComment, error) {
	return f.comments, f.err
}

func (f *fakeReader) Emotions(context.Context) ([]domain.RawEmotion, error) {
	return f.emotions, f.err
}

func (f *fakeReader) SocialComments(context.Context) ([]domain.RawSocialComment, error) {
	return f.social, f.err
}

func str(v string) sql.NullString { return sql.NullString{String: v, Valid: true} }
func num(v int64) sql.NullInt64   { return sql.NullInt64{Int64: v, Valid: true} }

func TestGazetaLoad(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		articles: []domain.RawArticle{
			{ID: 1, URL: str("https://www.gazeta.uz/ru/2025/1"), Title: str(" Заголовок "), Content: str("<p>Текст <b>статьи</b></p><script>x()</script>")},
			{ID: 0, URL: str("broken")},
		},
		comments: []domain.RawComment{
			{ID: 10, ArticleID: num(1), User: str("ivan"), Text: str("@petr <b>согласен</b> https://t.me/x"), Upvotes: num(4), Downvotes: num(1)},
			{ID: 11, Text: str("no article")},
			{ID: 12, ArticleID: num(1)},
		},
	}

	frag, err := NewGazeta(reader, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if frag.Skipped != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", frag.Skipped)
	}
	if len(frag.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(frag.Articles))
	}
	art := frag.Articles[0]
	if art.Key != (domain.ArticleKey{Source: domain.SourceGazeta, LocalID: 1}) {
		t.Fatalf("unexpected key: %v", art.Key)
	}
	if art.Title != "Заголовок" || art.Body != "Текст статьи" {
		t.Fatalf("unexpected article: %+v", art)
	}
	if len(frag.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(frag.Comments))
	}
	c := frag.Comments[0]
	if c.CleanText != "согласен" || c.Author != "ivan" || c.Upvotes != 4 || c.Downvotes != 1 {
		t.Fatalf("unexpected comment: %+v", c)
	}
	if frag.Comments[1].CleanText != "" {
		t.Fatalf("null comment text should normalize to empty, got %q", frag.Comments[1].CleanText)
	}
}

func TestPodrobnoLoadEmotions(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		articles: []domain.RawArticle{{ID: 5, Title: str("Новость"), Content: str("plain body")}},
		emotions: []domain.RawEmotion{
			{ArticleID: num(5), Emotion: str("Радость"), Count: num(3)},
			{ArticleID: num(5), Emotion: str("Грусть"), Count: num(-1)},
			{ArticleID: num(5), Emotion: str(" "), Count: num(2)},
			{Emotion: str("Грусть"), Count: num(2)},
			{ArticleID: num(5), Emotion: str("Удивление")},
		},
	}

	frag, err := NewPodrobno(reader, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if frag.Skipped != 3 {
		t.Fatalf("expected 3 skipped rows, got %d", frag.Skipped)
	}
	if len(frag.Emotions) != 2 {
		t.Fatalf("expected 2 emotions, got %d", len(frag.Emotions))
	}
	if frag.Emotions[1].Count != 0 {
		t.Fatalf("null count should map to zero, got %d", frag.Emotions[1].Count)
	}
	if frag.Articles[0].Body != "plain body" {
		t.Fatalf("plain body should pass through, got %q", frag.Articles[0].Body)
	}
	if frag.Articles[0].Key.Source != domain.SourcePodrobno {
		t.Fatalf("unexpected source tag: %s", frag.Articles[0].Key.Source)
	}
}

func TestInstagramLoadGroupsByPost(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		social: []domain.RawSocialComment{
			{ID: 1, AccountName: str("uznews"), PostURL: str("https://instagram.com/p/a"), PostCaption: str("Новый закон"), Username: str("u1"), Comment: str("Очень хороший закон, поддерживаю")},
			{ID: 2, AccountName: str("uznews"), PostURL: str("https://instagram.com/p/a"), PostCaption: str("Новый закон"), Username: str("u2"), Comment: str("👍👍👍")},
			{ID: 3, AccountName: str("uznews"), PostURL: str("https://instagram.com/p/b"), PostCaption: str("Курс"), Username: str("u3"), Comment: str("Опять всё подорожало, ужас просто")},
			{ID: 4, PostCaption: str("orphan"), Comment: str("some long comment text here")},
		},
	}

	frag, err := NewInstagram(reader, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if frag.Skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", frag.Skipped)
	}
	if len(frag.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(frag.Posts))
	}
	post := frag.Posts[0]
	if post.Caption != "Новый закон" || post.Account != "uznews" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if len(post.Comments) != 1 || post.Comments[0].PostURL != post.URL {
		t.Fatalf("expected low-signal comment to be dropped: %+v", post.Comments)
	}
}

func TestIsLowSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"short", true},
		{"🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥", true},
		{"@someone @another_one", true},
		{"!!!! ???? .... ,,,,", true},
		{"Это действительно важная новость", false},
		{"@admin спасибо за информацию", false},
	}

	for _, tt := range tests {
		if got := IsLowSignal(tt.text); got != tt.want {
			t.Errorf("IsLowSignal(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestRegistryLoadAllSkipsFailingSources(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(NewGazeta(&fakeReader{err: errors.New("boom")}, nil))
	reg.Register(NewPodrobno(&fakeReader{articles: []domain.RawArticle{{ID: 1}}}, nil))

	frags, failures := reg.LoadAll(context.Background(), nil)
	if len(frags) != 1 || frags[0].Source != domain.SourcePodrobno {
		t.Fatalf("unexpected fragments: %+v", frags)
	}
	if _, ok := failures[domain.SourceGazeta]; !ok {
		t.Fatalf("expected gazeta failure to be reported")
	}
	if _, err := reg.Resolve(domain.SourceInstagram); err == nil {
		t.Fatalf("expected unregistered adapter error")
	}
}
