package domain

// Comment belongs either to an article (Article set) or to a social post (PostURL set).
type Comment struct {
	Article   ArticleKey
	PostURL   string
	Author    string
	RawText   string
	CleanText string
	Upvotes   int64
	Downvotes int64

	Classification Classification
}

// OnPost reports whether the comment was left under a social post.
func (c Comment) OnPost() bool {
	return c.PostURL != ""
}

// EmotionReaction is a platform-side tally of one emoji reaction on an article.
type EmotionReaction struct {
	Article ArticleKey
	Emotion string
	Count   int64
}

// SocialPost is a social-platform post together with its comments.
type SocialPost struct {
	URL      string
	Caption  string
	Account  string
	Comments []Comment
}
