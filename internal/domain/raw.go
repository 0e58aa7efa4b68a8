package domain

import "database/sql"

// Raw rows as persisted by the scrapers. Nullable columns stay nullable here;
// adapters decide which rows are usable.

// RawArticle is an article row shared by both news sources.
type RawArticle struct {
	ID      int64
	URL     sql.NullString
	Title   sql.NullString
	Content sql.NullString
}

// RawComment is an article comment row. User and vote columns exist only on gazeta.
type RawComment struct {
	ID        int64
	ArticleID sql.NullInt64
	User      sql.NullString
	Text      sql.NullString
	Upvotes   sql.NullInt64
	Downvotes sql.NullInt64
}

// RawEmotion is a reaction tally row (podrobno only).
type RawEmotion struct {
	ArticleID sql.NullInt64
	Emotion   sql.NullString
	Count     sql.NullInt64
}

// RawSocialComment is one scraped comment together with its post metadata.
type RawSocialComment struct {
	ID          int64
	AccountName sql.NullString
	PostURL     sql.NullString
	PostCaption sql.NullString
	Username    sql.NullString
	Comment     sql.NullString
}

// RawSummary is a precomputed summary keyed by post url or article key.
type RawSummary struct {
	Key     string
	Summary sql.NullString
}

// Summary is a generated text summary ready to be stored.
type Summary struct {
	Key          string
	Source       Source
	Title        string
	CommentCount int
	Text         string
}
