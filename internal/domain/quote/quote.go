// Package quote holds the quote domain model, the message parser and the
// spaced-repetition retrieval policy.
package quote

import (
	"time"
)

// Quote is a stored text snippet with optional source attribution and tags,
// owned by exactly one chat identity.
type Quote struct {
	ID           uint
	ChatID       string
	Text         string
	URL          *string
	SourceTitle  *string
	SourceAuthor *string
	SourceDomain *string
	Tags         []string
	IsFavorite   bool
	TimesShown   int
	LastShown    *time.Time
	CreatedAt    time.Time
}

// SaveInput carries the fields of a new quote into the store.
type SaveInput struct {
	Text         string
	URL          *string
	SourceTitle  *string
	SourceAuthor *string
	SourceDomain *string
	Tags         []string
}

// TagCount is one entry of a tag frequency ranking.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats aggregates the per-user collection statistics shown by /stats.
type Stats struct {
	Total     int64
	ThisWeek  int64
	Favorites int
	TopTags   []TagCount
}
