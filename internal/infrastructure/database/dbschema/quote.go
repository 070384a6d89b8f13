package dbschema

import (
	"strings"
	"time"

	"readwiser/internal/domain/quote"
	"readwiser/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Quote{})
}

// Quote is the persisted quote row. Tags are serialized as a comma-joined
// string so substring search over them stays a plain LIKE.
type Quote struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"`
	ChatID       string  `gorm:"column:chat_id;not null;index"`
	Text         string  `gorm:"column:text;not null"`
	URL          *string `gorm:"column:url"`
	SourceTitle  *string `gorm:"column:source_title"`
	SourceAuthor *string `gorm:"column:source_author"`
	SourceDomain *string `gorm:"column:source_domain"`
	Tags         *string `gorm:"column:tags"`
	IsFavorite   bool    `gorm:"column:is_favorite;not null;default:false"`
	TimesShown   int     `gorm:"column:times_shown;not null;default:0"`
	// Timestamps are always written in UTC so window comparisons sort the
	// same way they were stored.
	LastShown *time.Time `gorm:"column:last_shown"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (Quote) TableName() string {
	return "quotes"
}

// NewSchemaQuote converts a save input into a schema instance.
func NewSchemaQuote(chatID string, input quote.SaveInput, now time.Time) *Quote {
	return &Quote{
		ChatID:       chatID,
		Text:         input.Text,
		URL:          input.URL,
		SourceTitle:  input.SourceTitle,
		SourceAuthor: input.SourceAuthor,
		SourceDomain: input.SourceDomain,
		Tags:         JoinTags(input.Tags),
		CreatedAt:    now,
	}
}

// EtoD converts a schema quote back to the domain representation.
func (q *Quote) EtoD() *quote.Quote {
	if q == nil {
		return nil
	}
	return &quote.Quote{
		ID:           q.ID,
		ChatID:       q.ChatID,
		Text:         q.Text,
		URL:          q.URL,
		SourceTitle:  q.SourceTitle,
		SourceAuthor: q.SourceAuthor,
		SourceDomain: q.SourceDomain,
		Tags:         SplitTags(q.Tags),
		IsFavorite:   q.IsFavorite,
		TimesShown:   q.TimesShown,
		LastShown:    q.LastShown,
		CreatedAt:    q.CreatedAt,
	}
}

// JoinTags serializes a tag list for storage, nil when there are none.
func JoinTags(tags []string) *string {
	if len(tags) == 0 {
		return nil
	}
	joined := strings.Join(tags, ",")
	return &joined
}

// SplitTags deserializes a stored tag list.
func SplitTags(tags *string) []string {
	if tags == nil || *tags == "" {
		return nil
	}
	parts := strings.Split(*tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
