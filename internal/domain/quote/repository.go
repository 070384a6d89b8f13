package quote

import (
	"context"
	"errors"
	"time"
)

// ErrStore is the single error kind every repository failure is wrapped in.
// Callers report a generic failure to the user and never see driver detail.
var ErrStore = errors.New("quote store failure")

// Repository defines the interface for quote persistence. Every operation is
// scoped by the owning chat identity.
type Repository interface {
	// Save stores a new quote and returns its assigned id.
	Save(ctx context.Context, chatID string, input SaveInput) (uint, error)

	// Delete removes a quote if it belongs to chatID, reporting whether a
	// row was removed.
	Delete(ctx context.Context, chatID string, id uint) (bool, error)

	// GetByID returns the quote, or nil when absent or owned by someone else.
	GetByID(ctx context.Context, chatID string, id uint) (*Quote, error)

	// Sample returns up to n quotes ranked by the spaced-repetition policy
	// (or uniformly at random when weighted is false) and, atomically with
	// the selection, bumps times_shown and last_shown on every returned row.
	Sample(ctx context.Context, chatID string, n int, weighted bool) ([]Quote, error)

	// Recent returns the n newest quotes by creation time.
	Recent(ctx context.Context, chatID string, n int) ([]Quote, error)

	Count(ctx context.Context, chatID string) (int64, error)

	// CountSince counts quotes created at or after the given instant.
	CountSince(ctx context.Context, chatID string, since time.Time) (int64, error)

	// Search matches keyword case-insensitively against quote text,
	// newest-first, capped at 10. A blank keyword yields no results.
	Search(ctx context.Context, chatID, keyword string) ([]Quote, error)

	// ByTag and BySource apply the same rules to the serialized tag list and
	// the source domain respectively.
	ByTag(ctx context.Context, chatID, tag string) ([]Quote, error)
	BySource(ctx context.Context, chatID, domain string) ([]Quote, error)

	// ToggleFavorite flips the flag and returns the new value, or nil when
	// the quote is absent or not owned.
	ToggleFavorite(ctx context.Context, chatID string, id uint) (*bool, error)

	// Favorites returns every favorited quote, newest-first, uncapped.
	Favorites(ctx context.Context, chatID string) ([]Quote, error)

	// TopTags counts tag occurrences across the user's quotes and returns
	// the most frequent ones. Equal counts keep first-seen order.
	TopTags(ctx context.Context, chatID string, limit int) ([]TagCount, error)

	// IsDuplicate reports whether the same trimmed text was saved by the
	// same user within the trailing window.
	IsDuplicate(ctx context.Context, chatID, text string, window time.Duration) (bool, error)

	// Export serializes every quote for the user as a JSON array,
	// newest-first.
	Export(ctx context.Context, chatID string) ([]byte, error)
}
