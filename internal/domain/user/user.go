// Package user holds the user domain model and its persistence contract.
package user

import (
	"context"
	"errors"
	"time"
)

// ErrStore wraps every underlying persistence failure of the user store.
var ErrStore = errors.New("user store failure")

// User is a chat identity known to the bot. Users are created on first
// inbound interaction and never deleted.
type User struct {
	ChatID            string
	Username          string
	DisplayName       string
	DigestEnabled     bool
	DailyQuoteEnabled bool
	CreatedAt         time.Time
}

// Preference names the two independent subscription toggles.
type Preference string

const (
	PreferenceDigest     Preference = "digest"
	PreferenceDailyQuote Preference = "daily_quote"
)

// Repository defines the interface for user persistence.
type Repository interface {
	// Upsert registers a user, reporting whether the row was newly created.
	// Existing users get their name fields refreshed, preferences untouched.
	Upsert(ctx context.Context, usr *User) (created bool, err error)

	// GetByChatID returns the user or nil when unknown.
	GetByChatID(ctx context.Context, chatID string) (*User, error)

	// WithPreference lists every user that has the given toggle enabled.
	WithPreference(ctx context.Context, pref Preference) ([]User, error)

	// SetPreference flips one toggle for the user.
	SetPreference(ctx context.Context, chatID string, pref Preference, enabled bool) error
}
