package user

import (
	"context"

	"github.com/rs/zerolog"
)

// Service wraps the repository with registration defaults.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register upserts the user on an inbound interaction. New users start with
// both subscriptions enabled.
func (s *Service) Register(ctx context.Context, chatID, username, displayName string) (bool, error) {
	created, err := s.repo.Upsert(ctx, &User{
		ChatID:            chatID,
		Username:          username,
		DisplayName:       displayName,
		DigestEnabled:     true,
		DailyQuoteEnabled: true,
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info().Str("chat_id", chatID).Msg("registered new user")
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, chatID string) (*User, error) {
	return s.repo.GetByChatID(ctx, chatID)
}

// DigestRecipients lists users subscribed to the weekly digest.
func (s *Service) DigestRecipients(ctx context.Context) ([]User, error) {
	return s.repo.WithPreference(ctx, PreferenceDigest)
}

// DailyQuoteRecipients lists users subscribed to the daily quote.
func (s *Service) DailyQuoteRecipients(ctx context.Context) ([]User, error) {
	return s.repo.WithPreference(ctx, PreferenceDailyQuote)
}

func (s *Service) SetPreference(ctx context.Context, chatID string, pref Preference, enabled bool) error {
	return s.repo.SetPreference(ctx, chatID, pref, enabled)
}
