package quote

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DuplicateWindow is the trailing interval in which resubmitting identical
// text is treated as an accidental duplicate.
const DuplicateWindow = time.Minute

// ErrEmptyText rejects saves whose text is empty after trimming.
var ErrEmptyText = errors.New("quote text is empty")

// ErrDuplicate rejects saves of text already stored within DuplicateWindow.
var ErrDuplicate = errors.New("quote was already saved recently")

// Service wraps the repository with input validation and duplicate
// suppression.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Save validates and stores a new quote.
func (s *Service) Save(ctx context.Context, chatID string, input SaveInput) (uint, error) {
	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" {
		return 0, ErrEmptyText
	}

	dup, err := s.repo.IsDuplicate(ctx, chatID, input.Text, DuplicateWindow)
	if err != nil {
		return 0, err
	}
	if dup {
		return 0, ErrDuplicate
	}

	id, err := s.repo.Save(ctx, chatID, input)
	if err != nil {
		return 0, err
	}
	s.log.Debug().Uint("quote_id", id).Int("tags", len(input.Tags)).Msg("quote saved")
	return id, nil
}

func (s *Service) Delete(ctx context.Context, chatID string, id uint) (bool, error) {
	return s.repo.Delete(ctx, chatID, id)
}

func (s *Service) Get(ctx context.Context, chatID string, id uint) (*Quote, error) {
	return s.repo.GetByID(ctx, chatID, id)
}

func (s *Service) Sample(ctx context.Context, chatID string, n int, weighted bool) ([]Quote, error) {
	return s.repo.Sample(ctx, chatID, n, weighted)
}

func (s *Service) Recent(ctx context.Context, chatID string, n int) ([]Quote, error) {
	return s.repo.Recent(ctx, chatID, n)
}

func (s *Service) Search(ctx context.Context, chatID, keyword string) ([]Quote, error) {
	return s.repo.Search(ctx, chatID, keyword)
}

func (s *Service) ByTag(ctx context.Context, chatID, tag string) ([]Quote, error) {
	return s.repo.ByTag(ctx, chatID, tag)
}

func (s *Service) BySource(ctx context.Context, chatID, domain string) ([]Quote, error) {
	return s.repo.BySource(ctx, chatID, domain)
}

func (s *Service) ToggleFavorite(ctx context.Context, chatID string, id uint) (*bool, error) {
	return s.repo.ToggleFavorite(ctx, chatID, id)
}

func (s *Service) Favorites(ctx context.Context, chatID string) ([]Quote, error) {
	return s.repo.Favorites(ctx, chatID)
}

func (s *Service) Count(ctx context.Context, chatID string) (int64, error) {
	return s.repo.Count(ctx, chatID)
}

func (s *Service) Export(ctx context.Context, chatID string) ([]byte, error) {
	return s.repo.Export(ctx, chatID)
}

// Stats gathers the aggregate numbers behind the /stats command.
func (s *Service) Stats(ctx context.Context, chatID string) (*Stats, error) {
	total, err := s.repo.Count(ctx, chatID)
	if err != nil {
		return nil, err
	}
	week, err := s.repo.CountSince(ctx, chatID, time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	favorites, err := s.repo.Favorites(ctx, chatID)
	if err != nil {
		return nil, err
	}
	topTags, err := s.repo.TopTags(ctx, chatID, 5)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Total:     total,
		ThisWeek:  week,
		Favorites: len(favorites),
		TopTags:   topTags,
	}, nil
}
