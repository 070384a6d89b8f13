package quoterepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"readwiser/internal/domain/quote"
	"readwiser/internal/infrastructure/database/dbschema"
)

// searchCap bounds every substring search result set.
const searchCap = 10

type QuoteGormRepository struct {
	db *gorm.DB
}

var _ quote.Repository = (*QuoteGormRepository)(nil)

func NewQuoteGormRepository(db *gorm.DB) quote.Repository {
	return &QuoteGormRepository{db: db}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, quote.ErrStore, err)
}

func (repo *QuoteGormRepository) Save(ctx context.Context, chatID string, input quote.SaveInput) (uint, error) {
	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" {
		return 0, quote.ErrEmptyText
	}

	entity := dbschema.NewSchemaQuote(chatID, input, time.Now().UTC())
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return 0, storeErr("save quote", err)
	}
	return entity.ID, nil
}

func (repo *QuoteGormRepository) Delete(ctx context.Context, chatID string, id uint) (bool, error) {
	result := repo.db.WithContext(ctx).
		Where("chat_id = ? AND id = ?", chatID, id).
		Delete(&dbschema.Quote{})
	if result.Error != nil {
		return false, storeErr("delete quote", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (repo *QuoteGormRepository) GetByID(ctx context.Context, chatID string, id uint) (*quote.Quote, error) {
	var entity dbschema.Quote
	err := repo.db.WithContext(ctx).
		Where("chat_id = ? AND id = ?", chatID, id).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get quote", err)
	}
	return entity.EtoD(), nil
}

// Sample selects quotes by the spaced-repetition policy and bumps their usage
// stats inside one transaction, so concurrent digest and command requests
// cannot double-count a selection.
func (repo *QuoteGormRepository) Sample(ctx context.Context, chatID string, n int, weighted bool) ([]quote.Quote, error) {
	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(now.UnixNano()))

	var picked []quote.Quote
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entities []dbschema.Quote
		if err := tx.Where("chat_id = ?", chatID).Find(&entities).Error; err != nil {
			return err
		}

		candidates := make([]quote.Quote, 0, len(entities))
		for i := range entities {
			candidates = append(candidates, *entities[i].EtoD())
		}

		picked = quote.Pick(candidates, n, weighted, now, rng)
		if len(picked) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(picked))
		for _, q := range picked {
			ids = append(ids, q.ID)
		}
		if err := tx.Model(&dbschema.Quote{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"times_shown": gorm.Expr("times_shown + 1"),
				"last_shown":  now,
			}).Error; err != nil {
			return err
		}

		// Reflect the bump in what the caller sees.
		for i := range picked {
			picked[i].TimesShown++
			shown := now
			picked[i].LastShown = &shown
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("sample quotes", err)
	}
	return picked, nil
}

func (repo *QuoteGormRepository) Recent(ctx context.Context, chatID string, n int) ([]quote.Quote, error) {
	var entities []dbschema.Quote
	err := repo.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&entities).
		Error
	if err != nil {
		return nil, storeErr("recent quotes", err)
	}
	return toDomain(entities), nil
}

func (repo *QuoteGormRepository) Count(ctx context.Context, chatID string) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&dbschema.Quote{}).
		Where("chat_id = ?", chatID).
		Count(&count).
		Error
	if err != nil {
		return 0, storeErr("count quotes", err)
	}
	return count, nil
}

func (repo *QuoteGormRepository) CountSince(ctx context.Context, chatID string, since time.Time) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&dbschema.Quote{}).
		Where("chat_id = ? AND created_at >= ?", chatID, since.UTC()).
		Count(&count).
		Error
	if err != nil {
		return 0, storeErr("count recent quotes", err)
	}
	return count, nil
}

func (repo *QuoteGormRepository) Search(ctx context.Context, chatID, keyword string) ([]quote.Quote, error) {
	return repo.substringSearch(ctx, chatID, "text", keyword)
}

func (repo *QuoteGormRepository) ByTag(ctx context.Context, chatID, tag string) ([]quote.Quote, error) {
	return repo.substringSearch(ctx, chatID, "tags", tag)
}

func (repo *QuoteGormRepository) BySource(ctx context.Context, chatID, domain string) ([]quote.Quote, error) {
	return repo.substringSearch(ctx, chatID, "source_domain", domain)
}

func (repo *QuoteGormRepository) substringSearch(ctx context.Context, chatID, column, needle string) ([]quote.Quote, error) {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return []quote.Quote{}, nil
	}

	var entities []dbschema.Quote
	err := repo.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Where(fmt.Sprintf("LOWER(%s) LIKE ?", column), "%"+strings.ToLower(needle)+"%").
		Order("created_at DESC, id DESC").
		Limit(searchCap).
		Find(&entities).
		Error
	if err != nil {
		return nil, storeErr("search quotes", err)
	}
	return toDomain(entities), nil
}

func (repo *QuoteGormRepository) ToggleFavorite(ctx context.Context, chatID string, id uint) (*bool, error) {
	var status *bool
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity dbschema.Quote
		err := tx.Where("chat_id = ? AND id = ?", chatID, id).First(&entity).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		next := !entity.IsFavorite
		if err := tx.Model(&dbschema.Quote{}).
			Where("id = ?", entity.ID).
			Update("is_favorite", next).Error; err != nil {
			return err
		}
		status = &next
		return nil
	})
	if err != nil {
		return nil, storeErr("toggle favorite", err)
	}
	return status, nil
}

func (repo *QuoteGormRepository) Favorites(ctx context.Context, chatID string) ([]quote.Quote, error) {
	var entities []dbschema.Quote
	err := repo.db.WithContext(ctx).
		Where("chat_id = ? AND is_favorite = ?", chatID, true).
		Order("created_at DESC, id DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, storeErr("list favorites", err)
	}
	return toDomain(entities), nil
}

// TopTags counts tag occurrences across the user's quotes. Equal counts keep
// first-seen order, oldest quote first, which makes the ranking stable across
// runs.
func (repo *QuoteGormRepository) TopTags(ctx context.Context, chatID string, limit int) ([]quote.TagCount, error) {
	var rows []dbschema.Quote
	err := repo.db.WithContext(ctx).
		Select("tags").
		Where("chat_id = ? AND tags IS NOT NULL", chatID).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, storeErr("top tags", err)
	}

	counts := map[string]int{}
	order := []string{}
	for _, row := range rows {
		for _, tag := range dbschema.SplitTags(row.Tags) {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	ranked := make([]quote.TagCount, 0, len(order))
	for _, tag := range order {
		ranked = append(ranked, quote.TagCount{Tag: tag, Count: counts[tag]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (repo *QuoteGormRepository) IsDuplicate(ctx context.Context, chatID, text string, window time.Duration) (bool, error) {
	cutoff := time.Now().UTC().Add(-window)
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&dbschema.Quote{}).
		Where("chat_id = ? AND text = ? AND created_at >= ?", chatID, strings.TrimSpace(text), cutoff).
		Count(&count).
		Error
	if err != nil {
		return false, storeErr("duplicate check", err)
	}
	return count > 0, nil
}

// exportQuote is the machine-readable export shape; timestamps are RFC3339
// UTC strings.
type exportQuote struct {
	ID           uint     `json:"id"`
	Text         string   `json:"text"`
	URL          *string  `json:"url"`
	SourceTitle  *string  `json:"source_title"`
	SourceAuthor *string  `json:"source_author"`
	SourceDomain *string  `json:"source_domain"`
	Tags         []string `json:"tags"`
	IsFavorite   bool     `json:"is_favorite"`
	TimesShown   int      `json:"times_shown"`
	LastShown    *string  `json:"last_shown"`
	CreatedAt    string   `json:"created_at"`
}

func (repo *QuoteGormRepository) Export(ctx context.Context, chatID string) ([]byte, error) {
	var entities []dbschema.Quote
	err := repo.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, storeErr("export quotes", err)
	}

	records := make([]exportQuote, 0, len(entities))
	for i := range entities {
		q := entities[i].EtoD()
		record := exportQuote{
			ID:           q.ID,
			Text:         q.Text,
			URL:          q.URL,
			SourceTitle:  q.SourceTitle,
			SourceAuthor: q.SourceAuthor,
			SourceDomain: q.SourceDomain,
			Tags:         q.Tags,
			IsFavorite:   q.IsFavorite,
			TimesShown:   q.TimesShown,
			CreatedAt:    q.CreatedAt.UTC().Format(time.RFC3339),
		}
		if q.LastShown != nil {
			shown := q.LastShown.UTC().Format(time.RFC3339)
			record.LastShown = &shown
		}
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, storeErr("export quotes", err)
	}
	return data, nil
}

func toDomain(entities []dbschema.Quote) []quote.Quote {
	out := make([]quote.Quote, 0, len(entities))
	for i := range entities {
		out = append(out, *entities[i].EtoD())
	}
	return out
}
