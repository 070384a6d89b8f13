package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"readwiser/internal/domain/user"
	"readwiser/internal/infrastructure/database/dbschema"
)

type UserGormRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *gorm.DB) user.Repository {
	return &UserGormRepository{db: db}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, user.ErrStore, err)
}

// Upsert registers the user, refreshing name fields on conflict and leaving
// preferences as the user set them. The created flag is true only for the
// first registration.
func (repo *UserGormRepository) Upsert(ctx context.Context, usr *user.User) (bool, error) {
	var created bool
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing dbschema.User
		err := tx.Where("chat_id = ?", usr.ChatID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
		case err != nil:
			return err
		}

		entity := dbschema.NewSchemaUser(usr)
		if created {
			entity.CreatedAt = time.Now().UTC()
			return tx.Create(entity).Error
		}

		return tx.Model(&dbschema.User{}).
			Where("chat_id = ?", usr.ChatID).
			Updates(map[string]interface{}{
				"username":     entity.Username,
				"display_name": entity.DisplayName,
			}).Error
	})
	if err != nil {
		return false, storeErr("upsert user", err)
	}
	return created, nil
}

func (repo *UserGormRepository) GetByChatID(ctx context.Context, chatID string) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return entity.EtoD(), nil
}

func (repo *UserGormRepository) WithPreference(ctx context.Context, pref user.Preference) ([]user.User, error) {
	column, err := preferenceColumn(pref)
	if err != nil {
		return nil, err
	}

	var entities []dbschema.User
	if err := repo.db.WithContext(ctx).
		Where(fmt.Sprintf("%s = ?", column), true).
		Order("created_at ASC").
		Find(&entities).
		Error; err != nil {
		return nil, storeErr("list users by preference", err)
	}

	out := make([]user.User, 0, len(entities))
	for i := range entities {
		out = append(out, *entities[i].EtoD())
	}
	return out, nil
}

func (repo *UserGormRepository) SetPreference(ctx context.Context, chatID string, pref user.Preference, enabled bool) error {
	column, err := preferenceColumn(pref)
	if err != nil {
		return err
	}

	result := repo.db.WithContext(ctx).
		Model(&dbschema.User{}).
		Where("chat_id = ?", chatID).
		Update(column, enabled)
	if result.Error != nil {
		return storeErr("set preference", result.Error)
	}
	if result.RowsAffected == 0 {
		return storeErr("set preference", gorm.ErrRecordNotFound)
	}
	return nil
}

func preferenceColumn(pref user.Preference) (string, error) {
	switch pref {
	case user.PreferenceDigest:
		return "digest_enabled", nil
	case user.PreferenceDailyQuote:
		return "daily_quote_enabled", nil
	default:
		return "", fmt.Errorf("unknown preference %q: %w", pref, user.ErrStore)
	}
}
