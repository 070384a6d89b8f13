package dbschema

import (
	"time"

	"readwiser/internal/domain/user"
	"readwiser/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(User{})
}

// User is the persisted chat identity row.
type User struct {
	ChatID            string    `gorm:"column:chat_id;primaryKey"`
	Username          string    `gorm:"column:username"`
	DisplayName       string    `gorm:"column:display_name"`
	DigestEnabled     bool      `gorm:"column:digest_enabled;not null;default:true"`
	DailyQuoteEnabled bool      `gorm:"column:daily_quote_enabled;not null;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}

// NewSchemaUser converts a domain user into a schema instance.
func NewSchemaUser(u *user.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ChatID:            u.ChatID,
		Username:          u.Username,
		DisplayName:       u.DisplayName,
		DigestEnabled:     u.DigestEnabled,
		DailyQuoteEnabled: u.DailyQuoteEnabled,
		CreatedAt:         u.CreatedAt,
	}
}

// EtoD converts a schema user back to the domain representation.
func (u *User) EtoD() *user.User {
	if u == nil {
		return nil
	}
	return &user.User{
		ChatID:            u.ChatID,
		Username:          u.Username,
		DisplayName:       u.DisplayName,
		DigestEnabled:     u.DigestEnabled,
		DailyQuoteEnabled: u.DailyQuoteEnabled,
		CreatedAt:         u.CreatedAt,
	}
}
