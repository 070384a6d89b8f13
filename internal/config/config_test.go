package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readwiser/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")
	t.Setenv("TELEGRAM_CHAT_ID", "987654321")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "data/readwiser.db", cfg.DatabasePath)
	assert.True(t, cfg.DigestEnabled)
	assert.Equal(t, "sunday", cfg.DigestDay)
	assert.Equal(t, 10, cfg.DigestCount)
	assert.True(t, cfg.DailyQuoteEnabled)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_MissingCredentialsIsFatal(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "987654321")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RejectsBadSchedule(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown day", "DIGEST_DAY", "caturday"},
		{"missing colon", "DIGEST_TIME", "1000"},
		{"hour out of range", "DIGEST_TIME", "25:00"},
		{"minute out of range", "DAILY_QUOTE_TIME", "09:75"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestScheduleExpressions(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DIGEST_DAY", "Friday")
	t.Setenv("DIGEST_TIME", "18:30")
	t.Setenv("DAILY_QUOTE_TIME", "07:05")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "30 18 * * 5", cfg.DigestSchedule())
	assert.Equal(t, "5 7 * * *", cfg.DailyQuoteSchedule())
}
