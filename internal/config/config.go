package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment backed configuration for the bot.
type Config struct {
	// Telegram
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,notEmpty"`
	// TelegramChatID is the single chat identity the bot responds to.
	TelegramChatID string `env:"TELEGRAM_CHAT_ID,notEmpty"`
	PollTimeout    int    `env:"POLL_TIMEOUT_SECONDS" envDefault:"30"`

	// Storage
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/readwiser.db"`

	// Weekly digest
	DigestEnabled bool   `env:"DIGEST_ENABLED" envDefault:"true"`
	DigestDay     string `env:"DIGEST_DAY" envDefault:"sunday"`
	DigestTime    string `env:"DIGEST_TIME" envDefault:"10:00"`
	DigestCount   int    `env:"DIGEST_COUNT" envDefault:"10"`

	// Daily quote of the day
	DailyQuoteEnabled bool   `env:"DAILY_QUOTE_ENABLED" envDefault:"true"`
	DailyQuoteTime    string `env:"DAILY_QUOTE_TIME" envDefault:"09:00"`

	// Metadata fetching
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s"`
	FetchDialTimeout time.Duration `env:"FETCH_DIAL_TIMEOUT" envDefault:"2s"`

	// HTTP Server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// dayNumbers maps day names to cron day-of-week numbers.
var dayNumbers = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// Load reads an optional .env file, parses environment variables into Config
// and validates everything the scheduler and transport depend on.
func Load() (*Config, error) {
	// Missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, ok := dayNumbers[strings.ToLower(cfg.DigestDay)]; !ok {
		return nil, fmt.Errorf("DIGEST_DAY %q is not a weekday name", cfg.DigestDay)
	}
	if _, _, err := parseClock(cfg.DigestTime); err != nil {
		return nil, fmt.Errorf("DIGEST_TIME: %w", err)
	}
	if _, _, err := parseClock(cfg.DailyQuoteTime); err != nil {
		return nil, fmt.Errorf("DAILY_QUOTE_TIME: %w", err)
	}
	if cfg.DigestCount <= 0 {
		return nil, errors.New("DIGEST_COUNT must be positive")
	}

	return cfg, nil
}

// DigestSchedule returns the digest job cron expression (minute hour * * dow).
func (c *Config) DigestSchedule() string {
	hour, minute, _ := parseClock(c.DigestTime)
	return fmt.Sprintf("%d %d * * %d", minute, hour, dayNumbers[strings.ToLower(c.DigestDay)])
}

// DailyQuoteSchedule returns the daily quote job cron expression.
func (c *Config) DailyQuoteSchedule() string {
	hour, minute, _ := parseClock(c.DailyQuoteTime)
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func parseClock(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%q is not in HH:MM form", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%q has an invalid hour", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%q has an invalid minute", value)
	}
	return hour, minute, nil
}
