package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"

	"readwiser/internal/config"
	"readwiser/internal/infrastructure/logger"
)

// CronJobTimeout bounds a single delivery run.
const CronJobTimeout = 10 * time.Minute

// Notifier delivers the scheduled sends. Implemented by the bot.
type Notifier interface {
	SendDigests(ctx context.Context) error
	SendDailyQuotes(ctx context.Context) error
}

type Crontab struct {
	ctab     *crontab.Crontab
	cfg      *config.Config
	notifier Notifier
}

func NewCrontab(cfg *config.Config, notifier Notifier) *Crontab {
	return &Crontab{
		ctab:     crontab.New(),
		cfg:      cfg,
		notifier: notifier,
	}
}

// Run registers the enabled delivery jobs and blocks until the context is
// cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()

	if c.cfg.DigestEnabled {
		expr := c.cfg.DigestSchedule()
		if err := c.ctab.AddJob(expr, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()
			if err := c.notifier.SendDigests(jobCtx); err != nil {
				log.Error().Err(err).Msg("weekly digest run failed")
			}
		}); err != nil {
			return fmt.Errorf("failed to add digest job: %w", err)
		}
		log.Info().Str("schedule", expr).Msg("weekly digest scheduled")
	}

	if c.cfg.DailyQuoteEnabled {
		expr := c.cfg.DailyQuoteSchedule()
		if err := c.ctab.AddJob(expr, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()
			if err := c.notifier.SendDailyQuotes(jobCtx); err != nil {
				log.Error().Err(err).Msg("daily quote run failed")
			}
		}); err != nil {
			return fmt.Errorf("failed to add daily quote job: %w", err)
		}
		log.Info().Str("schedule", expr).Msg("daily quote scheduled")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}
