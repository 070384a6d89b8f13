package metadata

import (
	"context"
	"errors"
	"math"
	"net"
	"net/url"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"readwiser/internal/infrastructure/metrics"
)

// RetryConfig defines retry behavior for metadata fetches.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the fixed retry budget for page fetches.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

// isRetryable classifies a failed attempt. Timeouts, server-side errors and
// generic transport failures are worth retrying; connection refused and
// client-side statuses are not, and anything unexpected aborts immediately.
func isRetryable(resp *resty.Response, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		if errors.Is(err, syscall.ECONNREFUSED) {
			return false
		}
		var urlErr *url.Error
		var opErr *net.OpError
		if errors.As(err, &urlErr) || errors.As(err, &opErr) {
			return true
		}
		return false
	}
	return resp != nil && resp.StatusCode() >= 500
}

// withRetry executes a fetch attempt with exponential backoff on retryable
// failures. The last response and error are returned either way; the caller
// degrades to partial metadata on failure.
func withRetry(ctx context.Context, cfg RetryConfig, log zerolog.Logger, fn func() (*resty.Response, error)) (*resty.Response, error) {
	var lastResp *resty.Response
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		resp, err := fn()
		if err == nil && !resp.IsError() {
			if attempt > 1 {
				log.Info().Int("attempt", attempt).Msg("metadata fetch succeeded after retry")
			}
			return resp, nil
		}

		lastResp, lastErr = resp, err
		if !isRetryable(resp, err) {
			log.Debug().Err(err).Int("attempt", attempt).Msg("non-retryable fetch failure, aborting")
			return lastResp, lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(attempt, cfg)
		metrics.MetadataFetchRetriesTotal.Inc()
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", cfg.MaxAttempts).
			Dur("retry_delay", delay).
			Msg("retrying metadata fetch")

		select {
		case <-ctx.Done():
			return lastResp, ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastResp, lastErr
}

func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	backoff := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if backoff > float64(cfg.MaxDelay) {
		backoff = float64(cfg.MaxDelay)
	}
	return time.Duration(backoff)
}
