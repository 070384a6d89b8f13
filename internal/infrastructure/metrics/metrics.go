package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ReadWiser metrics - using explicit registration
var (
	// Inbound update counter
	BotUpdatesTotal *prometheus.CounterVec

	// Saved quote counter
	QuotesSavedTotal prometheus.Counter

	// Metadata fetch outcomes
	MetadataFetchTotal        *prometheus.CounterVec
	MetadataFetchRetriesTotal prometheus.Counter

	// Scheduled deliveries
	DigestsSentTotal     prometheus.Counter
	DailyQuotesSentTotal prometheus.Counter
)

// init creates and registers all metrics with the default registry
func init() {
	BotUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readwiser",
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Total inbound updates by handling status",
		},
		[]string{"status"},
	)

	QuotesSavedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "readwiser",
			Subsystem: "store",
			Name:      "quotes_saved_total",
			Help:      "Total quotes saved",
		},
	)

	MetadataFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readwiser",
			Subsystem: "metadata",
			Name:      "fetch_total",
			Help:      "Metadata fetches by outcome",
		},
		[]string{"outcome"},
	)

	MetadataFetchRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "readwiser",
			Subsystem: "metadata",
			Name:      "fetch_retries_total",
			Help:      "Retry attempts across all metadata fetches",
		},
	)

	DigestsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "readwiser",
			Subsystem: "scheduler",
			Name:      "digests_sent_total",
			Help:      "Weekly digests delivered",
		},
	)

	DailyQuotesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "readwiser",
			Subsystem: "scheduler",
			Name:      "daily_quotes_sent_total",
			Help:      "Daily quotes delivered",
		},
	)

	prometheus.MustRegister(
		BotUpdatesTotal,
		QuotesSavedTotal,
		MetadataFetchTotal,
		MetadataFetchRetriesTotal,
		DigestsSentTotal,
		DailyQuotesSentTotal,
	)
}
