// Package metadata fetches best-effort article metadata for saved links.
package metadata

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"readwiser/internal/domain/quote"
	"readwiser/internal/infrastructure/metrics"
)

// UnknownDomain is the sentinel used when the URL host cannot be derived.
const UnknownDomain = "unknown"

const userAgent = "ReadWiser/1.0 (+https://readwiser.app)"

// Article is the extracted page metadata. Domain is always populated; title
// and author are best effort.
type Article struct {
	Title  *string
	Author *string
	Domain string
}

// Client fetches and parses article pages.
type Client struct {
	httpClient *resty.Client
	retry      RetryConfig
	log        zerolog.Logger
}

// NewClient constructs a metadata client. The dial timeout bounds connection
// establishment separately from the overall request timeout.
func NewClient(timeout, dialTimeout time.Duration, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetTransport(&http.Transport{
			DialContext: (&net.Dialer{Timeout: dialTimeout}).DialContext,
		})

	return &Client{
		httpClient: httpClient,
		retry:      DefaultRetryConfig(),
		log:        log,
	}
}

// Fetch retrieves title, author and domain for a URL. It never fails the
// caller: any validation or network problem degrades to a partial result
// carrying at least the domain.
func (c *Client) Fetch(ctx context.Context, rawURL string) Article {
	article := Article{Domain: DomainOf(rawURL)}

	// Callers other than the parser can hand us unvalidated URLs.
	if quote.ValidateURL(rawURL) == "" {
		metrics.MetadataFetchTotal.WithLabelValues("invalid_url").Inc()
		return article
	}

	resp, err := withRetry(ctx, c.retry, c.log, func() (*resty.Response, error) {
		return c.httpClient.R().SetContext(ctx).Get(rawURL)
	})
	if err != nil || resp == nil || resp.IsError() {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		c.log.Debug().
			Err(err).
			Int("status", status).
			Str("domain", article.Domain).
			Msg("metadata fetch degraded to domain only")
		metrics.MetadataFetchTotal.WithLabelValues("partial").Inc()
		return article
	}

	article.Title, article.Author = extractArticle(resp.Body())
	metrics.MetadataFetchTotal.WithLabelValues("ok").Inc()
	return article
}

// DomainOf derives the display domain from a URL: the host with one leading
// "www." stripped, or the sentinel when the URL does not parse.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return UnknownDomain
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
