// Package wildberries provides the Wildberries catalog search client.
package wildberries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Nikitosik2311/parserwb/internal/metrics"
	"github.com/Nikitosik2311/parserwb/pkg/extract"
	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

const (
	// DefaultSearchURL is the public exact-match search endpoint.
	DefaultSearchURL = "https://search.wb.ru/exactmatch/ru/common/v4/search"
	// DefaultLimit is the number of results requested per query.
	DefaultLimit = 30
	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent mimics a desktop browser; the endpoint rejects
	// requests without a plausible client signature.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/115.0 Safari/537.36"

	acceptHeader    = "application/json, text/plain, */*"
	maxResponseSize = 16 << 20
)

// ErrUnexpectedStatus is returned when the search endpoint answers with
// anything but 200 OK.
var ErrUnexpectedStatus = errors.New("unexpected search status")

// Searcher fetches priced items for one query string.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.PricedItem, error)
}

// Client implements Searcher against the Wildberries search API.
type Client struct {
	searchURL   string
	limit       int
	userAgent   string
	client      *http.Client
	rateLimiter *RateLimiter
	log         *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithSearchURL overrides the default search endpoint.
func WithSearchURL(u string) Option {
	return func(c *Client) {
		c.searchURL = u
	}
}

// WithLimit overrides the per-query result limit.
func WithLimit(n int) Option {
	return func(c *Client) {
		c.limit = n
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the request timeout on the client's HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client = &http.Client{Timeout: d}
	}
}

// WithRateLimiter makes every Search wait on r first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a search client with defaults for every unset option.
func NewClient(opts ...Option) *Client {
	c := &Client{
		searchURL: DefaultSearchURL,
		limit:     DefaultLimit,
		userAgent: DefaultUserAgent,
		client:    &http.Client{Timeout: DefaultTimeout},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries the endpoint for query and extracts priced items from the
// response. A non-nil error means "no result this time": transport failure,
// non-200 status, rate limit, or an undecodable body.
func (c *Client) Search(ctx context.Context, query string) ([]domain.PricedItem, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.SearchDailyLimitHits.Inc()
			}
			metrics.SearchErrorsTotal.WithLabelValues("rate_limit").Inc()
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.SearchDailyUsage.Set(float64(c.rateLimiter.Quota().Used))
	}

	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.SearchRequestsTotal.Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.SearchErrorsTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("executing search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.SearchErrorsTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.SearchErrorsTotal.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	payload, err := DecodePayload(body)
	if err != nil {
		metrics.SearchErrorsTotal.WithLabelValues("decode").Inc()
		return nil, err
	}

	items := extract.Items(payload)
	metrics.SearchItemsTotal.Add(float64(len(items)))
	c.log.Debug("search complete", "query", query, "items", len(items))

	return items, nil
}

// SearchURL builds the request URL for query.
func (c *Client) SearchURL(query string) string {
	return c.searchURL +
		"?query=" + url.QueryEscape(query) +
		"&limit=" + strconv.Itoa(c.limit)
}
