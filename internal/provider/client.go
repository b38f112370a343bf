package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"flightops-platform/internal/models"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

const (
	// Connection pool settings
	maxIdleConns        = 10
	maxConnsPerHost     = 5
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

// Query describes one logical fetch against the flight data provider.
type Query struct {
	Direction string // "D" or "A"; empty fetches both
	Airline   string // operating carrier prefix, e.g. "KL"
	Date      string // schedule date YYYY-MM-DD
	FetchAll  bool   // paginate until an empty page
}

// CacheKey coalesces query shapes onto two keys so the dashboard's panels
// share one upstream fetch: all pages for a date, or a single dateless page.
func (q Query) CacheKey() string {
	if q.FetchAll && q.Date != "" {
		return "all:" + q.Date
	}
	return "single"
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets the provider endpoint (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithCredentials sets the provider application credentials.
func WithCredentials(appID, appKey string) ClientOption {
	return func(c *Client) {
		c.appID = appID
		c.appKey = appKey
	}
}

// WithRetryPolicy overrides retry attempts and backoff base delay.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// WithPagePolicy overrides the page ceiling and inter-page delay.
func WithPagePolicy(maxPages int, pageDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxPages = maxPages
		c.pageDelay = pageDelay
	}
}

// WithCache attaches a response cache; successful fetches are written into it
// before being returned.
func WithCache(cache *Cache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

// Client fetches flight records from the external flight data provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	appID      string
	appKey     string

	maxRetries int
	baseDelay  time.Duration
	maxPages   int
	pageDelay  time.Duration

	cache   *Cache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewClient creates a provider client with connection pooling.
func NewClient(logger *logging.StructuredLogger, metricsCollector *metrics.Collector, opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}

	c := &Client{
		baseURL: "https://api.schiphol.nl/public-flights",
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		maxPages:   20,
		pageDelay:  150 * time.Millisecond,
		logger:     logger,
		metrics:    metricsCollector,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch resolves a query against the provider: a single page, or all pages
// accumulated until an empty page or the page ceiling. Successful results are
// written into the attached cache. Partial multi-page results are never
// returned: any page failing after retries aborts the whole fetch.
func (c *Client) Fetch(ctx context.Context, query Query) (*models.FlightsResponse, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	var (
		resp *models.FlightsResponse
		err  error
	)

	if query.FetchAll {
		resp, err = c.fetchAllPages(ctx, query)
	} else {
		resp, err = c.fetchPage(ctx, query, 0)
	}

	if err != nil {
		c.metrics.RecordFetch("failure")
		return nil, err
	}

	c.metrics.RecordFetch("success")

	if c.cache != nil {
		c.cache.Put(query.CacheKey(), resp)
	}

	return resp, nil
}

// fetchAllPages accumulates pages 0,1,2,... until an empty page signals end of
// data or the hard ceiling trips. The ceiling guards against an upstream that
// never returns an empty page.
func (c *Client) fetchAllPages(ctx context.Context, query Query) (*models.FlightsResponse, error) {
	accumulated := &models.FlightsResponse{Flights: make([]models.RawFlight, 0, 128)}

	for page := 0; page < c.maxPages; page++ {
		if page > 0 && c.pageDelay > 0 {
			select {
			case <-time.After(c.pageDelay):
			case <-ctx.Done():
				return nil, &TransportError{Err: ctx.Err()}
			}
		}

		resp, err := c.fetchPageWithRetry(ctx, query, page)
		if err != nil {
			c.logger.Error(ctx, "[FETCH_ABORT] Multi-page fetch aborted", logging.Fields{
				"page":      page,
				"query_key": query.CacheKey(),
			}, err)
			return nil, err
		}

		c.metrics.FetchPagesTotal.Inc()

		if len(resp.Flights) == 0 {
			break
		}

		accumulated.Flights = append(accumulated.Flights, resp.Flights...)
	}

	c.logger.Info(ctx, "[FETCH_COMPLETE] Multi-page fetch finished", logging.Fields{
		"flights":   len(accumulated.Flights),
		"query_key": query.CacheKey(),
	})

	return accumulated, nil
}

// fetchPageWithRetry retries transport failures with exponential backoff.
// Clean HTTP error statuses are not retried.
func (c *Client) fetchPageWithRetry(ctx context.Context, query Query, page int) (*models.FlightsResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.FetchRetriesTotal.Inc()
			backoff := c.baseDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Warn(ctx, "[FETCH_RETRY] Retrying page after transport failure", logging.Fields{
				"page":       page,
				"attempt":    attempt,
				"backoff_ms": backoff.Milliseconds(),
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, &TransportError{Err: ctx.Err()}
			}
		}

		resp, err := c.fetchPage(ctx, query, page)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			return nil, err
		}

		if ctx.Err() != nil {
			return nil, &TransportError{Err: ctx.Err()}
		}
	}

	return nil, fmt.Errorf("page %d failed after %d retries: %w", page, c.maxRetries, lastErr)
}

// fetchPage issues one bounded request for a single result page.
func (c *Client) fetchPage(ctx context.Context, query Query, page int) (*models.FlightsResponse, error) {
	endpoint := fmt.Sprintf("%s/flights", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	params := url.Values{}
	if query.Direction != "" {
		params.Set("flightDirection", query.Direction)
	}
	if query.Airline != "" {
		params.Set("airline", query.Airline)
	}
	if query.Date != "" {
		params.Set("scheduleDate", query.Date)
	}
	params.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("ResourceVersion", "v4")
	if c.appID != "" {
		req.Header.Set("app_id", c.appID)
		req.Header.Set("app_key", c.appKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := classifyStatus(resp.StatusCode)
		c.metrics.RecordUpstreamError(string(kind))
		return nil, &UpstreamError{Status: resp.StatusCode, Kind: kind}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var parsed models.FlightsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response page %d: %w", page, err)
	}

	return &parsed, nil
}
