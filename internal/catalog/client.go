package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wichananm65/grocery-backend/internal/metrics"
)

var (
	ErrNotFound     = errors.New("product not found in catalog")
	ErrMissingToken = errors.New("missing CATALOG_API_TOKEN")
)

const (
	eanPath    = "get-product-by-ean"
	searchPath = "search-products"

	defaultMaxAttempts = 4
	notFoundMarker     = "No query results for model"
)

type Config struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	RateLimitRPS float64
	MaxAttempts  int
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *metrics.Metrics
	newBackOff func() backoff.BackOff
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBackOff replaces the retry policy. fn is called once per request since
// backoff policies are stateful.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = fn }
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     zap.NewNop(),
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchByEAN returns the catalog envelope for a barcode. ErrNotFound is
// returned when the catalog has no such product.
func (c *Client) FetchByEAN(ctx context.Context, ean string) (*Envelope, error) {
	body, err := c.fetchJSON(ctx, eanPath, url.Values{"ean": {ean}})
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", ean, err)
	}
	return &env, nil
}

// Search returns vendor records matching a free-text query. Unrecognized
// response shapes yield zero results.
func (c *Client) Search(ctx context.Context, query string, size int) ([]VendorProduct, error) {
	params := url.Values{"search": {query}}
	if size > 0 {
		params.Set("size", strconv.Itoa(size))
	}
	body, err := c.fetchJSON(ctx, searchPath, params)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []VendorProduct{}, nil
		}
		return nil, err
	}
	return decodeSearch(body), nil
}

func decodeSearch(body []byte) []VendorProduct {
	var list []VendorProduct
	if err := json.Unmarshal(body, &list); err == nil {
		return nonNil(list)
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil || len(wrapped.Data) == 0 {
		return []VendorProduct{}
	}
	if err := json.Unmarshal(wrapped.Data, &list); err == nil {
		return nonNil(list)
	}

	var nested struct {
		Products []VendorProduct `json:"products"`
	}
	if err := json.Unmarshal(wrapped.Data, &nested); err == nil {
		return nonNil(nested.Products)
	}
	return []VendorProduct{}
}

func nonNil(v []VendorProduct) []VendorProduct {
	if v == nil {
		return []VendorProduct{}
	}
	return v
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if strings.TrimSpace(c.cfg.Token) == "" {
		return nil, ErrMissingToken
	}

	u, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint)
	if err != nil {
		return nil, err
	}
	u.RawQuery = params.Encode()

	op := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.ObserveCatalogRequest(endpoint, "error", time.Since(start).Seconds())
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		c.metrics.ObserveCatalogRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("read catalog response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if resp.StatusCode == http.StatusNotFound || strings.Contains(string(body), notFoundMarker) {
				return nil, backoff.Permanent(ErrNotFound)
			}
			statusErr := fmt.Errorf("catalog api error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
			if isRetryableStatus(resp.StatusCode) {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}
		return body, nil
	}

	attempt := 0
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			attempt++
			c.logger.Warn("catalog retrying",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", next),
				zap.Error(err),
			)
		}),
	)
}

// defaultBackOff starts at 250ms and grows by 2x with jitter, capped at 5s.
func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.MaxInterval = 5 * time.Second
	return b
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
