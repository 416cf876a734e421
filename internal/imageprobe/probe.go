package imageprobe

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-backend/internal/metrics"
)

const DefaultTimeout = 3 * time.Second

// Prober checks whether a URL currently serves an image.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type Option func(*Prober)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) { p.client = c }
}

func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Prober) { p.metrics = m }
}

func NewProber(opts ...Option) *Prober {
	p := &Prober{
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe issues a HEAD request and reports true only for a 2xx response whose
// Content-Type is an image type. Every failure, including timeouts, is false.
func (p *Prober) Probe(ctx context.Context, rawURL string) bool {
	if !probeable(rawURL) {
		p.metrics.ObserveProbe("invalid")
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		p.metrics.ObserveProbe("invalid")
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("image probe failed", zap.String("url", rawURL), zap.Error(err))
		p.metrics.ObserveProbe("error")
		return false
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300 &&
		strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "image/")
	if !ok {
		p.logger.Debug("image probe rejected",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.String("content_type", resp.Header.Get("Content-Type")),
		)
		p.metrics.ObserveProbe("invalid")
		return false
	}
	p.metrics.ObserveProbe("valid")
	return true
}

func probeable(rawURL string) bool {
	if strings.TrimSpace(rawURL) == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
