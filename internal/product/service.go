package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/grocery-backend/internal/catalog"
	"github.com/wichananm65/grocery-backend/internal/metrics"
)

const (
	DefaultCacheTTL    = 6 * time.Hour
	DefaultSearchLimit = 20
	maxSearchLimit     = 100
	searchConcurrency  = 4
)

// Catalog is the remote product API.
type Catalog interface {
	FetchByEAN(ctx context.Context, ean string) (*catalog.Envelope, error)
	Search(ctx context.Context, query string, size int) ([]catalog.VendorProduct, error)
}

// Service looks products up in the cache first and falls back to the catalog.
type Service struct {
	catalog   Catalog
	assembler *Assembler
	cache     Repository
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type ServiceOption func(*Service)

func WithCacheTTL(d time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = d }
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(c Catalog, a *Assembler, cache Repository, opts ...ServiceOption) *Service {
	s := &Service{
		catalog:   c,
		assembler: a,
		cache:     cache,
		ttl:       DefaultCacheTTL,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the product for a barcode.
func (s *Service) Lookup(ctx context.Context, ean string) (Product, error) {
	if !ValidEAN(ean) {
		return Product{}, ErrInvalidEAN
	}

	if p, ok := s.fresh(ctx, ean); ok {
		s.metrics.ObserveLookup("cache")
		return p, nil
	}

	env, err := s.catalog.FetchByEAN(ctx, ean)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.metrics.ObserveLookup("not_found")
			return Product{}, ErrNotFound
		}
		s.metrics.ObserveLookup("error")
		return Product{}, fmt.Errorf("fetch product %s: %w", ean, err)
	}

	p := s.assembler.Assemble(ctx, env)
	if p == nil {
		s.metrics.ObserveLookup("not_found")
		return Product{}, ErrNotFound
	}
	s.metrics.ObserveLookup("catalog")
	s.store(ctx, *p)
	return *p, nil
}

// Cached returns a cached product regardless of age.
func (s *Service) Cached(ctx context.Context, ean string) (Product, bool) {
	p, err := s.cache.Get(ctx, ean)
	if err != nil {
		return Product{}, false
	}
	return p, true
}

// ListByLabels returns cached products carrying any of labels.
func (s *Service) ListByLabels(ctx context.Context, labels []string, limit int) ([]Product, error) {
	if len(labels) == 0 {
		return []Product{}, nil
	}
	return s.cache.ListByLabels(ctx, labels, clampLimit(limit))
}

// Search queries the catalog and assembles one product per EAN, in the order
// the catalog first returned each EAN.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	if query == "" {
		return []Product{}, nil
	}
	limit = clampLimit(limit)

	records, err := s.catalog.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	groups := groupByEAN(records)
	if len(groups) > limit {
		groups = groups[:limit]
	}

	assembled := make([]*Product, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)
	for i, env := range groups {
		g.Go(func() error {
			assembled[i] = s.assembler.Assemble(gctx, env)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Product, 0, len(assembled))
	for _, p := range assembled {
		if p == nil {
			continue
		}
		if p.EAN != "" {
			s.store(ctx, *p)
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *Service) fresh(ctx context.Context, ean string) (Product, bool) {
	p, err := s.cache.Get(ctx, ean)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("product cache read failed", zap.String("ean", ean), zap.Error(err))
		}
		return Product{}, false
	}
	if s.ttl > 0 && s.now().Sub(p.FetchedAt) > s.ttl {
		return Product{}, false
	}
	return p, true
}

func (s *Service) store(ctx context.Context, p Product) {
	if err := s.cache.Put(ctx, p); err != nil {
		s.logger.Warn("product cache write failed", zap.String("ean", p.EAN), zap.Error(err))
	}
}

// groupByEAN folds search records into one envelope per EAN. Records without
// an EAN stand alone. Nutrition and allergens come from the first record of the
// group that has them.
func groupByEAN(records []catalog.VendorProduct) []*catalog.Envelope {
	out := make([]*catalog.Envelope, 0)
	index := make(map[string]int)
	for _, rec := range records {
		i, ok := index[rec.EAN]
		if !ok || rec.EAN == "" {
			out = append(out, &catalog.Envelope{Data: &catalog.EnvelopeData{EAN: rec.EAN}})
			i = len(out) - 1
			if rec.EAN != "" {
				index[rec.EAN] = i
			}
		}
		data := out[i].Data
		data.Products = append(data.Products, rec)
		if len(data.Nutrition) == 0 && len(rec.Nutrition) > 0 {
			data.Nutrition = rec.Nutrition
		}
		if len(data.Allergens) == 0 && len(rec.Allergens) > 0 {
			data.Allergens = rec.Allergens
		}
	}
	return out
}

// ValidEAN accepts EAN-8, UPC-A, EAN-13 and GTIN-14 digit strings.
func ValidEAN(ean string) bool {
	if len(ean) < 8 || len(ean) > 14 {
		return false
	}
	for _, r := range ean {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
