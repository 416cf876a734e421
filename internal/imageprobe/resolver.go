package imageprobe

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/grocery-backend/internal/metrics"
)

const DefaultPlaceholder = "/static/img/product-placeholder.png"

// Checker reports whether a URL currently serves an image.
type Checker interface {
	Probe(ctx context.Context, url string) bool
}

// Resolution is the outcome of Resolve. Index is the chosen candidate, or -1
// when there were no candidates at all.
type Resolution struct {
	Index       int
	ImageURL    string
	Placeholder bool
}

// Resolver picks the first candidate, in input order, whose image URL passes
// the checker.
type Resolver struct {
	checker     Checker
	placeholder string
	limit       int
	metrics     *metrics.Metrics
}

// NewResolver returns a Resolver. limit bounds concurrent probes; 0 probes all
// candidates at once.
func NewResolver(checker Checker, placeholder string, limit int, m *metrics.Metrics) *Resolver {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Resolver{checker: checker, placeholder: placeholder, limit: limit, metrics: m}
}

func (r *Resolver) Placeholder() string {
	return r.placeholder
}

// Resolve probes every candidate concurrently and waits for all of them. The
// lowest valid index wins regardless of completion order. With no valid
// candidate it falls back to index 0 and the placeholder image.
func (r *Resolver) Resolve(ctx context.Context, imageURLs []string) Resolution {
	if len(imageURLs) == 0 {
		r.metrics.ObserveResolution("placeholder")
		return Resolution{Index: -1, ImageURL: r.placeholder, Placeholder: true}
	}

	valid := make([]bool, len(imageURLs))
	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, u := range imageURLs {
		if u == "" {
			continue
		}
		g.Go(func() error {
			valid[i] = r.checker.Probe(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	for i, ok := range valid {
		if ok {
			r.metrics.ObserveResolution("image")
			return Resolution{Index: i, ImageURL: imageURLs[i]}
		}
	}
	r.metrics.ObserveResolution("placeholder")
	return Resolution{Index: 0, ImageURL: r.placeholder, Placeholder: true}
}
