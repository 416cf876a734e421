package product

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrInvalidEAN = errors.New("invalid EAN")
)

// Repository caches assembled products by EAN.
type Repository interface {
	Get(ctx context.Context, ean string) (Product, error)
	Put(ctx context.Context, p Product) error
	// ListByLabels returns cached products carrying any of labels, newest first.
	ListByLabels(ctx context.Context, labels []string, limit int) ([]Product, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make(map[string]Product, len(seed))}
	for _, p := range seed {
		r.storage[p.EAN] = p
	}
	return r
}

func (r *InMemoryRepository) Get(_ context.Context, ean string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[ean]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) Put(_ context.Context, p Product) error {
	if p.EAN == "" {
		return ErrInvalidEAN
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[p.EAN] = p
	return nil
}

func (r *InMemoryRepository) ListByLabels(_ context.Context, labels []string, limit int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		for _, l := range labels {
			if p.HasLabel(l) {
				out = append(out, p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FetchedAt.Equal(out[j].FetchedAt) {
			return out[i].EAN < out[j].EAN
		}
		return out[i].FetchedAt.After(out[j].FetchedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
