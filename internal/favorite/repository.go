package favorite

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFavorite     = errors.New("product not in favorites")
	ErrInvalidFavorite = errors.New("favorite needs an id or ean")
)

// Repository persists favorites per user. Insert and Delete are idempotent.
type Repository interface {
	List(ctx context.Context, userID int) ([]Favorite, error)
	Get(ctx context.Context, userID int, id string) (Favorite, error)
	Insert(ctx context.Context, userID int, f Favorite) (bool, error)
	Save(ctx context.Context, userID int, f Favorite) error
	Delete(ctx context.Context, userID int, id string) error
	Clear(ctx context.Context, userID int) error
}

// InMemoryRepository keeps favorites in insertion order.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[int][]Favorite
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[int][]Favorite)}
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Favorite, len(r.items[userID]))
	copy(out, r.items[userID])
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID int, id string) (Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := indexOf(r.items[userID], id); i >= 0 {
		return r.items[userID][i], nil
	}
	return Favorite{}, ErrNotFavorite
}

func (r *InMemoryRepository) Insert(_ context.Context, userID int, f Favorite) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if indexOf(r.items[userID], f.ID) >= 0 {
		return false, nil
	}
	r.items[userID] = append(r.items[userID], f)
	return true, nil
}

func (r *InMemoryRepository) Save(_ context.Context, userID int, f Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.items[userID], f.ID)
	if i < 0 {
		return ErrNotFavorite
	}
	r.items[userID][i] = f
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, userID int, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.items[userID]
	if i := indexOf(list, id); i >= 0 {
		r.items[userID] = append(list[:i:i], list[i+1:]...)
	}
	return nil
}

func (r *InMemoryRepository) Clear(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, userID)
	return nil
}

func indexOf(list []Favorite, id string) int {
	for i, f := range list {
		if f.ID == id {
			return i
		}
	}
	return -1
}
