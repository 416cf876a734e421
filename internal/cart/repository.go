package cart

import (
	"errors"
	"sync"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrInvalidEAN = errors.New("invalid ean")
)

// Repository stores per-user quantities keyed by EAN.
// Quantities never drop below one; an adjustment reaching zero removes the line.
type Repository interface {
	Adjust(userID int, ean string, delta int, updatedAt string) (map[string]int, error)
	Quantities(userID int) (map[string]int, error)
	Remove(userID int, ean string, updatedAt string) (map[string]int, error)
	Clear(userID int, updatedAt string) error
}

// InMemoryRepository is used for tests and local scenarios. Carts are created
// on first write.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int]map[string]int
}

func NewInMemoryRepository(seed map[int]map[string]int) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[int]map[string]int, len(seed))}
	for id, lines := range seed {
		r.carts[id] = copyLines(lines)
	}
	return r
}

func (r *InMemoryRepository) Adjust(userID int, ean string, delta int, _ string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines, ok := r.carts[userID]
	if !ok {
		lines = make(map[string]int)
		r.carts[userID] = lines
	}
	applyDelta(lines, ean, delta)
	return copyLines(lines), nil
}

func (r *InMemoryRepository) Quantities(userID int) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyLines(r.carts[userID]), nil
}

func (r *InMemoryRepository) Remove(userID int, ean string, _ string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.carts[userID]
	delete(lines, ean)
	return copyLines(lines), nil
}

func (r *InMemoryRepository) Clear(userID int, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func applyDelta(lines map[string]int, ean string, delta int) {
	next := lines[ean] + delta
	if next <= 0 {
		delete(lines, ean)
		return
	}
	lines[ean] = next
}

func copyLines(lines map[string]int) map[string]int {
	out := make(map[string]int, len(lines))
	for k, v := range lines {
		out[k] = v
	}
	return out
}
