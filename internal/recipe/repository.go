package recipe

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

var ErrNotFound = errors.New("recipe not found")

//go:embed recipes.yaml
var seedYAML []byte

type Repository interface {
	List() []Recipe
	GetByID(id string) (Recipe, error)
}

// InMemoryRepository serves a fixed recipe catalog in seed order.
type InMemoryRepository struct {
	mu      sync.RWMutex
	recipes []Recipe
}

func NewInMemoryRepository(seed []Recipe) *InMemoryRepository {
	repo := &InMemoryRepository{recipes: make([]Recipe, 0, len(seed))}
	for _, r := range seed {
		if r.Labels == nil {
			r.Labels = []string{}
		}
		repo.recipes = append(repo.recipes, r)
	}
	return repo
}

// DefaultSeed returns the bundled recipe catalog.
func DefaultSeed() ([]Recipe, error) {
	return ParseSeed(seedYAML)
}

// ParseSeed decodes a YAML document with a top-level recipes list.
func ParseSeed(content []byte) ([]Recipe, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}
	var out []Recipe
	if err := k.Unmarshal("recipes", &out); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}
	seen := make(map[string]bool, len(out))
	for _, r := range out {
		if r.ID == "" || seen[r.ID] {
			return nil, fmt.Errorf("recipe id %q is empty or duplicated", r.ID)
		}
		seen[r.ID] = true
	}
	return out, nil
}

func (r *InMemoryRepository) List() []Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Recipe, len(r.recipes))
	copy(out, r.recipes)
	return out
}

func (r *InMemoryRepository) GetByID(id string) (Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.recipes {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Recipe{}, ErrNotFound
}
