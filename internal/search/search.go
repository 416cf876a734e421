package search

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/wichananm65/grocery-backend/internal/product"
	"github.com/wichananm65/grocery-backend/internal/recipe"
)

const (
	TypeAll      = "all"
	TypeRecipes  = "recipes"
	TypeProducts = "products"

	defaultLimit = 20
)

var ErrInvalidType = errors.New("type must be all, recipes or products")

// Products is the product side of a search.
type Products interface {
	Search(ctx context.Context, query string, limit int) ([]product.Product, error)
	ListByLabels(ctx context.Context, labels []string, limit int) ([]product.Product, error)
}

// Recipes is the recipe catalog.
type Recipes interface {
	All() []recipe.Recipe
}

type Query struct {
	Text   string
	Type   string
	Labels []string
	Limit  int
}

// Active reports whether any filter narrows the result.
func (q Query) Active() bool {
	return strings.TrimSpace(q.Text) != "" || (q.Type != "" && q.Type != TypeAll) || len(q.Labels) > 0
}

type Result struct {
	Recipes      []recipe.Summary  `json:"recipes"`
	Products     []product.Product `json:"products"`
	Total        int               `json:"total"`
	ProductError string            `json:"productError,omitempty"`
}

type Service struct {
	products   Products
	recipes    Recipes
	vocabulary []string
	logger     *zap.Logger
}

// NewService builds the combined search. vocabulary is the product label set
// offered alongside recipe labels.
func NewService(products Products, recipes Recipes, vocabulary []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{products: products, recipes: recipes, vocabulary: vocabulary, logger: logger}
}

// Search filters recipes and products. Without an active filter the result is
// empty. A failing product search keeps the recipe results and reports the
// failure in ProductError.
func (s *Service) Search(ctx context.Context, q Query) (Result, error) {
	res := Result{Recipes: []recipe.Summary{}, Products: []product.Product{}}
	if q.Type == "" {
		q.Type = TypeAll
	}
	if q.Type != TypeAll && q.Type != TypeRecipes && q.Type != TypeProducts {
		return res, ErrInvalidType
	}
	if !q.Active() {
		return res, nil
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}

	fold := cases.Fold()
	text := fold.String(strings.TrimSpace(q.Text))
	labels := make([]string, 0, len(q.Labels))
	for _, l := range q.Labels {
		labels = append(labels, fold.String(l))
	}

	if q.Type != TypeProducts {
		for _, r := range s.recipes.All() {
			if matchesText(fold, text, r.Name, r.Labels) && matchesLabels(fold, labels, r.Labels) {
				res.Recipes = append(res.Recipes, r.Summary())
			}
		}
	}

	if q.Type != TypeRecipes && (text != "" || len(labels) > 0) {
		products, err := s.searchProducts(ctx, strings.TrimSpace(q.Text), q.Labels, q.Limit)
		if err != nil {
			s.logger.Warn("product search failed", zap.String("query", q.Text), zap.Error(err))
			res.ProductError = err.Error()
		}
		for _, p := range products {
			if matchesLabels(fold, labels, p.Labels) {
				res.Products = append(res.Products, p)
			}
		}
	}

	res.Total = len(res.Recipes) + len(res.Products)
	return res, nil
}

func (s *Service) searchProducts(ctx context.Context, text string, labels []string, limit int) ([]product.Product, error) {
	if text != "" {
		return s.products.Search(ctx, text, limit)
	}
	return s.products.ListByLabels(ctx, labels, limit)
}

// Labels returns the sorted, case-insensitively unique labels across the
// product vocabulary and all recipes. Vocabulary spelling wins.
func (s *Service) Labels() []string {
	fold := cases.Fold()
	seen := make(map[string]string)
	add := func(l string) {
		l = strings.TrimSpace(l)
		if l == "" {
			return
		}
		key := fold.String(l)
		if _, ok := seen[key]; !ok {
			seen[key] = l
		}
	}
	for _, l := range s.vocabulary {
		add(l)
	}
	for _, r := range s.recipes.All() {
		for _, l := range r.Labels {
			add(l)
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, seen[k])
	}
	return out
}

func matchesText(fold cases.Caser, text, name string, labels []string) bool {
	if text == "" {
		return true
	}
	if strings.Contains(fold.String(name), text) {
		return true
	}
	for _, l := range labels {
		if strings.Contains(fold.String(l), text) {
			return true
		}
	}
	return false
}

// matchesLabels reports whether item carries any of the wanted (folded) labels.
func matchesLabels(fold cases.Caser, wanted, labels []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, l := range labels {
		key := fold.String(l)
		for _, w := range wanted {
			if key == w {
				return true
			}
		}
	}
	return false
}
