package cart

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/wichananm65/grocery-backend/internal/nutrition"
	"github.com/wichananm65/grocery-backend/internal/product"
)

// ProductSource resolves cart lines to product details without calling the
// remote catalog.
type ProductSource interface {
	Cached(ctx context.Context, ean string) (product.Product, bool)
}

// Item is one cart line. Product fields are empty when the product is no
// longer cached.
type Item struct {
	EAN       string   `json:"ean"`
	Quantity  int      `json:"quantity"`
	Name      string   `json:"name"`
	ImageURL  string   `json:"imageUrl"`
	Price     float64  `json:"price"`
	Store     string   `json:"store"`
	Labels    []string `json:"labels"`
	LineTotal float64  `json:"lineTotal"`

	nutrition.Macros
}

// Cart is the enriched view returned to clients. Totals multiply each
// product's reported macros by its quantity.
type Cart struct {
	Items         []Item           `json:"items"`
	TotalQuantity int              `json:"totalQuantity"`
	TotalPrice    float64          `json:"totalPrice"`
	Totals        nutrition.Macros `json:"totals"`
}

type Service struct {
	repo     Repository
	products ProductSource
	now      func() time.Time
}

func NewService(repo Repository, products ProductSource) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

// AddToCart adds qty units of ean. A negative qty decrements and removes the
// line at zero; qty == 0 only reads the cart.
func (s *Service) AddToCart(ctx context.Context, userID int, ean string, qty int) (Cart, error) {
	ean = strings.TrimSpace(ean)
	if !product.ValidEAN(ean) {
		return Cart{}, ErrInvalidEAN
	}
	if qty == 0 {
		return s.GetCart(ctx, userID)
	}
	lines, err := s.repo.Adjust(userID, ean, qty, s.timestamp())
	if err != nil {
		return Cart{}, err
	}
	return s.enrich(ctx, lines), nil
}

func (s *Service) GetCart(ctx context.Context, userID int) (Cart, error) {
	lines, err := s.repo.Quantities(userID)
	if err != nil {
		return Cart{}, err
	}
	return s.enrich(ctx, lines), nil
}

func (s *Service) RemoveFromCart(ctx context.Context, userID int, ean string) (Cart, error) {
	lines, err := s.repo.Remove(userID, strings.TrimSpace(ean), s.timestamp())
	if err != nil {
		return Cart{}, err
	}
	return s.enrich(ctx, lines), nil
}

func (s *Service) ClearCart(userID int) error {
	return s.repo.Clear(userID, s.timestamp())
}

func (s *Service) enrich(ctx context.Context, lines map[string]int) Cart {
	eans := make([]string, 0, len(lines))
	for ean := range lines {
		eans = append(eans, ean)
	}
	sort.Strings(eans)

	cart := Cart{Items: make([]Item, 0, len(eans))}
	for _, ean := range eans {
		qty := lines[ean]
		item := Item{EAN: ean, Quantity: qty, Labels: []string{}}
		if p, ok := s.products.Cached(ctx, ean); ok {
			item.Name = p.Name
			item.ImageURL = p.ImageURL
			item.Price = p.Price
			item.Store = p.Store
			item.Macros = p.Macros
			if p.Labels != nil {
				item.Labels = p.Labels
			}
			item.LineTotal = p.Price * float64(qty)
			cart.Totals = cart.Totals.Add(p.Macros.Scale(float64(qty)))
		}
		cart.TotalQuantity += qty
		cart.TotalPrice += item.LineTotal
		cart.Items = append(cart.Items, item)
	}
	return cart
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
