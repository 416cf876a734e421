package product

import (
	"strings"
	"time"

	"github.com/wichananm65/grocery-backend/internal/nutrition"
	"github.com/wichananm65/grocery-backend/internal/pricehistory"
)

// Product is the normalized product shown to the client. Every field is
// populated; values the catalog did not provide are zero or empty, never nil.
// JSON tags follow the camelCase convention used elsewhere in the project.
type Product struct {
	ID          string   `json:"id"`
	EAN         string   `json:"ean"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Vendor      string   `json:"vendor"`
	Description string   `json:"description"`
	Ingredients string   `json:"ingredients"`
	ImageURL    string   `json:"imageUrl"`
	Price       float64  `json:"price"`
	Store       string   `json:"store"`
	StoreLogo   string   `json:"storeLogo"`
	URL         string   `json:"url"`
	Weight      float64  `json:"weight"`
	WeightUnit  string   `json:"weightUnit"`
	Category    []string `json:"category"`

	nutrition.Macros

	Labels       []string             `json:"labels"`
	Allergens    []string             `json:"allergens"`
	PriceHistory []pricehistory.Entry `json:"priceHistory"`
	FetchedAt    time.Time            `json:"fetchedAt"`
}

// HasLabel reports whether the product carries label, ignoring case.
func (p Product) HasLabel(label string) bool {
	for _, l := range p.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}
