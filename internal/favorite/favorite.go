package favorite

import (
	"time"

	"github.com/wichananm65/grocery-backend/internal/nutrition"
	"github.com/wichananm65/grocery-backend/internal/pricehistory"
	"github.com/wichananm65/grocery-backend/internal/product"
)

// Favorite is the snapshot of a product a user saved, keyed by product ID.
type Favorite struct {
	ID          string   `json:"id"`
	EAN         string   `json:"ean"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Vendor      string   `json:"vendor"`
	ImageURL    string   `json:"imageUrl"`
	Price       float64  `json:"price"`
	Store       string   `json:"store"`
	Description string   `json:"description,omitempty"`
	Ingredients string   `json:"ingredients,omitempty"`
	Weight      float64  `json:"weight,omitempty"`
	WeightUnit  string   `json:"weightUnit,omitempty"`
	Category    []string `json:"category,omitempty"`

	nutrition.Macros

	Labels       []string             `json:"labels"`
	Allergens    []string             `json:"allergens"`
	PriceHistory []pricehistory.Entry `json:"priceHistory,omitempty"`
	DateAdded    time.Time            `json:"dateAdded"`
}

// Update is a partial change to a stored favorite. Nil fields are kept;
// labels and allergens are only replaced when present.
type Update struct {
	Name      *string  `json:"name"`
	Brand     *string  `json:"brand"`
	ImageURL  *string  `json:"imageUrl"`
	Price     *float64 `json:"price"`
	Store     *string  `json:"store"`
	Calories  *float64 `json:"calories"`
	Protein   *float64 `json:"protein"`
	Fat       *float64 `json:"fat"`
	Carbs     *float64 `json:"carbs"`
	Labels    []string `json:"labels"`
	Allergens []string `json:"allergens"`
}

// FromProduct snapshots a normalized product.
func FromProduct(p product.Product) Favorite {
	return Favorite{
		ID:           p.ID,
		EAN:          p.EAN,
		Name:         p.Name,
		Brand:        p.Brand,
		Vendor:       p.Vendor,
		ImageURL:     p.ImageURL,
		Price:        p.Price,
		Store:        p.Store,
		Description:  p.Description,
		Ingredients:  p.Ingredients,
		Weight:       p.Weight,
		WeightUnit:   p.WeightUnit,
		Category:     p.Category,
		Macros:       p.Macros,
		Labels:       p.Labels,
		Allergens:    p.Allergens,
		PriceHistory: p.PriceHistory,
	}
}

func (f Favorite) withDefaults() Favorite {
	if f.ID == "" {
		f.ID = f.EAN
	}
	if f.Labels == nil {
		f.Labels = []string{}
	}
	if f.Allergens == nil {
		f.Allergens = []string{}
	}
	return f
}

func (f Favorite) apply(u Update) Favorite {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Brand != nil {
		f.Brand = *u.Brand
	}
	if u.ImageURL != nil {
		f.ImageURL = *u.ImageURL
	}
	if u.Price != nil {
		f.Price = *u.Price
	}
	if u.Store != nil {
		f.Store = *u.Store
	}
	if u.Calories != nil {
		f.Calories = *u.Calories
	}
	if u.Protein != nil {
		f.Protein = *u.Protein
	}
	if u.Fat != nil {
		f.Fat = *u.Fat
	}
	if u.Carbs != nil {
		f.Carbs = *u.Carbs
	}
	if u.Labels != nil {
		f.Labels = u.Labels
	}
	if u.Allergens != nil {
		f.Allergens = u.Allergens
	}
	return f
}
