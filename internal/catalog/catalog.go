package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/wichananm65/grocery-backend/internal/nutrition"
	"github.com/wichananm65/grocery-backend/internal/pricehistory"
)

// Envelope is the product-by-EAN response.
type Envelope struct {
	Data *EnvelopeData `json:"data"`
}

// UnmarshalJSON leaves Data nil unless the catalog sent an object, so an empty
// array or null data reads as "no product".
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Data = nil
	data := bytes.TrimSpace(raw.Data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var d EnvelopeData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	e.Data = &d
	return nil
}

type EnvelopeData struct {
	EAN       string           `json:"ean"`
	Products  []VendorProduct  `json:"products"`
	Nutrition []nutrition.Item `json:"nutrition"`
	Allergens []Allergen       `json:"allergens"`
}

// VendorProduct is one store's record of a product. Search results carry
// nutrition and allergens inline; EAN lookups carry them on the envelope.
type VendorProduct struct {
	ID           int                  `json:"id"`
	EAN          string               `json:"ean"`
	Name         string               `json:"name"`
	Brand        string               `json:"brand"`
	Vendor       string               `json:"vendor"`
	Description  string               `json:"description"`
	Ingredients  string               `json:"ingredients"`
	URL          string               `json:"url"`
	Image        string               `json:"image"`
	Category     []Category           `json:"category"`
	CurrentPrice *Price               `json:"current_price"`
	PriceHistory []pricehistory.Point `json:"price_history"`
	Store        *Store               `json:"store"`
	Weight       float64              `json:"weight"`
	WeightUnit   string               `json:"weight_unit"`
	Nutrition    []nutrition.Item     `json:"nutrition,omitempty"`
	Allergens    []Allergen           `json:"allergens,omitempty"`
}

type Category struct {
	ID    int    `json:"id"`
	Depth int    `json:"depth"`
	Name  string `json:"name"`
}

type Store struct {
	Name string `json:"name"`
	Code string `json:"code"`
	URL  string `json:"url"`
	Logo string `json:"logo"`
}

type Allergen struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Contains    string `json:"contains"`
}

// Present reports whether the product contains the allergen, as opposed to
// "NO" or "CAN_CONTAIN_TRACES".
func (a Allergen) Present() bool {
	return strings.EqualFold(strings.TrimSpace(a.Contains), "YES")
}

// Price is the current price of a vendor record. The catalog sends either an
// object {price, date} or a bare value; prices may be numbers or numeric
// strings.
type Price struct {
	Price float64 `json:"price"`
	Date  string  `json:"date,omitempty"`
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] != '{' {
		v, err := pricehistory.DecodePrice(b)
		if err != nil {
			return err
		}
		p.Price = v
		return nil
	}
	var pt pricehistory.Point
	if err := json.Unmarshal(b, &pt); err != nil {
		return err
	}
	*p = Price{Price: pt.Price, Date: pt.Date}
	return nil
}

// Point converts the price to a history point.
func (p *Price) Point() *pricehistory.Point {
	if p == nil {
		return nil
	}
	return &pricehistory.Point{Price: p.Price, Date: p.Date}
}

// StoreName returns the store name, or "" when the record has none.
func (v VendorProduct) StoreName() string {
	if v.Store == nil {
		return ""
	}
	return v.Store.Name
}
