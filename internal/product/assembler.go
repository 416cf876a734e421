package product

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-backend/internal/catalog"
	"github.com/wichananm65/grocery-backend/internal/imageprobe"
	"github.com/wichananm65/grocery-backend/internal/nutrition"
	"github.com/wichananm65/grocery-backend/internal/pricehistory"
)

const (
	unknownID   = "unknown"
	unknownName = "Unknown Product"
)

// ImageResolver picks the vendor record whose image is displayable.
type ImageResolver interface {
	Resolve(ctx context.Context, imageURLs []string) imageprobe.Resolution
}

// Assembler turns a catalog envelope into a Product.
type Assembler struct {
	resolver ImageResolver
	rules    nutrition.Rules
	now      func() time.Time
	logger   *zap.Logger
}

type AssemblerOption func(*Assembler)

// WithClock fixes the fetch time used for prices without a date.
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) { a.now = now }
}

func WithAssemblerLogger(l *zap.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAssembler(resolver ImageResolver, rules nutrition.Rules, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		resolver: resolver,
		rules:    rules,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) Rules() nutrition.Rules {
	return a.rules
}

// Assemble returns nil when the envelope holds no vendor records. Otherwise it
// never fails: anything missing upstream becomes an empty default.
func (a *Assembler) Assemble(ctx context.Context, env *catalog.Envelope) *Product {
	if env == nil || env.Data == nil || len(env.Data.Products) == 0 {
		return nil
	}
	data := env.Data
	fetchedAt := a.now().UTC()

	images := make([]string, len(data.Products))
	for i, vp := range data.Products {
		images[i] = vp.Image
	}
	res := a.resolver.Resolve(ctx, images)
	idx := res.Index
	if idx < 0 || idx >= len(data.Products) {
		idx = 0
	}
	chosen := data.Products[idx]

	lookup := nutrition.Extract(data.Nutrition)
	if missing := a.rules.MissingCodes(lookup); len(missing) > 0 && !a.rules.RequireReported {
		a.logger.Warn("labels derived from partial nutrition data",
			zap.String("ean", data.EAN),
			zap.Strings("missing", missing),
		)
	}

	p := &Product{
		ID:           productID(data.EAN, chosen.EAN),
		EAN:          firstNonEmpty(data.EAN, chosen.EAN),
		Name:         firstNonEmpty(chosen.Name, unknownName),
		Brand:        chosen.Brand,
		Vendor:       chosen.Vendor,
		Description:  cleanText(chosen.Description),
		Ingredients:  cleanText(chosen.Ingredients),
		ImageURL:     res.ImageURL,
		URL:          chosen.URL,
		Weight:       chosen.Weight,
		WeightUnit:   chosen.WeightUnit,
		Category:     categoryNames(chosen.Category),
		Macros:       lookup.Macros(a.rules.Codes),
		Labels:       a.rules.Classify(lookup),
		Allergens:    presentAllergens(data.Allergens),
		PriceHistory: pricehistory.Merge(series(data.Products), fetchedAt),
		FetchedAt:    fetchedAt,
	}
	if chosen.CurrentPrice != nil {
		p.Price = chosen.CurrentPrice.Price
	}
	if chosen.Store != nil {
		p.Store = chosen.Store.Name
		p.StoreLogo = chosen.Store.Logo
	}
	return p
}

func productID(envelopeEAN, recordEAN string) string {
	return firstNonEmpty(envelopeEAN, recordEAN, unknownID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func categoryNames(cats []catalog.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		if c.Name != "" {
			out = append(out, c.Name)
		}
	}
	return out
}

func presentAllergens(allergens []catalog.Allergen) []string {
	out := make([]string, 0, len(allergens))
	for _, al := range allergens {
		if !al.Present() {
			continue
		}
		out = append(out, firstNonEmpty(al.DisplayName, al.Code))
	}
	return out
}

func series(products []catalog.VendorProduct) []pricehistory.Series {
	out := make([]pricehistory.Series, 0, len(products))
	for _, vp := range products {
		out = append(out, pricehistory.Series{
			Store:   vp.StoreName(),
			History: vp.PriceHistory,
			Current: vp.CurrentPrice.Point(),
		})
	}
	return out
}
