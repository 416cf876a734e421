package favorite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wichananm65/grocery-backend/internal/product"
)

// ProductLookup resolves a barcode to a normalized product.
type ProductLookup interface {
	Lookup(ctx context.Context, ean string) (product.Product, error)
}

type Service struct {
	repo     Repository
	products ProductLookup
	now      func() time.Time
}

func NewService(repo Repository, products ProductLookup) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

func (s *Service) GetFavorites(ctx context.Context, userID int) ([]Favorite, error) {
	favs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range favs {
		favs[i] = favs[i].withDefaults()
	}
	return favs, nil
}

func (s *Service) GetFavorite(ctx context.Context, userID int, id string) (Favorite, error) {
	f, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Favorite{}, err
	}
	return f.withDefaults(), nil
}

// AddFavorite stores a snapshot. Adding a product already present returns the
// stored copy with added == false.
func (s *Service) AddFavorite(ctx context.Context, userID int, f Favorite) (Favorite, bool, error) {
	f.ID = strings.TrimSpace(f.ID)
	f.EAN = strings.TrimSpace(f.EAN)
	f = f.withDefaults()
	if f.ID == "" {
		return Favorite{}, false, ErrInvalidFavorite
	}
	f.DateAdded = s.now().UTC()

	added, err := s.repo.Insert(ctx, userID, f)
	if err != nil {
		return Favorite{}, false, err
	}
	if !added {
		existing, err := s.GetFavorite(ctx, userID, f.ID)
		return existing, false, err
	}
	return f, true, nil
}

// AddByEAN looks the product up and stores its snapshot.
func (s *Service) AddByEAN(ctx context.Context, userID int, ean string) (Favorite, bool, error) {
	p, err := s.products.Lookup(ctx, strings.TrimSpace(ean))
	if err != nil {
		return Favorite{}, false, err
	}
	return s.AddFavorite(ctx, userID, FromProduct(p))
}

func (s *Service) RemoveFavorite(ctx context.Context, userID int, id string) error {
	return s.repo.Delete(ctx, userID, strings.TrimSpace(id))
}

func (s *Service) IsFavorite(ctx context.Context, userID int, id string) (bool, error) {
	_, err := s.repo.Get(ctx, userID, id)
	if errors.Is(err, ErrNotFavorite) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) ClearFavorites(ctx context.Context, userID int) error {
	return s.repo.Clear(ctx, userID)
}

// UpdateFavorite merges u into the stored favorite. The id and dateAdded
// never change.
func (s *Service) UpdateFavorite(ctx context.Context, userID int, id string, u Update) (Favorite, error) {
	existing, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Favorite{}, err
	}
	updated := existing.apply(u).withDefaults()
	if err := s.repo.Save(ctx, userID, updated); err != nil {
		return Favorite{}, err
	}
	return updated, nil
}
