package scan

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-backend/internal/product"
)

const TypeQR = "qr"

var (
	ErrQRCode       = errors.New("QR codes are not supported. Please scan a product barcode.")
	ErrNoPrevious   = errors.New("no previous scan to retry")
	ErrEmptyBarcode = errors.New("barcode is required")
)

// ProductLookup resolves a barcode to a product.
type ProductLookup interface {
	Lookup(ctx context.Context, ean string) (product.Product, error)
}

// RestrictionSource returns the active dietary restrictions of a user.
type RestrictionSource interface {
	ActiveRestrictions(userID int) ([]string, error)
}

type Result struct {
	EAN       string          `json:"ean"`
	Product   product.Product `json:"product"`
	Conflicts []Conflict      `json:"conflicts"`
	Stale     bool            `json:"stale"`
}

type Service struct {
	products     ProductLookup
	restrictions RestrictionSource
	tracker      *Tracker
	logger       *zap.Logger
}

func NewService(products ProductLookup, restrictions RestrictionSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products:     products,
		restrictions: restrictions,
		tracker:      NewTracker(),
		logger:       logger,
	}
}

// Scan looks up a scanned code. codeType is the symbology reported by the
// scanner; QR codes are rejected before any lookup.
func (s *Service) Scan(ctx context.Context, userID int, ean, codeType string) (Result, error) {
	if strings.EqualFold(strings.TrimSpace(codeType), TypeQR) {
		return Result{}, ErrQRCode
	}
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return Result{}, ErrEmptyBarcode
	}
	return s.run(ctx, s.tracker.Begin(userID, ean))
}

// Retry repeats the user's last scan.
func (s *Service) Retry(ctx context.Context, userID int) (Result, error) {
	last := s.tracker.Last(userID)
	if last == "" {
		return Result{}, ErrNoPrevious
	}
	return s.run(ctx, s.tracker.Begin(userID, last))
}

func (s *Service) run(ctx context.Context, tk Ticket) (Result, error) {
	p, err := s.products.Lookup(ctx, tk.EAN)
	if err != nil {
		return Result{EAN: tk.EAN, Stale: !s.tracker.Current(tk)}, err
	}

	res := Result{EAN: tk.EAN, Product: p, Conflicts: []Conflict{}}
	if restrictions, err := s.restrictions.ActiveRestrictions(tk.UserID); err != nil {
		s.logger.Warn("load restrictions failed", zap.Int("user_id", tk.UserID), zap.Error(err))
	} else {
		res.Conflicts = Conflicts(p, restrictions)
	}
	res.Stale = !s.tracker.Current(tk)
	if res.Stale {
		s.logger.Debug("scan superseded", zap.Int("user_id", tk.UserID), zap.String("ean", tk.EAN))
	}
	return res, nil
}
