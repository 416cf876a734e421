package product

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/product/ean/:ean", h.getByEAN)
	app.Get("/api/v1/products/search", h.search)
	app.Get("/api/v1/products/labels", h.listByLabels)
}

func (h *Handler) getByEAN(c *fiber.Ctx) error {
	ean := strings.TrimSpace(c.Params("ean"))
	p, err := h.service.Lookup(c.UserContext(), ean)
	if err != nil {
		return LookupError(c, ean, err)
	}
	return c.JSON(p)
}

func (h *Handler) search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "query parameter q is required"})
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	products, err := h.service.Search(c.UserContext(), q, limit)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

func (h *Handler) listByLabels(c *fiber.Ctx) error {
	labels := SplitList(c.Query("labels"))
	if len(labels) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "query parameter labels is required"})
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	products, err := h.service.ListByLabels(c.UserContext(), labels, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

// LookupError writes the response for a failed Lookup.
func LookupError(c *fiber.Ctx, ean string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidEAN):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid EAN: " + ean})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product with barcode " + ean + " not found in database."})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
}

// SplitList parses a comma separated query value, dropping blanks.
func SplitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
