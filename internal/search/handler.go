package search

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-backend/internal/product"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/search", h.search)
	app.Get("/api/v1/search/labels", h.labels)
}

func (h *Handler) search(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	q := Query{
		Text:   c.Query("q"),
		Type:   strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Labels: product.SplitList(c.Query("labels")),
		Limit:  limit,
	}

	res, err := h.service.Search(c.UserContext(), q)
	if err != nil {
		if errors.Is(err, ErrInvalidType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(res)
}

func (h *Handler) labels(c *fiber.Ctx) error {
	return c.JSON(h.service.Labels())
}
