package recipe

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/recipes", h.list)
	app.Get("/api/v1/recipe/:id", h.getByID)
}

func (h *Handler) list(c *fiber.Ctx) error {
	return c.JSON(h.service.List(c.Query("q")))
}

func (h *Handler) getByID(c *fiber.Ctx) error {
	rec, err := h.service.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Recipe not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(rec)
}
