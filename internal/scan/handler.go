package scan

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-backend/internal/product"
	"github.com/wichananm65/grocery-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/scan", h.scan)
	app.Post("/api/v1/scan/retry", h.retry)
}

type scanRequest struct {
	EAN  string `json:"ean"`
	Type string `json:"type"`
}

func (h *Handler) scan(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(scanRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	res, err := h.service.Scan(c.UserContext(), userID, payload.EAN, payload.Type)
	return h.respond(c, res, err)
}

func (h *Handler) retry(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	res, err := h.service.Retry(c.UserContext(), userID)
	return h.respond(c, res, err)
}

func (h *Handler) respond(c *fiber.Ctx, res Result, err error) error {
	switch {
	case err == nil:
		return c.JSON(res)
	case errors.Is(err, ErrQRCode), errors.Is(err, ErrNoPrevious), errors.Is(err, ErrEmptyBarcode):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return product.LookupError(c, res.EAN, err)
	}
}
