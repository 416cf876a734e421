package favorite

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/grocery-backend/internal/product"
	"github.com/wichananm65/grocery-backend/internal/user"
)

// Handler delegates favorite operations to the favorite service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/favorites", h.getFavorites)
	app.Post("/api/v1/favorites", h.addFavorite)
	app.Delete("/api/v1/favorites", h.removeFavorite)
	app.Delete("/api/v1/favorites/all", h.clearFavorites)
	app.Get("/api/v1/favorites/:id/status", h.isFavorite)
	app.Get("/api/v1/favorites/:id", h.getFavorite)
	app.Patch("/api/v1/favorites/:id", h.updateFavorite)
}

type removeRequest struct {
	ID string `json:"id"`
}

func (h *Handler) addFavorite(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(Favorite)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var (
		fav   Favorite
		added bool
	)
	// a bare {ean} is resolved through the product lookup
	if payload.ID == "" && payload.Name == "" && payload.EAN != "" {
		fav, added, err = h.service.AddByEAN(c.UserContext(), userID, payload.EAN)
		if err != nil && !errors.Is(err, ErrInvalidFavorite) {
			return product.LookupError(c, payload.EAN, err)
		}
	} else {
		fav, added, err = h.service.AddFavorite(c.UserContext(), userID, *payload)
	}
	if err != nil {
		return writeError(c, err)
	}

	status := fiber.StatusOK
	if added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"added": added, "favorite": fav})
}

func (h *Handler) removeFavorite(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(removeRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	}
	id := strings.TrimSpace(payload.ID)
	if id == "" {
		id = strings.TrimSpace(c.Query("id"))
	}
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	if err := h.service.RemoveFavorite(c.UserContext(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "removed": true})
}

func (h *Handler) clearFavorites(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.ClearFavorites(c.UserContext(), userID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) getFavorites(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	favs, err := h.service.GetFavorites(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(favs)
}

func (h *Handler) getFavorite(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	fav, err := h.service.GetFavorite(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fav)
}

func (h *Handler) isFavorite(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ok, err := h.service.IsFavorite(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "favorite": ok})
}

func (h *Handler) updateFavorite(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var payload Update
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	fav, err := h.service.UpdateFavorite(c.UserContext(), userID, c.Params("id"), payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fav)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFavorite):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not in favorites"})
	case errors.Is(err, ErrInvalidFavorite):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
