package favorite

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/grocery-backend/internal/nutrition"
	"github.com/wichananm65/grocery-backend/internal/product"
)

type stubLookup map[string]product.Product

func (s stubLookup) Lookup(_ context.Context, ean string) (product.Product, error) {
	if !product.ValidEAN(ean) {
		return product.Product{}, product.ErrInvalidEAN
	}
	p, ok := s[ean]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func makeAppWithFavoriteHandler(fHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	fHandler.RegisterProtectedRoutes(app)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "5")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}

func TestFavoriteRoutes(t *testing.T) {
	lookup := stubLookup{
		"7038010009457": {ID: "7038010009457", EAN: "7038010009457", Name: "Milk", Price: 20,
			Macros: nutrition.Macros{Calories: 40}, Labels: []string{"Low calorie"}},
	}
	app := makeAppWithFavoriteHandler(NewHandler(NewService(NewInMemoryRepository(), lookup)))

	req := httptest.NewRequest("GET", "/api/v1/favorites", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", res.StatusCode)
	}

	status, body := call(t, app, "POST", "/api/v1/favorites", `{"ean":"7038010009457"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 on first add, got %d: %s", status, body)
	}
	status, body = call(t, app, "POST", "/api/v1/favorites", `{"ean":"7038010009457"}`)
	if status != fiber.StatusOK || !strings.Contains(string(body), `"added":false`) {
		t.Fatalf("expected idempotent add, got %d: %s", status, body)
	}

	status, _ = call(t, app, "POST", "/api/v1/favorites", `{"ean":"00000000"}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown barcode, got %d", status)
	}

	// a full snapshot without labels gets empty arrays
	status, _ = call(t, app, "POST", "/api/v1/favorites", `{"id":"abc","name":"Bread","price":30}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 for snapshot add, got %d", status)
	}

	status, body = call(t, app, "GET", "/api/v1/favorites", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 listing favorites, got %d", status)
	}
	var favs []Favorite
	if err := json.Unmarshal(body, &favs); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if len(favs) != 2 || favs[0].Name != "Milk" || favs[1].Labels == nil || favs[1].Allergens == nil {
		t.Fatalf("unexpected favorites %+v", favs)
	}
	if favs[0].DateAdded.IsZero() {
		t.Fatalf("dateAdded should be set")
	}

	status, body = call(t, app, "PATCH", "/api/v1/favorites/7038010009457", `{"price":18.5}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on update, got %d", status)
	}
	var updated Favorite
	_ = json.Unmarshal(body, &updated)
	if updated.Price != 18.5 || len(updated.Labels) != 1 || updated.Name != "Milk" {
		t.Fatalf("partial update should keep labels and name: %+v", updated)
	}

	status, _ = call(t, app, "PATCH", "/api/v1/favorites/missing", `{"price":1}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 updating missing favorite, got %d", status)
	}

	_, body = call(t, app, "GET", "/api/v1/favorites/abc/status", "")
	if !strings.Contains(string(body), `"favorite":true`) {
		t.Fatalf("expected abc to be a favorite: %s", body)
	}

	// removal is idempotent
	for i := 0; i < 2; i++ {
		status, _ = call(t, app, "DELETE", "/api/v1/favorites", `{"id":"abc"}`)
		if status != fiber.StatusOK {
			t.Fatalf("expected 200 on remove #%d, got %d", i+1, status)
		}
	}
	status, _ = call(t, app, "GET", "/api/v1/favorites/abc", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 after removal, got %d", status)
	}

	status, _ = call(t, app, "DELETE", "/api/v1/favorites/all", "")
	if status != fiber.StatusNoContent {
		t.Fatalf("expected 204 on clear, got %d", status)
	}
	_, body = call(t, app, "GET", "/api/v1/favorites", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty list after clear, got %s", body)
	}
}
