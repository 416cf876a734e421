package cart

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

type stubProducts map[string]product.Product

func (s stubProducts) Cached(_ context.Context, ean string) (product.Product, bool) {
	p, ok := s[ean]
	return p, ok
}

func makeAppWithCartHandler(cHandler *Handler) *fiber.App {
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
	cHandler.RegisterProtectedRoutes(app)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, userID, body string) (int, Cart) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	var cart Cart
	if res.StatusCode == fiber.StatusOK {
		b, _ := io.ReadAll(res.Body)
		if err := json.Unmarshal(b, &cart); err != nil {
			t.Fatalf("decode cart: %v (%s)", err, string(b))
		}
	}
	return res.StatusCode, cart
}

func TestCartRoutes_Basic(t *testing.T) {
	products := stubProducts{
		"7038010009457": {EAN: "7038010009457", Name: "Milk", Price: 20, Labels: []string{"Low calorie"},
			Macros: nutrition.Macros{Calories: 40, Protein: 3.5, Fat: 1, Carbs: 4.7}},
	}
	repo := NewInMemoryRepository(map[int]map[string]int{42: {"7038010009457": 1}})
	app := makeAppWithCartHandler(NewHandler(NewService(repo, products)))

	// ensure routes registered
	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, route := range []string{"GET /api/v1/cart", "POST /api/v1/cart", "DELETE /api/v1/cart/:ean", "DELETE /api/v1/cart"} {
		if !routes[route] {
			t.Fatalf("expected route %q to be registered", route)
		}
	}

	// unauthorized access should be blocked
	if status, _ := send(t, app, "GET", "/api/v1/cart", "", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", status)
	}

	status, cart := send(t, app, "GET", "/api/v1/cart", "42", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for authenticated GET, got %d", status)
	}
	if len(cart.Items) != 1 || cart.Items[0].Name != "Milk" || cart.TotalPrice != 20 {
		t.Fatalf("cart not enriched: %+v", cart)
	}

	// add same product again with explicit quantity, should increment
	_, cart = send(t, app, "POST", "/api/v1/cart", "42", `{"ean":"7038010009457","quantity":2}`)
	if cart.Items[0].Quantity != 3 || cart.TotalPrice != 60 || cart.Totals.Calories != 120 {
		t.Fatalf("unexpected cart after increment: %+v", cart)
	}

	// an uncached product is kept with empty details
	_, cart = send(t, app, "POST", "/api/v1/cart", "42", `{"ean":"12345678"}`)
	if len(cart.Items) != 2 || cart.TotalQuantity != 4 {
		t.Fatalf("unexpected cart after adding uncached product: %+v", cart)
	}
	if cart.Items[0].EAN != "12345678" || cart.Items[0].Name != "" || cart.Items[0].Labels == nil {
		t.Fatalf("uncached line should be sorted first with empty details: %+v", cart.Items[0])
	}

	// decrement to zero removes the line
	_, cart = send(t, app, "POST", "/api/v1/cart", "42", `{"ean":"12345678","quantity":-1}`)
	if len(cart.Items) != 1 {
		t.Fatalf("expected line removed at zero, got %+v", cart.Items)
	}

	if status, _ := send(t, app, "POST", "/api/v1/cart", "42", `{"ean":"abc"}`); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for invalid ean, got %d", status)
	}

	_, cart = send(t, app, "DELETE", "/api/v1/cart/7038010009457", "42", "")
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after removal, got %+v", cart)
	}

	send(t, app, "POST", "/api/v1/cart", "42", `{"ean":"12345678"}`)
	status, _ = send(t, app, "DELETE", "/api/v1/cart", "42", "")
	if status != fiber.StatusNoContent {
		t.Fatalf("expected 204 for clear cart, got %d", status)
	}
	_, cart = send(t, app, "GET", "/api/v1/cart", "42", "")
	if len(cart.Items) != 0 || cart.TotalQuantity != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", cart)
	}
}
