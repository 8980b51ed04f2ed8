package cart

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/pet-care-backend/internal/product"
	"github.com/wichananm65/pet-care-backend/internal/storage"
)

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

func newTestService() *Service {
	catalog := product.NewService(product.NewInMemoryRepository(product.SampleCatalog()))
	return NewService(NewStoreRepository(storage.NewMemoryStore()), catalog, nil)
}

func TestCartRoutes_Basic(t *testing.T) {
	app := makeAppWithCartHandler(NewHandler(newTestService()))

	// ensure routes registered
	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/api/v1/cart"] {
		t.Fatalf("expected route '/api/v1/cart' to be registered")
	}
	if !routes["/api/v1/cart/items"] {
		t.Fatalf("expected route '/api/v1/cart/items' to be registered")
	}

	// unauthorized access should be blocked
	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}
	req2 := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":2}`))
	req2.Header.Set("Content-Type", "application/json")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated POST, got %d", res2.StatusCode)
	}

	// add the same product twice, then a second product
	for _, body := range []string{`{"productId":3}`, `{"productId":3}`, `{"productId":1}`} {
		req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "42")
		res, _ := app.Test(req)
		if res.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200 for adding to cart, got %d", res.StatusCode)
		}
	}

	req3 := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req3.Header.Set("X-User-ID", "42")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for authenticated GET, got %d", res3.StatusCode)
	}
	var items []CartItem
	if err := json.NewDecoder(res3.Body).Decode(&items); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(items) != 2 || items[0].ID != 3 || items[0].Quantity != 2 || items[1].Quantity != 1 {
		t.Fatalf("unexpected cart items: %+v", items)
	}

	// unknown product
	req4 := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":999}`))
	req4.Header.Set("Content-Type", "application/json")
	req4.Header.Set("X-User-ID", "42")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res4.StatusCode)
	}
}

func TestCartRoutes_DecrementFloor(t *testing.T) {
	app := makeAppWithCartHandler(NewHandler(newTestService()))

	add := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":1}`))
	add.Header.Set("Content-Type", "application/json")
	add.Header.Set("X-User-ID", "5")
	if res, _ := app.Test(add); res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 adding, got %d", res.StatusCode)
	}

	req := httptest.NewRequest("POST", "/api/v1/cart/items/1/decrement", nil)
	req.Header.Set("X-User-ID", "5")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 when decrementing below 1, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/cart/items/1", nil)
	req.Header.Set("X-User-ID", "5")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 removing line, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "5")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 clearing cart, got %d", res.StatusCode)
	}
}
