package product

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func newTestApp() (*fiber.App, *InMemoryRepository) {
	repo := NewInMemoryRepository(SampleCatalog())
	h := NewHandler(NewService(repo))
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app, repo
}

func TestGetProducts(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest("GET", "/api/v1/products?category=Pet%20Supplies", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var products []Product
	if err := json.NewDecoder(res.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 Pet Supplies products, got %d", len(products))
	}
}

func TestGetProduct(t *testing.T) {
	app, _ := newTestApp()

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products/3", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var p Product
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "Cat Sweater" || !p.Price.Equal(decimal.NewFromInt(260)) {
		t.Fatalf("unexpected product: %+v", p)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products/99", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}

	// non-numeric ids do not match the route
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products/abc", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric id, got %d", res.StatusCode)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	app, repo := newTestApp()

	body := `{"productName":"","productPrice":"-1","score":9,"category":"Nope"}`
	req := httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	var out struct {
		Errors map[string]string `json:"errors"`
	}
	_ = json.NewDecoder(res.Body).Decode(&out)
	for _, k := range []string{"productName", "productPrice", "score", "category"} {
		if _, ok := out.Errors[k]; !ok {
			t.Fatalf("expected validation error for %s, got %v", k, out.Errors)
		}
	}

	body = `{"productName":"Litter","productPrice":"99.50","score":3,"category":"Sand and bathroom"}`
	req = httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	all, _ := repo.List(context.Background())
	if len(all) != 6 {
		t.Fatalf("expected 6 products after create, got %d", len(all))
	}
}
