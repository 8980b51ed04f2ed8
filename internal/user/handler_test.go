package user

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
)

const testSecret = "test-secret"

// helper to build an app with a simple "bootstrap" middleware that injects a
// jwt.Token into locals when the X-User-ID header is provided. This avoids
// pulling in the full jwtware middleware and keeps tests lightweight.
func makeAppWithUserHandler(uHandler *Handler) *fiber.App {
	app := fiber.New()
	uHandler.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				if role := c.Get("X-Role"); role != "" {
					claims["role"] = role
				}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	uHandler.RegisterProtectedRoutes(app)
	return app
}

func TestProfileRoute_RegistrationAndAuth(t *testing.T) {
	seed := []User{{ID: 7, Email: "j@example.com", Password: "hash", FirstName: "Jenny", LastName: "Test", Phone: "123", Gender: "F", Role: RoleCustomer}}
	repo := NewInMemoryRepository(seed)
	handler := NewHandler(NewService(repo), testSecret)
	app := makeAppWithUserHandler(handler)

	// route registration check
	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	for _, path := range []string{"/api/v1/profile", "/api/v1/sign-in", "/api/v1/sign-up", "/api/v1/admin/users"} {
		if !routes[path] {
			t.Fatalf("expected route %q to be registered", path)
		}
	}

	// unauthorized request should yield 401
	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("profile request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected unauthorized status, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req2.Header.Set("X-User-ID", "7")
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("authorized profile request failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 OK for authorized profile, got %d", res2.StatusCode)
	}

	b, _ := io.ReadAll(res2.Body)
	body := string(b)
	if !strings.Contains(body, "j@example.com") {
		t.Fatalf("response body does not contain expected email, got %s", body)
	}
	if strings.Contains(body, "password") {
		t.Fatalf("response body should not expose password field")
	}
}

func TestProfileUpdate(t *testing.T) {
	seed := []User{{ID: 15, Email: "u15@example.com", Password: "hash", FirstName: "Old", LastName: "Name", Phone: "000", Gender: "male"}}
	repo := NewInMemoryRepository(seed)
	app := makeAppWithUserHandler(NewHandler(NewService(repo), testSecret))

	// both PUT and PATCH are accepted
	updateJSON := `{"firstName":"New","lastName":"User","phone":"999","gender":"female"}`
	for _, method := range []string{"PUT", "PATCH"} {
		req := httptest.NewRequest(method, "/api/v1/profile", strings.NewReader(updateJSON))
		req.Header.Set("X-User-ID", "15")
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s update request failed: %v", method, err)
		}
		if res.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200 OK on %s update, got %d", method, res.StatusCode)
		}
		b, _ := io.ReadAll(res.Body)
		if !strings.Contains(string(b), "New") {
			t.Fatalf("updated response missing new name for %s: %s", method, string(b))
		}
	}

	// a partial payload leaves other fields alone
	req := httptest.NewRequest("PATCH", "/api/v1/profile", strings.NewReader(`{"phone":"111"}`))
	req.Header.Set("X-User-ID", "15")
	req.Header.Set("Content-Type", "application/json")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("partial update failed: %v", err)
	}
	u, _ := repo.GetByID(context.Background(), 15)
	if u.Phone != "111" || u.FirstName != "New" || u.Password != "hash" {
		t.Fatalf("partial update did not persist as expected: %+v", u)
	}
}

func TestSignUpAndSignIn(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	app := makeAppWithUserHandler(NewHandler(NewService(repo), testSecret))

	signUp := `{"email":"New@Example.com","password":"s3cret","firstName":"Ana","lastName":"Diaz"}`
	req := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(signUp))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 on sign-up, got %d", res.StatusCode)
	}

	// duplicate email is a conflict
	req = httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(signUp))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 on duplicate sign-up, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"new@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 on bad password, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"new@example.com","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on sign-in, got %d", res.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode sign-in body: %v", err)
	}
	if body.User.Role != RoleCustomer || body.User.Password != "" {
		t.Fatalf("unexpected user in sign-in response: %+v", body.User)
	}

	tok, err := jwt.Parse(body.Token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	if err != nil || !tok.Valid {
		t.Fatalf("token did not validate: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["role"] != "CUSTOMER" {
		t.Fatalf("expected role claim CUSTOMER, got %v", claims["role"])
	}
}

func TestAdminAssignRole(t *testing.T) {
	seed := []User{
		{ID: 1, Email: "admin@example.com", Password: "hash", Role: RoleAdmin},
		{ID: 2, Email: "vet@example.com", Password: "hash", Role: RoleCustomer},
	}
	repo := NewInMemoryRepository(seed)
	app := makeAppWithUserHandler(NewHandler(NewService(repo), testSecret))

	req := httptest.NewRequest("PUT", "/api/v1/admin/users/2/role", strings.NewReader(`{"role":"EMPLOYEE"}`))
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for employee without cargo, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("PUT", "/api/v1/admin/users/2/role", strings.NewReader(`{"role":"EMPLOYEE","cargo":"VETERINARIAN"}`))
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on role assignment, got %d", res.StatusCode)
	}
	u, _ := repo.GetByID(context.Background(), 2)
	if u.Role != RoleEmployee || u.Cargo != CargoVeterinarian {
		t.Fatalf("role not persisted: %+v", u)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/admin/users/99", nil)
	req.Header.Set("X-User-ID", "1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting unknown user, got %d", res.StatusCode)
	}
}
