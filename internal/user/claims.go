package user

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Claims is the identity the JWT middleware leaves in c.Locals("user").
type Claims struct {
	UserID int
	Role   Role
	Cargo  Cargo
}

// IssueToken signs an HS256 token carrying user_id, role and cargo.
func IssueToken(secret string, u User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
		"cargo":   string(u.Cargo),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")`.
func GetUserIDFromCtx(c *fiber.Ctx) (int, error) {
	claims, err := ClaimsFromCtx(c)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ClaimsFromCtx reads the full identity. A token without a role claim is
// treated as a customer token.
func ClaimsFromCtx(c *fiber.Ctx) (Claims, error) {
	u := c.Locals("user")
	if u == nil {
		return Claims{}, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return Claims{}, fiber.ErrUnauthorized
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fiber.ErrUnauthorized
	}

	id, ok := intClaim(mc["user_id"])
	if !ok || id <= 0 {
		return Claims{}, fiber.ErrUnauthorized
	}
	out := Claims{UserID: id, Role: RoleCustomer}
	if r, ok := mc["role"].(string); ok && r != "" {
		out.Role = Role(r)
	}
	if cg, ok := mc["cargo"].(string); ok {
		out.Cargo = Cargo(cg)
	}
	return out, nil
}

func intClaim(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
