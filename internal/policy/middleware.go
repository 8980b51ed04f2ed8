package policy

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/wichananm65/pet-care-backend/internal/user"
)

// Middleware must run after the JWT middleware; it expects the token in
// c.Locals("user").
func Middleware(t Table) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if t.IsPublic(path) {
			return c.Next()
		}
		claims, err := user.ClaimsFromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		if !t.Allowed(claims.Role, claims.Cargo, path) {
			log.Debug().Int("user_id", claims.UserID).Str("role", string(claims.Role)).Str("path", path).Msg("policy denied")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
		}
		return c.Next()
	}
}
