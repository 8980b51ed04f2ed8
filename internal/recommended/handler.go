package recommended

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/products/recommended", h.getRecommended)
}

// getRecommended supports pagination: ?limit=12&offset=0
func (h *Handler) getRecommended(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), c.QueryInt("limit", defaultLimit), c.QueryInt("offset", 0))
	if err != nil {
		log.Error().Err(err).Msg("list recommended products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}
