package checkout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/wichananm65/pet-care-backend/internal/address"
	"github.com/wichananm65/pet-care-backend/internal/user"
)

type Handler struct {
	manager *Manager
}

type paymentRequest struct {
	PaymentMethodID int `json:"paymentMethodId"`
}

func NewHandler(m *Manager) *Handler {
	return &Handler{manager: m}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Post("/api/v1/checkout", h.start)
	app.Get("/api/v1/checkout", h.get)
	app.Post("/api/v1/checkout/continue", h.next)
	app.Post("/api/v1/checkout/payment", h.selectPayment)
	app.Post("/api/v1/checkout/finalize", h.finalize)
	app.Post("/api/v1/checkout/cancel", h.cancel)
	app.Post("/api/v1/checkout/exit", h.exit)
}

func (h *Handler) controller(c *fiber.Ctx) (*Controller, error) {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return nil, err
	}
	return h.manager.For(userID), nil
}

func (h *Handler) start(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.Status(fiber.StatusCreated).JSON(ctrl.Start(c.UserContext()))
}

func (h *Handler) get(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	s, err := ctrl.Session()
	if err != nil {
		return respond(c, s, err)
	}
	return c.JSON(s)
}

func (h *Handler) next(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var in ContinueInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	}
	s, err := ctrl.Continue(c.UserContext(), in)
	return respond(c, s, err)
}

func (h *Handler) selectPayment(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(paymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	s, err := ctrl.SelectPayment(c.UserContext(), payload.PaymentMethodID)
	return respond(c, s, err)
}

func (h *Handler) finalize(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	s, err := ctrl.Finalize(c.UserContext())
	return respond(c, s, err)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	s, err := ctrl.Cancel()
	return respond(c, s, err)
}

func (h *Handler) exit(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	s, err := ctrl.Exit(c.UserContext())
	return respond(c, s, err)
}

// respond writes the session, or the error together with the session so
// the client can keep rendering the current step.
func respond(c *fiber.Ctx, s Session, err error) error {
	if err == nil {
		return c.JSON(s)
	}
	status := fiber.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, ErrNoSession):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidStep), errors.Is(err, ErrSubmitting), errors.Is(err, ErrStale):
		status = fiber.StatusConflict
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidDelivery), errors.Is(err, ErrAddressRequired),
		errors.Is(err, ErrUnknownPayment), errors.Is(err, ErrPaymentRequired), address.IsValidation(err):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrOrderFailed):
		status = fiber.StatusBadGateway
		message = retryMessage
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("checkout request failed")
	}
	if s.ID == "" {
		return c.Status(status).JSON(fiber.Map{"message": message})
	}
	return c.Status(status).JSON(fiber.Map{"message": message, "session": s})
}
