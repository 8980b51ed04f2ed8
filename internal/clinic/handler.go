package clinic

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/wichananm65/pet-care-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/clinics", h.getClinics)
	app.Get("/api/v1/clinics/:id/services", h.getServices)
	app.Get("/api/v1/clinics/:id/employees", h.getEmployees)
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/employees/:id/slots", h.getSlots)
	app.Get("/api/v1/appointments", h.getMyAppointments)
	app.Post("/api/v1/appointments", h.book)
	app.Delete("/api/v1/appointments/:id", h.cancel)

	app.Get("/api/v1/staff/employees/:id/appointments", h.getEmployeeAppointments)
	app.Put("/api/v1/staff/employees/:id/appointments/:appointmentId/confirm", h.confirm)
}

func (h *Handler) getClinics(c *fiber.Ctx) error {
	clinics, err := h.service.Clinics(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clinics)
}

func (h *Handler) getServices(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	services, err := h.service.Services(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(services)
}

func (h *Handler) getEmployees(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	employees, err := h.service.Employees(c.UserContext(), id, c.Query("cargo"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(employees)
}

// getSlots answers ?date=YYYY-MM-DD. When the schedule cannot be loaded the
// body still carries an empty slot list next to the message.
func (h *Handler) getSlots(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	date := c.Query("date")
	slots, err := h.service.AvailableSlots(c.UserContext(), id, date)
	if err != nil {
		if errors.Is(err, ErrSlotsUnavailable) {
			log.Warn().Err(err).Int("employee_id", id).Str("date", date).Msg("slot lookup failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": ErrSlotsUnavailable.Error(), "slots": slots})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"employeeId": id, "date": date, "slots": slots})
}

func (h *Handler) getMyAppointments(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	appts, err := h.service.CustomerAppointments(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(appts)
}

func (h *Handler) book(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(BookRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	created, err := h.service.Book(c.UserContext(), userID, *payload)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	updated, err := h.service.Cancel(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// staffEmployee resolves the :id param and checks the caller may act for
// that employee.
func (h *Handler) staffEmployee(c *fiber.Ctx) (int, error) {
	claims, err := user.ClaimsFromCtx(c)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.service.AuthorizeStaff(c.UserContext(), id, claims.UserID, claims.Role == user.RoleAdmin); err != nil {
		return 0, err
	}
	return id, nil
}

func (h *Handler) getEmployeeAppointments(c *fiber.Ctx) error {
	id, err := h.staffEmployee(c)
	if err != nil {
		return respondError(c, err)
	}
	appts, err := h.service.EmployeeAppointments(c.UserContext(), id, c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(appts)
}

func (h *Handler) confirm(c *fiber.Ctx) error {
	employeeID, err := h.staffEmployee(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := strconv.Atoi(c.Params("appointmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	updated, err := h.service.Confirm(c.UserContext(), employeeID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func respondError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	case errors.Is(err, ErrEmployeeNotFound), errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidAppointment):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrAlreadyCancelled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNotAssigned):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("clinic request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
