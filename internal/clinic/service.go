package clinic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wichananm65/pet-care-backend/internal/events"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo   Repository
	events events.Publisher
}

func NewService(r Repository, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: r, events: pub}
}

// BookRequest is what a customer submits to reserve a slot.
type BookRequest struct {
	EmployeeID int    `json:"employeeId"`
	ServiceID  int    `json:"serviceId"`
	PetName    string `json:"petName"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

func (s *Service) Clinics(ctx context.Context) ([]Clinic, error) {
	return s.repo.Clinics(ctx)
}

func (s *Service) Services(ctx context.Context, clinicID int) ([]ClinicService, error) {
	return s.repo.Services(ctx, clinicID)
}

// Employees lists the staff of a clinic, optionally only those with cargo.
func (s *Service) Employees(ctx context.Context, clinicID int, cargo string) ([]Employee, error) {
	all, err := s.repo.Employees(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	cargo = strings.ToUpper(strings.TrimSpace(cargo))
	if cargo == "" {
		return all, nil
	}
	out := make([]Employee, 0, len(all))
	for _, e := range all {
		if e.Cargo == cargo {
			out = append(out, e)
		}
	}
	return out, nil
}

// AvailableSlots returns the bookable start times of an employee on date.
// The employee, the weekday schedule and the day's appointments are loaded
// concurrently. If any load fails the result is empty and the error wraps
// ErrSlotsUnavailable; nothing is retried.
func (s *Service) AvailableSlots(ctx context.Context, employeeID int, date string) ([]string, error) {
	day, err := DayLabel(date)
	if err != nil {
		return []string{}, err
	}

	var (
		windows      []ScheduleWindow
		appointments []Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.repo.Employee(gctx, employeeID)
		return err
	})
	g.Go(func() error {
		var err error
		windows, err = s.repo.Windows(gctx, employeeID, day)
		return err
	})
	g.Go(func() error {
		var err error
		appointments, err = s.repo.Appointments(gctx, employeeID, date)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return []string{}, err
		}
		return []string{}, fmt.Errorf("%w: %v", ErrSlotsUnavailable, err)
	}
	return GenerateSlots(windows, appointments, date), nil
}

// Book reserves a slot for customerID. The service must belong to the
// employee's clinic and the time must be one of the slots AvailableSlots
// offers for that employee and date.
func (s *Service) Book(ctx context.Context, customerID int, req BookRequest) (Appointment, error) {
	req.PetName = strings.TrimSpace(req.PetName)
	if req.EmployeeID <= 0 || req.ServiceID <= 0 || req.Date == "" || req.Time == "" || req.PetName == "" {
		return Appointment{}, ErrInvalidAppointment
	}

	emp, err := s.repo.Employee(ctx, req.EmployeeID)
	if err != nil {
		return Appointment{}, err
	}
	services, err := s.repo.Services(ctx, emp.ClinicID)
	if err != nil {
		return Appointment{}, err
	}
	if !offers(services, req.ServiceID) {
		return Appointment{}, ErrUnknownService
	}

	slots, err := s.AvailableSlots(ctx, req.EmployeeID, req.Date)
	if err != nil {
		return Appointment{}, err
	}
	if !contains(slots, req.Time) {
		return Appointment{}, ErrSlotTaken
	}

	created, err := s.repo.CreateAppointment(ctx, Appointment{
		EmployeeID: req.EmployeeID,
		CustomerID: customerID,
		ServiceID:  req.ServiceID,
		PetName:    req.PetName,
		Date:       req.Date,
		Time:       req.Time,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Appointment{}, err
	}
	_ = s.events.Publish(ctx, events.TopicAppointmentBooked, strconv.Itoa(created.EmployeeID), created)
	return created, nil
}

// Cancel marks a customer's own appointment as cancelled, freeing its slot.
func (s *Service) Cancel(ctx context.Context, customerID, appointmentID int) (Appointment, error) {
	a, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}
	if a.CustomerID != customerID {
		return Appointment{}, ErrNotOwner
	}
	if a.Status == StatusCancelled {
		return Appointment{}, ErrAlreadyCancelled
	}
	updated, err := s.repo.UpdateStatus(ctx, appointmentID, StatusCancelled)
	if err != nil {
		return Appointment{}, err
	}
	_ = s.events.Publish(ctx, events.TopicAppointmentCancelled, strconv.Itoa(updated.EmployeeID), updated)
	return updated, nil
}

// Confirm is used by the attending employee to accept a pending appointment.
func (s *Service) Confirm(ctx context.Context, employeeID, appointmentID int) (Appointment, error) {
	a, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}
	if a.EmployeeID != employeeID {
		return Appointment{}, ErrAppointmentNotFound
	}
	if a.Status == StatusCancelled {
		return Appointment{}, ErrAlreadyCancelled
	}
	updated, err := s.repo.UpdateStatus(ctx, appointmentID, StatusConfirmed)
	if err != nil {
		return Appointment{}, err
	}
	_ = s.events.Publish(ctx, events.TopicAppointmentConfirmed, strconv.Itoa(updated.EmployeeID), updated)
	return updated, nil
}

// AuthorizeStaff checks that userID may act for employeeID: the employee
// record must be linked to that account. Admins may act for any employee.
func (s *Service) AuthorizeStaff(ctx context.Context, employeeID, userID int, admin bool) error {
	emp, err := s.repo.Employee(ctx, employeeID)
	if err != nil {
		return err
	}
	if admin || (emp.UserID != 0 && emp.UserID == userID) {
		return nil
	}
	return ErrNotAssigned
}

func (s *Service) CustomerAppointments(ctx context.Context, customerID int) ([]Appointment, error) {
	return s.repo.AppointmentsByCustomer(ctx, customerID)
}

func (s *Service) EmployeeAppointments(ctx context.Context, employeeID int, date string) ([]Appointment, error) {
	if _, err := DayLabel(date); err != nil {
		return nil, err
	}
	return s.repo.Appointments(ctx, employeeID, date)
}

func offers(services []ClinicService, id int) bool {
	for _, svc := range services {
		if svc.ID == id {
			return true
		}
	}
	return false
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
