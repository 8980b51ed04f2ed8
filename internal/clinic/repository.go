package clinic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("slot is not available")
	ErrSlotsUnavailable    = errors.New("could not load schedule")
	ErrNotOwner            = errors.New("appointment belongs to another customer")
	ErrAlreadyCancelled    = errors.New("appointment already cancelled")
	ErrInvalidAppointment  = errors.New("employeeId, serviceId, date, time and petName are required")
	ErrUnknownService      = fmt.Errorf("%w: service is not offered by the employee's clinic", ErrInvalidAppointment)
	ErrNotAssigned         = errors.New("account is not linked to this employee")
)

type Repository interface {
	Clinics(ctx context.Context) ([]Clinic, error)
	Services(ctx context.Context, clinicID int) ([]ClinicService, error)
	Employees(ctx context.Context, clinicID int) ([]Employee, error)
	Employee(ctx context.Context, id int) (Employee, error)
	// Windows returns the schedule of an employee for one weekday label.
	Windows(ctx context.Context, employeeID int, day string) ([]ScheduleWindow, error)
	// Appointments returns every appointment of an employee on date,
	// cancelled ones included.
	Appointments(ctx context.Context, employeeID int, date string) ([]Appointment, error)
	AppointmentsByCustomer(ctx context.Context, customerID int) ([]Appointment, error)
	// CreateAppointment fails with ErrSlotTaken when a non-cancelled
	// appointment already holds the same employee, date and time.
	CreateAppointment(ctx context.Context, a Appointment) (Appointment, error)
	GetAppointment(ctx context.Context, id int) (Appointment, error)
	UpdateStatus(ctx context.Context, id int, status Status) (Appointment, error)
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu           sync.RWMutex
	clinics      []Clinic
	services     []ClinicService
	employees    []Employee
	windows      []ScheduleWindow
	appointments []Appointment
	nextID       int
}

// Seed is the static data an InMemoryRepository starts from.
type Seed struct {
	Clinics      []Clinic
	Services     []ClinicService
	Employees    []Employee
	Windows      []ScheduleWindow
	Appointments []Appointment
}

func NewInMemoryRepository(seed Seed) *InMemoryRepository {
	r := &InMemoryRepository{
		clinics:      append([]Clinic(nil), seed.Clinics...),
		services:     append([]ClinicService(nil), seed.Services...),
		employees:    append([]Employee(nil), seed.Employees...),
		windows:      append([]ScheduleWindow(nil), seed.Windows...),
		appointments: append([]Appointment(nil), seed.Appointments...),
		nextID:       1,
	}
	for _, a := range seed.Appointments {
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
	}
	return r
}

// SampleData is a small clinic with one veterinarian working mornings on
// weekdays, used when the server runs without a database.
func SampleData() Seed {
	var windows []ScheduleWindow
	for _, day := range []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"} {
		windows = append(windows,
			ScheduleWindow{EmployeeID: 1, Day: day, Start: "09:00", End: "12:00"},
			ScheduleWindow{EmployeeID: 2, Day: day, Start: "14:00", End: "17:00"},
		)
	}
	return Seed{
		Clinics: []Clinic{{ID: 1, Name: "Pet Care Chapinero", Address: "Calle 63 # 9-20", Phone: "601 555 0100"}},
		Services: []ClinicService{
			{ID: 1, ClinicID: 1, Name: "General check-up", Price: decimal.NewFromInt(60), DurationMinutes: 30},
			{ID: 2, ClinicID: 1, Name: "Vaccination", Price: decimal.NewFromInt(45), DurationMinutes: 30},
		},
		Employees: []Employee{
			{ID: 1, ClinicID: 1, Name: "Dr. Laura Mejia", Cargo: "VETERINARIAN"},
			{ID: 2, ClinicID: 1, Name: "Dr. Andres Rojas", Cargo: "VETERINARIAN"},
			{ID: 3, ClinicID: 1, Name: "Camila Torres", Cargo: "CASHIER"},
		},
		Windows: windows,
	}
}

func (r *InMemoryRepository) Clinics(_ context.Context) ([]Clinic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Clinic, len(r.clinics))
	copy(out, r.clinics)
	return out, nil
}

func (r *InMemoryRepository) Services(_ context.Context, clinicID int) ([]ClinicService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ClinicService, 0)
	for _, s := range r.services {
		if s.ClinicID == clinicID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Employees(_ context.Context, clinicID int) ([]Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Employee, 0)
	for _, e := range r.employees {
		if e.ClinicID == clinicID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Employee(_ context.Context, id int) (Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return Employee{}, ErrEmployeeNotFound
}

func (r *InMemoryRepository) Windows(_ context.Context, employeeID int, day string) ([]ScheduleWindow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ScheduleWindow, 0)
	for _, w := range r.windows {
		if w.EmployeeID == employeeID && w.Day == day {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Appointments(_ context.Context, employeeID int, date string) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Appointment, 0)
	for _, a := range r.appointments {
		if a.EmployeeID == employeeID && a.Date == date {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r *InMemoryRepository) AppointmentsByCustomer(_ context.Context, customerID int) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Appointment, 0)
	for _, a := range r.appointments {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r *InMemoryRepository) CreateAppointment(_ context.Context, a Appointment) (Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appointments {
		if existing.EmployeeID == a.EmployeeID && existing.Date == a.Date &&
			existing.Time == a.Time && existing.Status != StatusCancelled {
			return Appointment{}, ErrSlotTaken
		}
	}
	a.ID = r.nextID
	r.nextID++
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	r.appointments = append(r.appointments, a)
	return a, nil
}

func (r *InMemoryRepository) GetAppointment(_ context.Context, id int) (Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return Appointment{}, ErrAppointmentNotFound
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id int, status Status) (Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appointments {
		if r.appointments[i].ID == id {
			r.appointments[i].Status = status
			return r.appointments[i], nil
		}
	}
	return Appointment{}, ErrAppointmentNotFound
}

func sortAppointments(as []Appointment) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Date != as[j].Date {
			return as[i].Date < as[j].Date
		}
		if as[i].Time != as[j].Time {
			return as[i].Time < as[j].Time
		}
		return as[i].ID < as[j].ID
	})
}
