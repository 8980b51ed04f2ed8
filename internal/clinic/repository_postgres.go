package clinic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	appointmentColumns = `id, employee_id, customer_id, service_id, pet_name, date, time, status, created_at`

	listClinicsQuery       = `SELECT id, name, address, phone FROM clinics ORDER BY id`
	listServicesQuery      = `SELECT id, clinic_id, name, price, duration_minutes FROM clinic_services WHERE clinic_id = $1 ORDER BY id`
	listEmployeesQuery     = `SELECT id, clinic_id, COALESCE(user_id, 0), name, cargo FROM employees WHERE clinic_id = $1 ORDER BY id`
	getEmployeeQuery       = `SELECT id, clinic_id, COALESCE(user_id, 0), name, cargo FROM employees WHERE id = $1`
	listWindowsQuery       = `SELECT employee_id, day, start_time, end_time FROM schedules WHERE employee_id = $1 AND day = $2 ORDER BY start_time`
	listEmployeeApptsQuery = `SELECT ` + appointmentColumns + ` FROM appointments WHERE employee_id = $1 AND date = $2 ORDER BY time, id`
	listCustomerApptsQuery = `SELECT ` + appointmentColumns + ` FROM appointments WHERE customer_id = $1 ORDER BY date, time, id`
	getAppointmentQuery    = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	updateStatusQuery      = `UPDATE appointments SET status = $2 WHERE id = $1 RETURNING ` + appointmentColumns
	insertAppointmentQuery = `
		INSERT INTO appointments (employee_id, customer_id, service_id, pet_name, date, time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + appointmentColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Clinics(ctx context.Context) ([]Clinic, error) {
	rows, err := r.db.QueryContext(ctx, listClinicsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Clinic, 0)
	for rows.Next() {
		var c Clinic
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Services(ctx context.Context, clinicID int) ([]ClinicService, error) {
	rows, err := r.db.QueryContext(ctx, listServicesQuery, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ClinicService, 0)
	for rows.Next() {
		var s ClinicService
		if err := rows.Scan(&s.ID, &s.ClinicID, &s.Name, &s.Price, &s.DurationMinutes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Employees(ctx context.Context, clinicID int) ([]Employee, error) {
	rows, err := r.db.QueryContext(ctx, listEmployeesQuery, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Employee, 0)
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.ClinicID, &e.UserID, &e.Name, &e.Cargo); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Employee(ctx context.Context, id int) (Employee, error) {
	var e Employee
	err := r.db.QueryRowContext(ctx, getEmployeeQuery, id).Scan(&e.ID, &e.ClinicID, &e.UserID, &e.Name, &e.Cargo)
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, err
}

func (r *PostgresRepository) Windows(ctx context.Context, employeeID int, day string) ([]ScheduleWindow, error) {
	rows, err := r.db.QueryContext(ctx, listWindowsQuery, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	out := make([]ScheduleWindow, 0)
	for rows.Next() {
		var w ScheduleWindow
		if err := rows.Scan(&w.EmployeeID, &w.Day, &w.Start, &w.End); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Appointments(ctx context.Context, employeeID int, date string) ([]Appointment, error) {
	return r.queryAppointments(ctx, listEmployeeApptsQuery, employeeID, date)
}

func (r *PostgresRepository) AppointmentsByCustomer(ctx context.Context, customerID int) ([]Appointment, error) {
	return r.queryAppointments(ctx, listCustomerApptsQuery, customerID)
}

func (r *PostgresRepository) CreateAppointment(ctx context.Context, a Appointment) (Appointment, error) {
	created, err := scanAppointment(r.db.QueryRowContext(ctx, insertAppointmentQuery,
		a.EmployeeID, a.CustomerID, a.ServiceID, a.PetName, a.Date, a.Time, string(a.Status), a.CreatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Appointment{}, ErrSlotTaken
			case "23503":
				return Appointment{}, ErrUnknownService
			}
		}
		return Appointment{}, fmt.Errorf("insert appointment: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetAppointment(ctx context.Context, id int) (Appointment, error) {
	a, err := scanAppointment(r.db.QueryRowContext(ctx, getAppointmentQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Appointment{}, ErrAppointmentNotFound
	}
	return a, err
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int, status Status) (Appointment, error) {
	a, err := scanAppointment(r.db.QueryRowContext(ctx, updateStatusQuery, id, string(status)))
	if errors.Is(err, sql.ErrNoRows) {
		return Appointment{}, ErrAppointmentNotFound
	}
	return a, err
}

func (r *PostgresRepository) queryAppointments(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	out := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(s rowScanner) (Appointment, error) {
	var (
		a      Appointment
		status string
	)
	if err := s.Scan(&a.ID, &a.EmployeeID, &a.CustomerID, &a.ServiceID, &a.PetName,
		&a.Date, &a.Time, &status, &a.CreatedAt); err != nil {
		return Appointment{}, err
	}
	a.Status = Status(status)
	return a, nil
}
