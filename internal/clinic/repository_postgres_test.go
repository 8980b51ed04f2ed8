package clinic

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var appointmentRowColumns = []string{"id", "employee_id", "customer_id", "service_id", "pet_name", "date", "time", "status", "created_at"}

func TestPostgresRepository_Windows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM schedules WHERE employee_id").WithArgs(1, "MONDAY").
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "day", "start_time", "end_time"}).
			AddRow(1, "MONDAY", "09:00", "12:00"))

	windows, err := repo.Windows(context.Background(), 1, "MONDAY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 || windows[0].Start != "09:00" || windows[0].End != "12:00" {
		t.Fatalf("unexpected windows: %+v", windows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Appointments(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM appointments WHERE employee_id").WithArgs(1, "2026-10-19").
		WillReturnRows(sqlmock.NewRows(appointmentRowColumns).
			AddRow(3, 1, 7, 0, "Milo", "2026-10-19", "09:30", "CANCELLED", ""))

	appts, err := repo.Appointments(context.Background(), 1, "2026-10-19")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appts) != 1 || appts[0].Status != StatusCancelled || appts[0].PetName != "Milo" {
		t.Fatalf("unexpected appointments: %+v", appts)
	}
}

func TestPostgresRepository_CreateAppointmentConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO appointments").WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.CreateAppointment(context.Background(), Appointment{EmployeeID: 1, CustomerID: 7, Date: "2026-10-19", Time: "09:00", Status: StatusPending})
	if err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestPostgresRepository_CreateAppointmentUnknownService(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO appointments").WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err = repo.CreateAppointment(context.Background(), Appointment{EmployeeID: 1, CustomerID: 7, ServiceID: 999, Date: "2026-10-19", Time: "09:00", Status: StatusPending})
	if !errors.Is(err, ErrInvalidAppointment) {
		t.Fatalf("expected ErrInvalidAppointment, got %v", err)
	}
}

func TestPostgresRepository_Employee(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM employees WHERE id").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinic_id", "user_id", "name", "cargo"}).
			AddRow(1, 1, 21, "Dr. Laura Mejia", "VETERINARIAN"))

	e, err := repo.Employee(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.UserID != 21 || e.ClinicID != 1 {
		t.Fatalf("unexpected employee: %+v", e)
	}
}

func TestPostgresRepository_GetAppointmentNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM appointments WHERE id").WithArgs(5).WillReturnRows(sqlmock.NewRows(appointmentRowColumns))

	if _, err := repo.GetAppointment(context.Background(), 5); err != ErrAppointmentNotFound {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}
