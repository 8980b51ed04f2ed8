package user

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userRowColumns = []string{"id", "email", "password", "first_name", "last_name", "phone", "gender", "role", "cargo", "created_at", "updated_at"}

func TestPostgresRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows(userRowColumns).
		AddRow(4, "vet@example.com", "hash", "Lina", "Vet", "", "", "EMPLOYEE", "VETERINARIAN", "t", "u")
	mock.ExpectQuery("FROM users WHERE email").WithArgs("vet@example.com").WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "vet@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != RoleEmployee || u.Cargo != CargoVeterinarian {
		t.Fatalf("role/cargo not scanned: %+v", u)
	}

	mock.ExpectQuery("FROM users WHERE id").WithArgs(9).WillReturnRows(sqlmock.NewRows(userRowColumns))
	if _, err := repo.GetByID(context.Background(), 9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(context.Background(), User{Email: "a@b.c", Role: RoleCustomer}); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	mock.ExpectExec("DELETE FROM users").WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), 3); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
