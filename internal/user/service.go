package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Gender    *string `json:"gender,omitempty"`
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Register creates a CUSTOMER account; roles are only granted by an admin.
func (s *Service) Register(ctx context.Context, u User) (User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := s.repo.GetByEmail(ctx, u.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	u.Password = string(hashed)
	u.Role = RoleCustomer
	u.Cargo = CargoNone
	u.CreatedAt = now
	u.UpdatedAt = now
	return s.repo.Create(ctx, u)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id int, p ProfileUpdate) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Gender != nil {
		u.Gender = strings.TrimSpace(*p.Gender)
	}
	u.Password = ""
	u.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(ctx, u)
}

// AssignRole is the admin operation that turns an account into an employee
// (with a cargo), an admin, or back into a customer.
func (s *Service) AssignRole(ctx context.Context, id int, role Role, cargo Cargo) (User, error) {
	if !ValidRoleCargo(role, cargo) {
		return User{}, ErrInvalidRole
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Role = role
	u.Cargo = cargo
	u.Password = ""
	u.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(ctx, u)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
