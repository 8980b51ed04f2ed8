package payment

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int) ([]Method, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.List(ctx, userID)
}

// Get returns the method only if it belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id int) (Method, error) {
	if userID <= 0 || id <= 0 {
		return Method{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) Create(ctx context.Context, userID int, alias string, d Details) (Method, error) {
	if userID <= 0 {
		return Method{}, ErrNotFound
	}
	if d == nil {
		return Method{}, ErrUnknownKind
	}
	if err := d.Validate(); err != nil {
		return Method{}, err
	}
	alias = strings.TrimSpace(alias)
	if alias == "" {
		alias = d.Label()
	}
	return s.repo.Create(ctx, Method{
		UserID:    userID,
		Alias:     alias,
		Details:   d,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Service) Delete(ctx context.Context, userID, id int) error {
	if userID <= 0 || id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) SetDefault(ctx context.Context, userID, id int) (Method, error) {
	if userID <= 0 || id <= 0 {
		return Method{}, ErrNotFound
	}
	return s.repo.SetDefault(ctx, userID, id)
}

// Default returns the user's default method. ok is false when none is set.
func (s *Service) Default(ctx context.Context, userID int) (Method, bool, error) {
	methods, err := s.List(ctx, userID)
	if err != nil {
		return Method{}, false, err
	}
	for _, m := range methods {
		if m.IsDefault {
			return m, true, nil
		}
	}
	return Method{}, false, nil
}
