package address

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service orchestrates address management and location lookups.
type Service struct {
	repo       Repository
	localities LocalityRepository
}

func NewService(repo Repository, localities LocalityRepository) *Service {
	return &Service{repo: repo, localities: localities}
}

func (s *Service) GetAddresses(ctx context.Context, userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.List(ctx, userID)
}

func (s *Service) GetAddress(ctx context.Context, userID, addressID int) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID, addressID)
}

// Prepare validates in and resolves locality and neighborhood names. It does
// not persist anything.
func (s *Service) Prepare(ctx context.Context, userID int, in Input) (Address, error) {
	in.Line = strings.TrimSpace(in.Line)
	if in.Line == "" || in.LocalityID <= 0 || in.NeighborhoodID <= 0 {
		return Address{}, ErrInvalidAddress
	}
	if in.PlaceType == "" {
		in.PlaceType = PlaceResidential
	}
	if !in.PlaceType.Valid() {
		return Address{}, ErrInvalidPlaceType
	}

	loc, err := s.localities.Locality(ctx, in.LocalityID)
	if err != nil {
		return Address{}, err
	}
	nb, err := s.localities.Neighborhood(ctx, in.NeighborhoodID)
	if err != nil {
		return Address{}, err
	}
	if nb.LocalityID != loc.ID {
		return Address{}, ErrNeighborhoodMismatch
	}

	return Address{
		UserID:           userID,
		Line:             in.Line,
		NeighborhoodID:   nb.ID,
		NeighborhoodName: nb.Name,
		LocalityID:       loc.ID,
		LocalityName:     loc.Name,
		AdditionalInfo:   strings.TrimSpace(in.AdditionalInfo),
		DeliveryNotes:    strings.TrimSpace(in.DeliveryNotes),
		PlaceType:        in.PlaceType,
	}, nil
}

func (s *Service) AddAddress(ctx context.Context, userID int, in Input) (Address, error) {
	if userID <= 0 {
		return Address{}, ErrNotFound
	}
	a, err := s.Prepare(ctx, userID, in)
	if err != nil {
		return Address{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	a.CreatedAt = now
	a.UpdatedAt = now
	return s.repo.Create(ctx, a)
}

func (s *Service) UpdateAddress(ctx context.Context, userID, addressID int, in Input) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	a, err := s.Prepare(ctx, userID, in)
	if err != nil {
		return Address{}, err
	}
	a.AddressID = addressID
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(ctx, a)
}

// DeleteAddress removes the address. Deleting the default does not promote
// another one.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID int) error {
	if userID <= 0 || addressID <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, userID, addressID)
}

func (s *Service) SetDefault(ctx context.Context, userID, addressID int) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.SetDefault(ctx, userID, addressID)
}

// Preferred returns the default address, else the first one. ok is false
// when the user has no addresses.
func (s *Service) Preferred(ctx context.Context, userID int) (Address, bool, error) {
	addrs, err := s.GetAddresses(ctx, userID)
	if err != nil {
		return Address{}, false, err
	}
	if len(addrs) == 0 {
		return Address{}, false, nil
	}
	for _, a := range addrs {
		if a.IsDefault {
			return a, true, nil
		}
	}
	return addrs[0], true, nil
}

func (s *Service) Localities(ctx context.Context) ([]Locality, error) {
	return s.localities.Localities(ctx)
}

func (s *Service) Neighborhoods(ctx context.Context, localityID int) ([]Neighborhood, error) {
	if _, err := s.localities.Locality(ctx, localityID); err != nil {
		return nil, err
	}
	return s.localities.Neighborhoods(ctx, localityID)
}

// IsValidation reports whether err is a client input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAddress) || errors.Is(err, ErrInvalidPlaceType) ||
		errors.Is(err, ErrUnknownLocality) || errors.Is(err, ErrNeighborhoodMismatch)
}
