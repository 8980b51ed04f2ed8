package address

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound             = errors.New("address not found")
	ErrInvalidAddress       = errors.New("line, localityId and neighborhoodId are required")
	ErrInvalidPlaceType     = errors.New("invalid placeType")
	ErrUnknownLocality      = errors.New("locality not found")
	ErrNeighborhoodMismatch = errors.New("neighborhood does not belong to locality")
)

type Repository interface {
	List(ctx context.Context, userID int) ([]Address, error)
	Get(ctx context.Context, userID, addressID int) (Address, error)
	// Create stores a; the first address of a user becomes its default.
	Create(ctx context.Context, a Address) (Address, error)
	Update(ctx context.Context, a Address) (Address, error)
	Delete(ctx context.Context, userID, addressID int) error
	// SetDefault clears the flag on every other address of the user in the
	// same operation, leaving exactly one default.
	SetDefault(ctx context.Context, userID, addressID int) (Address, error)
}

type LocalityRepository interface {
	Localities(ctx context.Context) ([]Locality, error)
	Neighborhoods(ctx context.Context, localityID int) ([]Neighborhood, error)
	Locality(ctx context.Context, id int) (Locality, error)
	Neighborhood(ctx context.Context, id int) (Neighborhood, error)
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu     sync.RWMutex
	data   map[int][]Address // keyed by userID
	nextID int
}

func NewInMemoryRepository(seed map[int][]Address) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[int][]Address), nextID: 1}
	for userID, addrs := range seed {
		r.data[userID] = append([]Address(nil), addrs...)
		for _, a := range addrs {
			if a.AddressID >= r.nextID {
				r.nextID = a.AddressID + 1
			}
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Address, len(r.data[userID]))
	copy(out, r.data[userID])
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, addressID int) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.data[userID] {
		if a.AddressID == addressID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.AddressID = r.nextID
	r.nextID++
	a.IsDefault = len(r.data[a.UserID]) == 0
	r.data[a.UserID] = append(r.data[a.UserID], a)
	return a, nil
}

func (r *InMemoryRepository) Update(_ context.Context, update Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.data[update.UserID] {
		if a.AddressID == update.AddressID {
			update.IsDefault = a.IsDefault
			update.CreatedAt = a.CreatedAt
			r.data[update.UserID][i] = update
			return update, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[userID]
	for i, a := range addrs {
		if a.AddressID == addressID {
			r.data[userID] = append(addrs[:i], addrs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) SetDefault(_ context.Context, userID, addressID int) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[userID]
	idx := -1
	for i := range addrs {
		if addrs[i].AddressID == addressID {
			idx = i
		}
	}
	if idx < 0 {
		return Address{}, ErrNotFound
	}
	for i := range addrs {
		addrs[i].IsDefault = i == idx
	}
	return addrs[idx], nil
}

// InMemoryLocalities serves a fixed location hierarchy.
type InMemoryLocalities struct {
	localities    []Locality
	neighborhoods []Neighborhood
}

func NewInMemoryLocalities(localities []Locality, neighborhoods []Neighborhood) *InMemoryLocalities {
	return &InMemoryLocalities{localities: localities, neighborhoods: neighborhoods}
}

// SampleLocalities seeds local runs without a database.
func SampleLocalities() *InMemoryLocalities {
	return NewInMemoryLocalities(
		[]Locality{{ID: 1, Name: "Chapinero"}, {ID: 2, Name: "Usaquén"}},
		[]Neighborhood{
			{ID: 1, LocalityID: 1, Name: "Chicó"},
			{ID: 2, LocalityID: 1, Name: "El Retiro"},
			{ID: 3, LocalityID: 2, Name: "Santa Bárbara"},
			{ID: 4, LocalityID: 2, Name: "Cedritos"},
		},
	)
}

func (r *InMemoryLocalities) Localities(_ context.Context) ([]Locality, error) {
	return append([]Locality(nil), r.localities...), nil
}

func (r *InMemoryLocalities) Neighborhoods(_ context.Context, localityID int) ([]Neighborhood, error) {
	out := make([]Neighborhood, 0)
	for _, n := range r.neighborhoods {
		if n.LocalityID == localityID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *InMemoryLocalities) Locality(_ context.Context, id int) (Locality, error) {
	for _, l := range r.localities {
		if l.ID == id {
			return l, nil
		}
	}
	return Locality{}, ErrUnknownLocality
}

func (r *InMemoryLocalities) Neighborhood(_ context.Context, id int) (Neighborhood, error) {
	for _, n := range r.neighborhoods {
		if n.ID == id {
			return n, nil
		}
	}
	return Neighborhood{}, ErrNeighborhoodMismatch
}
