package payment

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("payment method not found")

type Repository interface {
	List(ctx context.Context, userID int) ([]Method, error)
	Get(ctx context.Context, userID, id int) (Method, error)
	// Create stores m; the first method of a user becomes its default.
	Create(ctx context.Context, m Method) (Method, error)
	Delete(ctx context.Context, userID, id int) error
	SetDefault(ctx context.Context, userID, id int) (Method, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	methods []Method
	nextID  int
}

func NewInMemoryRepository(seed []Method) *InMemoryRepository {
	r := &InMemoryRepository{methods: append([]Method(nil), seed...), nextID: 1}
	for _, m := range seed {
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]Method, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Method, 0)
	for _, m := range r.methods {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, id int) (Method, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.methods {
		if m.ID == id && m.UserID == userID {
			return m, nil
		}
	}
	return Method{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, m Method) (Method, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.IsDefault = true
	for _, existing := range r.methods {
		if existing.UserID == m.UserID {
			m.IsDefault = false
			break
		}
	}
	m.ID = r.nextID
	r.nextID++
	r.methods = append(r.methods, m)
	return m, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.methods {
		if m.ID == id && m.UserID == userID {
			r.methods = append(r.methods[:i], r.methods[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) SetDefault(_ context.Context, userID, id int) (Method, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, m := range r.methods {
		if m.ID == id && m.UserID == userID {
			idx = i
		}
	}
	if idx < 0 {
		return Method{}, ErrNotFound
	}
	for i := range r.methods {
		if r.methods[i].UserID == userID {
			r.methods[i].IsDefault = i == idx
		}
	}
	return r.methods[idx], nil
}
