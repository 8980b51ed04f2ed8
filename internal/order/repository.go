package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Repository interface {
	// Create stores the bill and its details atomically and returns it with
	// ID and CreateDate set.
	Create(ctx context.Context, b Bill) (Bill, error)
	Get(ctx context.Context, id int) (Bill, error)
	ListByUser(ctx context.Context, userID int) ([]Bill, error)
	ListRecent(ctx context.Context, limit int) ([]Bill, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	bills  []Bill
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(_ context.Context, b Bill) (Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextID
	r.nextID++
	if b.CreateDate.IsZero() {
		b.CreateDate = time.Now().UTC()
	}
	b.BillDetails = append([]BillDetail(nil), b.BillDetails...)
	r.bills = append(r.bills, b)
	return b, nil
}

func (r *InMemoryRepository) Get(_ context.Context, id int) (Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bills {
		if b.ID == id {
			return b, nil
		}
	}
	return Bill{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int) ([]Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Bill, 0)
	for i := len(r.bills) - 1; i >= 0; i-- {
		if r.bills[i].UserID == userID {
			out = append(out, r.bills[i])
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListRecent(_ context.Context, limit int) ([]Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Bill(nil), r.bills...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
