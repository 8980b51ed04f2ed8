package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/wichananm65/pet-care-backend/internal/storage"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrLineNotFound    = errors.New("product is not in the cart")
	ErrQuantityFloor   = errors.New("quantity cannot go below 1")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Repository persists the flat line list of one user's cart.
type Repository interface {
	Lines(ctx context.Context, userID int) ([]CartLine, error)
	Save(ctx context.Context, userID int, lines []CartLine) error
	Clear(ctx context.Context, userID int) error
	// Subscribe calls fn with the new line list after every write.
	Subscribe(userID int, fn func([]CartLine)) (unsubscribe func())
}

// StoreRepository keeps carts in a storage.Store (memory, redis or postgres).
type StoreRepository struct {
	store storage.Store
}

func NewStoreRepository(store storage.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

func (r *StoreRepository) Lines(ctx context.Context, userID int) ([]CartLine, error) {
	lines := make([]CartLine, 0)
	err := storage.GetJSON(ctx, r.store, storeKey(userID), &lines)
	if errors.Is(err, storage.ErrNotFound) {
		return []CartLine{}, nil
	}
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *StoreRepository) Save(ctx context.Context, userID int, lines []CartLine) error {
	if lines == nil {
		lines = []CartLine{}
	}
	return storage.SetJSON(ctx, r.store, storeKey(userID), lines)
}

func (r *StoreRepository) Clear(ctx context.Context, userID int) error {
	return r.store.Delete(ctx, storeKey(userID))
}

func (r *StoreRepository) Subscribe(userID int, fn func([]CartLine)) func() {
	return r.store.Subscribe(storeKey(userID), func(raw []byte) {
		lines := []CartLine{}
		if raw != nil {
			if err := json.Unmarshal(raw, &lines); err != nil {
				log.Warn().Err(err).Int("user_id", userID).Msg("decode cart notification")
				return
			}
		}
		fn(lines)
	})
}
