package favorite

import (
	"context"
	"errors"
	"strconv"

	"github.com/wichananm65/pet-care-backend/internal/storage"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrAlreadyFavorite = errors.New("product already in favorites")
	ErrNotFavorite     = errors.New("product not in favorites")
	ErrUnknownProduct  = errors.New("product not found")
)

// Repository persists the wishlist of one user as an ordered id list.
type Repository interface {
	IDs(ctx context.Context, userID int) ([]int, error)
	Save(ctx context.Context, userID int, ids []int) error
}

// StoreRepository keeps wishlists in a storage.Store.
type StoreRepository struct {
	store storage.Store
}

func NewStoreRepository(store storage.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

func storeKey(userID int) string {
	return "wishlist:" + strconv.Itoa(userID)
}

func (r *StoreRepository) IDs(ctx context.Context, userID int) ([]int, error) {
	ids := make([]int, 0)
	err := storage.GetJSON(ctx, r.store, storeKey(userID), &ids)
	if errors.Is(err, storage.ErrNotFound) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *StoreRepository) Save(ctx context.Context, userID int, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	return storage.SetJSON(ctx, r.store, storeKey(userID), ids)
}
