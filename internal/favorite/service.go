package favorite

import (
	"context"
	"strconv"
	"sync"

	"github.com/wichananm65/pet-care-backend/internal/events"
	"github.com/wichananm65/pet-care-backend/internal/product"
)

type Catalog interface {
	Lookup(ctx context.Context, ids []int) (map[int]product.Product, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	events  events.Publisher
	mu      sync.Mutex
}

func NewService(repo Repository, catalog Catalog, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, catalog: catalog, events: pub}
}

func (s *Service) AddFavorite(ctx context.Context, userID int, productID int) ([]int, error) {
	if userID <= 0 || productID <= 0 {
		return nil, ErrNotFound
	}
	found, err := s.catalog.Lookup(ctx, []int{productID})
	if err != nil {
		return nil, err
	}
	if _, ok := found[productID]; !ok {
		return nil, ErrUnknownProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.repo.IDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id == productID {
			return nil, ErrAlreadyFavorite
		}
	}
	ids = append(ids, productID)
	return ids, s.save(ctx, userID, ids)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID int, productID int) ([]int, error) {
	if userID <= 0 || productID <= 0 {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.repo.IDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if id == productID {
			ids = append(ids[:i], ids[i+1:]...)
			return ids, s.save(ctx, userID, ids)
		}
	}
	return nil, ErrNotFavorite
}

// GetFavorites returns the wishlist rehydrated against the catalog, in the
// order products were added.
func (s *Service) GetFavorites(ctx context.Context, userID int) ([]product.Product, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	ids, err := s.repo.IDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) save(ctx context.Context, userID int, ids []int) error {
	if err := s.repo.Save(ctx, userID, ids); err != nil {
		return err
	}
	_ = s.events.Publish(ctx, events.TopicWishlistUpdated, strconv.Itoa(userID), ids)
	return nil
}
