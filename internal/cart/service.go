package cart

import (
	"context"
	"strconv"
	"sync"

	"github.com/wichananm65/pet-care-backend/internal/events"
	"github.com/wichananm65/pet-care-backend/internal/product"
)

// Catalog resolves product ids against the product catalog.
type Catalog interface {
	Lookup(ctx context.Context, ids []int) (map[int]product.Product, error)
}

// Service orchestrates cart operations. Mutations are read-modify-write on
// the whole line list; concurrent writers from other processes are last
// writer wins.
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

func (s *Service) Lines(ctx context.Context, userID int) ([]CartLine, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.Lines(ctx, userID)
}

// Items returns the cart rehydrated against the catalog. Lines whose product
// no longer exists are dropped from the result.
func (s *Service) Items(ctx context.Context, userID int) ([]CartItem, error) {
	lines, err := s.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]CartItem, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		items = append(items, CartItem{Product: p, Quantity: l.Quantity})
	}
	return items, nil
}

// Add increments an existing line by one or appends a new line with
// quantity 1.
func (s *Service) Add(ctx context.Context, userID, productID int) ([]CartLine, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	found, err := s.catalog.Lookup(ctx, []int{productID})
	if err != nil {
		return nil, err
	}
	if _, ok := found[productID]; !ok {
		return nil, ErrProductNotFound
	}
	return s.mutate(ctx, userID, func(lines []CartLine) ([]CartLine, error) {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity++
				return lines, nil
			}
		}
		return append(lines, CartLine{ProductID: productID, Quantity: 1}), nil
	})
}

// Decrement lowers a line by one. A line never drops below 1; removing it
// takes an explicit Remove.
func (s *Service) Decrement(ctx context.Context, userID, productID int) ([]CartLine, error) {
	return s.mutate(ctx, userID, func(lines []CartLine) ([]CartLine, error) {
		for i := range lines {
			if lines[i].ProductID != productID {
				continue
			}
			if lines[i].Quantity <= 1 {
				return nil, ErrQuantityFloor
			}
			lines[i].Quantity--
			return lines, nil
		}
		return nil, ErrLineNotFound
	})
}

func (s *Service) SetQuantity(ctx context.Context, userID, productID, qty int) ([]CartLine, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, func(lines []CartLine) ([]CartLine, error) {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity = qty
				return lines, nil
			}
		}
		return nil, ErrLineNotFound
	})
}

func (s *Service) Remove(ctx context.Context, userID, productID int) ([]CartLine, error) {
	return s.mutate(ctx, userID, func(lines []CartLine) ([]CartLine, error) {
		for i := range lines {
			if lines[i].ProductID == productID {
				return append(lines[:i], lines[i+1:]...), nil
			}
		}
		return nil, ErrLineNotFound
	})
}

// Clear empties a user's cart.
func (s *Service) Clear(ctx context.Context, userID int) error {
	if userID <= 0 {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Clear(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, userID, []CartLine{})
	return nil
}

// Subscribe notifies fn whenever the user's cart is written.
func (s *Service) Subscribe(userID int, fn func([]CartLine)) func() {
	return s.repo.Subscribe(userID, fn)
}

func (s *Service) mutate(ctx context.Context, userID int, fn func([]CartLine) ([]CartLine, error)) ([]CartLine, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines, err = fn(lines)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, userID, lines); err != nil {
		return nil, err
	}
	s.publish(ctx, userID, lines)
	return lines, nil
}

// publish ignores forward errors; the bus logs them and the write stands.
func (s *Service) publish(ctx context.Context, userID int, lines []CartLine) {
	_ = s.events.Publish(ctx, events.TopicCartUpdated, strconv.Itoa(userID), lines)
}
