package recommended

import (
	"context"
	"sort"

	"github.com/wichananm65/pet-care-backend/internal/product"
)

const defaultLimit = 12

type Catalog interface {
	List(ctx context.Context) ([]product.Product, error)
}

type Service struct {
	catalog Catalog
}

func NewService(c Catalog) *Service {
	return &Service{catalog: c}
}

// List returns up to limit products ordered by score desc then id,
// starting at offset.
func (s *Service) List(ctx context.Context, limit, offset int) ([]RecommendedItem, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Score != products[j].Score {
			return products[i].Score > products[j].Score
		}
		return products[i].ID < products[j].ID
	})

	out := make([]RecommendedItem, 0, limit)
	for i := offset; i < len(products) && len(out) < limit; i++ {
		out = append(out, RecommendedItem{Rank: i + 1, Product: products[i]})
	}
	return out, nil
}
