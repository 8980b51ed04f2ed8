package category

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/pet-care-backend/internal/product"
)

// Catalog lists every product.
type Catalog interface {
	List(ctx context.Context) ([]product.Product, error)
}

type Service struct {
	catalog Catalog
}

func NewService(c Catalog) *Service {
	return &Service{catalog: c}
}

// List returns one item per known category in product.AllowedCategories
// order, followed by any other category found in the catalog. Categories
// without products are left out.
func (s *Service) List(ctx context.Context, limit int) ([]CategoryItem, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*CategoryItem)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		item, ok := byName[p.Category]
		if !ok {
			item = &CategoryItem{CategoryName: p.Category, MinPrice: p.Price}
			byName[p.Category] = item
		}
		item.ProductCount++
		item.MinPrice = decimal.Min(item.MinPrice, p.Price)
	}

	out := make([]CategoryItem, 0, len(byName))
	for _, name := range product.AllowedCategories {
		if item, ok := byName[name]; ok {
			out = append(out, *item)
			delete(byName, name)
		}
	}
	rest := make([]string, 0, len(byName))
	for name := range byName {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, *byName[name])
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
