package category

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/pet-care-backend/internal/product"
)

func TestList_SummarisesCatalog(t *testing.T) {
	catalog := append(product.SampleCatalog(), product.Product{ID: 9, Name: "Bird Seed", Category: "Birds", Price: decimal.NewFromInt(30)})
	svc := NewService(product.NewService(product.NewInMemoryRepository(catalog)))

	items, err := svc.List(context.Background(), 0)
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.CategoryName)
	}
	assert.Equal(t, []string{"Animal Food", "Pet Supplies", "Clothes and accessories", "Cat exercise", "Birds"}, names)

	supplies := items[1]
	assert.Equal(t, 2, supplies.ProductCount)
	assert.True(t, supplies.MinPrice.Equal(decimal.NewFromInt(420)), supplies.MinPrice.String())

	limited, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
