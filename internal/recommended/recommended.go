package recommended

import "github.com/wichananm65/pet-care-backend/internal/product"

// RecommendedItem is a product picked for the storefront, with its rank.
type RecommendedItem struct {
	Rank int `json:"rank"`
	product.Product
}
