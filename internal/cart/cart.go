package cart

import (
	"strconv"

	"github.com/wichananm65/pet-care-backend/internal/product"
)

// CartLine is the persisted cart entry. A product appears at most once.
type CartLine struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CartItem is a line rehydrated against the catalog.
type CartItem struct {
	product.Product
	Quantity int `json:"quantity"`
}

func storeKey(userID int) string {
	return "cart:" + strconv.Itoa(userID)
}
