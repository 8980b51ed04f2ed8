package category

import "github.com/shopspring/decimal"

// CategoryItem summarises one product category of the catalog.
type CategoryItem struct {
	CategoryName string          `json:"categoryName"`
	ProductCount int             `json:"productCount"`
	MinPrice     decimal.Decimal `json:"minPrice"`
}
