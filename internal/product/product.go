package product

import "github.com/shopspring/decimal"

// Product is a catalog entry. Prices are exact decimals; the catalog is the
// only source of unit prices when a bill is built.
type Product struct {
	ID          int             `json:"productId"`
	Name        string          `json:"productName"`
	Description string          `json:"productDesc"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"productPrice"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Score       int             `json:"score"`
}

// AllowedCategories contains the supported product categories used across the app.
var AllowedCategories = []string{
	"Animal Food",
	"Pet Supplies",
	"Clothes and accessories",
	"Cleaning equipment",
	"Sand and bathroom",
	"Hygiene care",
	"Cat snacks",
	"Cat exercise",
}

// SampleCatalog seeds the in-memory repository when no database is configured.
func SampleCatalog() []Product {
	return []Product{
		{ID: 1, Name: "Cat Scratcher Bed", Description: "Comfortable cardboard cat bed", Category: "Pet Supplies", Price: decimal.RequireFromString("840.00"), ImageURL: "/shopping/cat-bed.svg", Score: 5},
		{ID: 2, Name: "Double Food Bowl", Description: "Wooden elevated double food bowl", Category: "Pet Supplies", Price: decimal.RequireFromString("420.00"), ImageURL: "/shopping/double-bowl.svg", Score: 5},
		{ID: 3, Name: "Cat Sweater", Description: "Warm knitted cat sweater", Category: "Clothes and accessories", Price: decimal.RequireFromString("260.00"), ImageURL: "/shopping/cat-sweater.svg", Score: 4},
		{ID: 4, Name: "Cheese Cat House", Description: "Cute cardboard cat house", Category: "Cat exercise", Price: decimal.RequireFromString("399.00"), ImageURL: "/shopping/cheese-house.svg", Score: 5},
		{ID: 5, Name: "Salmon Kibble 2kg", Description: "Dry food for adult cats", Category: "Animal Food", Price: decimal.RequireFromString("189.90"), ImageURL: "/shopping/kibble.svg", Score: 4},
	}
}
