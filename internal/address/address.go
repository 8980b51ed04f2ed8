package address

import "strings"

type PlaceType string

const (
	PlaceResidential PlaceType = "RESIDENTIAL"
	PlaceWork        PlaceType = "WORK"
	PlaceOther       PlaceType = "OTHER"
)

func (p PlaceType) Valid() bool {
	switch p {
	case PlaceResidential, PlaceWork, PlaceOther:
		return true
	}
	return false
}

type Address struct {
	AddressID        int       `json:"addressId"`
	UserID           int       `json:"userId"`
	Line             string    `json:"line"`
	NeighborhoodID   int       `json:"neighborhoodId"`
	NeighborhoodName string    `json:"neighborhoodName"`
	LocalityID       int       `json:"localityId"`
	LocalityName     string    `json:"localityName"`
	AdditionalInfo   string    `json:"additionalInfo,omitempty"`
	DeliveryNotes    string    `json:"deliveryNotes,omitempty"`
	PlaceType        PlaceType `json:"placeType"`
	IsDefault        bool      `json:"isDefault"`
	CreatedAt        string    `json:"createdAt,omitempty"`
	UpdatedAt        string    `json:"updatedAt,omitempty"`
}

// Locality is the top level of the two-level location hierarchy.
type Locality struct {
	ID   int    `json:"localityId"`
	Name string `json:"localityName"`
}

// Neighborhood always belongs to exactly one locality.
type Neighborhood struct {
	ID         int    `json:"neighborhoodId"`
	LocalityID int    `json:"localityId"`
	Name       string `json:"neighborhoodName"`
}

// Input is the client-editable part of an address. Names are resolved from
// the ids, never taken from the client.
type Input struct {
	Line           string    `json:"line"`
	NeighborhoodID int       `json:"neighborhoodId"`
	LocalityID     int       `json:"localityId"`
	AdditionalInfo string    `json:"additionalInfo"`
	DeliveryNotes  string    `json:"deliveryNotes"`
	PlaceType      PlaceType `json:"placeType"`
}

// FormatShipping renders the single-line shipping address sent with orders.
func FormatShipping(a Address) string {
	parts := []string{strings.TrimSpace(a.Line)}
	if a.AdditionalInfo != "" {
		parts = append(parts, strings.TrimSpace(a.AdditionalInfo))
	}
	if a.NeighborhoodName != "" {
		parts = append(parts, a.NeighborhoodName)
	}
	if a.LocalityName != "" {
		parts = append(parts, a.LocalityName)
	}
	return strings.Join(parts, ", ")
}
