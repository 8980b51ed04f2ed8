package checkout

import (
	"errors"
	"time"

	"github.com/wichananm65/pet-care-backend/internal/address"
	"github.com/wichananm65/pet-care-backend/internal/order"
	"github.com/wichananm65/pet-care-backend/internal/payment"
)

type Step string

const (
	StepCart         Step = "CART"
	StepDelivery     Step = "DELIVERY"
	StepAddress      Step = "ADDRESS"
	StepPayment      Step = "PAYMENT"
	StepConfirmation Step = "CONFIRMATION"
)

type DeliveryOption string

// DeliveryHome is currently the only option offered.
const DeliveryHome DeliveryOption = "HOME_DELIVERY"

func (d DeliveryOption) Valid() bool {
	return d == DeliveryHome
}

var (
	ErrNoSession       = errors.New("no checkout in progress")
	ErrInvalidStep     = errors.New("action not allowed at this step")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidDelivery = errors.New("unknown delivery option")
	ErrAddressRequired = errors.New("select a saved address or enter a new one")
	ErrUnknownPayment  = errors.New("payment method not found")
	ErrPaymentRequired = errors.New("select a payment method first")
	ErrSubmitting      = errors.New("order is already being submitted")
	ErrOrderFailed     = errors.New("order could not be created")
	ErrStale           = errors.New("checkout changed while the order was being submitted")
)

// retryMessage is what the client shows after a failed submission.
const retryMessage = "We could not place your order. Please try again."

// AddressForm is the address being used for this checkout. AddressID is set
// when a saved address is selected; otherwise the remaining fields describe
// a new address, stored in the profile only when SaveToProfile is set.
type AddressForm struct {
	AddressID        int               `json:"addressId"`
	Line             string            `json:"line"`
	NeighborhoodID   int               `json:"neighborhoodId"`
	NeighborhoodName string            `json:"neighborhoodName"`
	LocalityID       int               `json:"localityId"`
	LocalityName     string            `json:"localityName"`
	AdditionalInfo   string            `json:"additionalInfo"`
	DeliveryNotes    string            `json:"deliveryNotes"`
	PlaceType        address.PlaceType `json:"placeType"`
	SaveToProfile    bool              `json:"saveToProfile"`
}

func formFromAddress(a address.Address) AddressForm {
	return AddressForm{
		AddressID:        a.AddressID,
		Line:             a.Line,
		NeighborhoodID:   a.NeighborhoodID,
		NeighborhoodName: a.NeighborhoodName,
		LocalityID:       a.LocalityID,
		LocalityName:     a.LocalityName,
		AdditionalInfo:   a.AdditionalInfo,
		DeliveryNotes:    a.DeliveryNotes,
		PlaceType:        a.PlaceType,
	}
}

func (f AddressForm) input() address.Input {
	return address.Input{
		Line:           f.Line,
		NeighborhoodID: f.NeighborhoodID,
		LocalityID:     f.LocalityID,
		AdditionalInfo: f.AdditionalInfo,
		DeliveryNotes:  f.DeliveryNotes,
		PlaceType:      f.PlaceType,
	}
}

func (f AddressForm) shipping() string {
	return address.FormatShipping(address.Address{
		Line:             f.Line,
		AdditionalInfo:   f.AdditionalInfo,
		NeighborhoodName: f.NeighborhoodName,
		LocalityName:     f.LocalityName,
	})
}

// State is everything the order request is built from.
type State struct {
	Delivery      DeliveryOption  `json:"delivery"`
	Address       AddressForm     `json:"address"`
	PaymentMethod *payment.Method `json:"paymentMethod"`
}

// Session is one user's checkout. Addresses holds the saved addresses offered
// at the ADDRESS step.
type Session struct {
	ID              string            `json:"sessionId"`
	UserID          int               `json:"userId"`
	Step            Step              `json:"step"`
	State           State             `json:"state"`
	Addresses       []address.Address `json:"addresses,omitempty"`
	NeedsNewAddress bool              `json:"needsNewAddress"`
	Submitting      bool              `json:"submitting"`
	CanFinalize     bool              `json:"canFinalize"`
	Generation      int               `json:"generation"`
	LastError       string            `json:"lastError,omitempty"`
	Bill            *order.Bill       `json:"bill,omitempty"`
	StartedAt       time.Time         `json:"startedAt"`
}

// ContinueInput carries the fields of the step being left. Empty fields keep
// what is already in the session.
type ContinueInput struct {
	Delivery DeliveryOption `json:"delivery"`
	Address  *AddressForm   `json:"address"`
}
