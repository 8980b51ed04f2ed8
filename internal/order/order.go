package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one cart line in a checkout request.
type LineItem struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CheckoutRequest is everything needed to bill an order. Prices are never
// taken from the request.
type CheckoutRequest struct {
	UserID          int        `json:"userId"`
	PaymentMethodID int        `json:"paymentMethodId"`
	ShippingAddress string     `json:"shippingAddress"`
	Items           []LineItem `json:"items"`
}

type BillDetail struct {
	ProductID    int             `json:"productId"`
	ProductName  string          `json:"productName"`
	Amount       int             `json:"amount"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	SubtotalLine decimal.Decimal `json:"subtotalLine"`
	ImageURL     string          `json:"imageUrl"`
}

// Bill is a placed order with server-computed totals.
type Bill struct {
	ID              int             `json:"id"`
	UserID          int             `json:"userId"`
	PaymentMethodID int             `json:"paymentMethodId"`
	ShippingAddress string          `json:"shippingAddress"`
	CreateDate      time.Time       `json:"createDate"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Taxes           decimal.Decimal `json:"taxes"`
	TotalBill       decimal.Decimal `json:"totalBill"`
	BillDetails     []BillDetail    `json:"billDetails"`
}
