package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/pet-care-backend/internal/events"
	"github.com/wichananm65/pet-care-backend/internal/payment"
	"github.com/wichananm65/pet-care-backend/internal/product"
)

var (
	ErrEmptyOrder      = errors.New("order has no items")
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
	ErrUnknownProduct  = errors.New("product not found")
	ErrPaymentMethod   = errors.New("payment method not found")
	ErrShipping        = errors.New("shipping address is required")
	ErrInvalidUser     = errors.New("invalid user")
)

type Catalog interface {
	Lookup(ctx context.Context, ids []int) (map[int]product.Product, error)
}

type PaymentMethods interface {
	Get(ctx context.Context, userID, id int) (payment.Method, error)
}

// Service provides business logic for orders. It is the only place order
// totals are computed.
type Service struct {
	repo     Repository
	catalog  Catalog
	payments PaymentMethods
	taxRate  decimal.Decimal
	events   events.Publisher
}

func NewService(r Repository, catalog Catalog, payments PaymentMethods, taxRate decimal.Decimal, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: r, catalog: catalog, payments: payments, taxRate: taxRate, events: pub}
}

// Checkout prices req against the catalog and stores the bill. Repeated
// product ids are merged into one detail line.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (Bill, error) {
	if req.UserID <= 0 {
		return Bill{}, ErrInvalidUser
	}
	if len(req.Items) == 0 {
		return Bill{}, ErrEmptyOrder
	}
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	if req.ShippingAddress == "" {
		return Bill{}, ErrShipping
	}
	if _, err := s.payments.Get(ctx, req.UserID, req.PaymentMethodID); err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			return Bill{}, ErrPaymentMethod
		}
		return Bill{}, err
	}

	ids := make([]int, 0, len(req.Items))
	qty := make(map[int]int, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return Bill{}, ErrInvalidQuantity
		}
		if _, seen := qty[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}

	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return Bill{}, err
	}

	bill := Bill{
		UserID:          req.UserID,
		PaymentMethodID: req.PaymentMethodID,
		ShippingAddress: req.ShippingAddress,
		CreateDate:      time.Now().UTC(),
		Subtotal:        decimal.Zero,
		BillDetails:     make([]BillDetail, 0, len(ids)),
	}
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			return Bill{}, fmt.Errorf("%w: %d", ErrUnknownProduct, id)
		}
		line := p.Price.Mul(decimal.NewFromInt(int64(qty[id])))
		bill.BillDetails = append(bill.BillDetails, BillDetail{
			ProductID:    id,
			ProductName:  p.Name,
			Amount:       qty[id],
			UnitPrice:    p.Price,
			SubtotalLine: line,
			ImageURL:     p.ImageURL,
		})
		bill.Subtotal = bill.Subtotal.Add(line)
	}
	bill.Taxes = bill.Subtotal.Mul(s.taxRate).Round(2)
	bill.TotalBill = bill.Subtotal.Add(bill.Taxes)

	created, err := s.repo.Create(ctx, bill)
	if err != nil {
		return Bill{}, err
	}
	_ = s.events.Publish(ctx, events.TopicOrderCreated, strconv.Itoa(created.UserID), created)
	return created, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int) ([]Bill, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	return s.repo.ListByUser(ctx, userID)
}

// Get returns the bill only if it belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id int) (Bill, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Bill{}, err
	}
	if b.UserID != userID {
		return Bill{}, ErrNotFound
	}
	return b, nil
}

// ListRecent backs the cashier view across all customers.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Bill, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}
