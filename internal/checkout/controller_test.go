package checkout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/pet-care-backend/internal/address"
	"github.com/wichananm65/pet-care-backend/internal/cart"
	"github.com/wichananm65/pet-care-backend/internal/order"
	"github.com/wichananm65/pet-care-backend/internal/payment"
	"github.com/wichananm65/pet-care-backend/internal/product"
	"github.com/wichananm65/pet-care-backend/internal/storage"
)

const customer = 7

type fixture struct {
	cart      *cart.Service
	addresses *address.Service
	payments  *payment.Service
	orders    *order.Service
}

func newFixture() *fixture {
	catalog := product.NewService(product.NewInMemoryRepository(product.SampleCatalog()))
	payments := payment.NewService(payment.NewInMemoryRepository(nil))
	return &fixture{
		cart:      cart.NewService(cart.NewStoreRepository(storage.NewMemoryStore()), catalog, nil),
		addresses: address.NewService(address.NewInMemoryRepository(nil), address.SampleLocalities()),
		payments:  payments,
		orders:    order.NewService(order.NewInMemoryRepository(), catalog, payments, decimal.RequireFromString("0.19"), nil),
	}
}

func (f *fixture) manager(orders OrderPlacer) *Manager {
	if orders == nil {
		orders = f.orders
	}
	return NewManager(f.cart, f.addresses, f.payments, orders)
}

// seed fills the cart with two Cat Scratcher Beds and one Double Food Bowl
// and gives the customer a default address and card.
func (f *fixture) seed(t *testing.T) (address.Address, payment.Method) {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.Add(ctx, customer, 1)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, customer, 1)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, customer, 2)
	require.NoError(t, err)

	a, err := f.addresses.AddAddress(ctx, customer, address.Input{Line: "Calle 94 # 11-30", LocalityID: 1, NeighborhoodID: 1})
	require.NoError(t, err)
	m, err := f.payments.Create(ctx, customer, "", payment.Card{Brand: "VISA", Last4: "4242", HolderName: "Ana Diaz", ExpMonth: 12, ExpYear: 2099})
	require.NoError(t, err)
	return a, m
}

func toPayment(t *testing.T, ctrl *Controller) Session {
	t.Helper()
	ctx := context.Background()
	var s Session
	var err error
	for _, want := range []Step{StepDelivery, StepAddress, StepPayment} {
		s, err = ctrl.Continue(ctx, ContinueInput{})
		require.NoError(t, err)
		require.Equal(t, want, s.Step)
	}
	return s
}

type flakyOrders struct {
	fail  bool
	next  OrderPlacer
	calls int32
}

func (o *flakyOrders) Checkout(ctx context.Context, req order.CheckoutRequest) (order.Bill, error) {
	atomic.AddInt32(&o.calls, 1)
	if o.fail {
		return order.Bill{}, errors.New("upstream timeout")
	}
	return o.next.Checkout(ctx, req)
}

type blockingOrders struct {
	started chan struct{}
	release chan struct{}
	calls   int32
}

func (o *blockingOrders) Checkout(_ context.Context, req order.CheckoutRequest) (order.Bill, error) {
	atomic.AddInt32(&o.calls, 1)
	o.started <- struct{}{}
	<-o.release
	return order.Bill{ID: 1, UserID: req.UserID}, nil
}

func TestCheckout_HappyPath(t *testing.T) {
	f := newFixture()
	addr, card := f.seed(t)
	ctrl := f.manager(nil).For(customer)
	ctx := context.Background()

	s := ctrl.Start(ctx)
	assert.Equal(t, StepCart, s.Step)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, DeliveryHome, s.State.Delivery)
	assert.Equal(t, addr.AddressID, s.State.Address.AddressID)
	require.NotNil(t, s.State.PaymentMethod)
	assert.Equal(t, card.ID, s.State.PaymentMethod.ID)
	assert.False(t, s.CanFinalize)

	s = toPayment(t, ctrl)
	assert.False(t, s.NeedsNewAddress)
	assert.Len(t, s.Addresses, 1)
	assert.True(t, s.CanFinalize)
	assert.True(t, ctrl.CanFinalize())

	s, err := ctrl.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, s.Step)
	require.NotNil(t, s.Bill)
	assert.Equal(t, "Calle 94 # 11-30, Chicó, Chapinero", s.Bill.ShippingAddress)
	assert.True(t, s.Bill.Subtotal.Equal(decimal.NewFromInt(2100)), s.Bill.Subtotal.String())
	assert.True(t, s.Bill.Taxes.Equal(decimal.NewFromInt(399)), s.Bill.Taxes.String())
	assert.True(t, s.Bill.TotalBill.Equal(decimal.NewFromInt(2499)), s.Bill.TotalBill.String())

	// the cart survives until exit
	lines, _ := f.cart.Lines(ctx, customer)
	assert.Len(t, lines, 2)

	_, err = ctrl.Cancel()
	assert.ErrorIs(t, err, ErrInvalidStep)

	last, err := ctrl.Exit(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, last.Step)
	lines, _ = f.cart.Lines(ctx, customer)
	assert.Empty(t, lines)
	_, err = ctrl.Session()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCheckout_EmptyCartCannotContinue(t *testing.T) {
	f := newFixture()
	ctrl := f.manager(nil).For(customer)

	ctrl.Start(context.Background())
	s, err := ctrl.Continue(context.Background(), ContinueInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StepCart, s.Step)
}

func TestCheckout_FinalizeNeedsPaymentMethod(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.cart.Add(ctx, customer, 3)
	require.NoError(t, err)
	_, err = f.addresses.AddAddress(ctx, customer, address.Input{Line: "Cra 7 # 140-20", LocalityID: 2, NeighborhoodID: 4})
	require.NoError(t, err)
	ctrl := f.manager(nil).For(customer)

	ctrl.Start(ctx)
	_, err = ctrl.SelectPayment(ctx, 1)
	assert.ErrorIs(t, err, ErrInvalidStep)

	s := toPayment(t, ctrl)
	assert.Nil(t, s.State.PaymentMethod)
	assert.False(t, s.CanFinalize)

	_, err = ctrl.Finalize(ctx)
	assert.ErrorIs(t, err, ErrPaymentRequired)
	_, err = ctrl.Continue(ctx, ContinueInput{})
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = ctrl.SelectPayment(ctx, 999)
	assert.ErrorIs(t, err, ErrUnknownPayment)

	m, err := f.payments.Create(ctx, customer, "Nequi", payment.CashVoucher{Provider: "EFECTY"})
	require.NoError(t, err)
	s, err = ctrl.SelectPayment(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, s.CanFinalize)

	// a method of another user is not selectable
	other, err := f.payments.Create(ctx, 8, "", payment.CashVoucher{Provider: "BALOTO"})
	require.NoError(t, err)
	_, err = ctrl.SelectPayment(ctx, other.ID)
	assert.ErrorIs(t, err, ErrUnknownPayment)
}

func TestCheckout_NoSavedAddressNeedsNewOne(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.cart.Add(ctx, customer, 5)
	require.NoError(t, err)
	ctrl := f.manager(nil).For(customer)

	ctrl.Start(ctx)
	_, err = ctrl.Continue(ctx, ContinueInput{})
	require.NoError(t, err)
	s, err := ctrl.Continue(ctx, ContinueInput{Delivery: DeliveryHome})
	require.NoError(t, err)
	assert.Equal(t, StepAddress, s.Step)
	assert.True(t, s.NeedsNewAddress)
	assert.Empty(t, s.Addresses)

	_, err = ctrl.Continue(ctx, ContinueInput{})
	assert.ErrorIs(t, err, address.ErrInvalidAddress)

	s, err = ctrl.Continue(ctx, ContinueInput{Address: &AddressForm{Line: "Cra 7", LocalityID: 1, NeighborhoodID: 4}})
	assert.ErrorIs(t, err, address.ErrNeighborhoodMismatch)
	assert.Equal(t, StepAddress, s.Step)

	s, err = ctrl.Continue(ctx, ContinueInput{Address: &AddressForm{
		Line: "Cra 7 # 140-20", LocalityID: 2, NeighborhoodID: 4, PlaceType: address.PlaceWork, SaveToProfile: true,
	}})
	require.NoError(t, err)
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, "Usaquén", s.State.Address.LocalityName)
	assert.Equal(t, "Cedritos", s.State.Address.NeighborhoodName)
	assert.NotZero(t, s.State.Address.AddressID)

	saved, err := f.addresses.GetAddresses(ctx, customer)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].IsDefault)
}

func TestCheckout_UnsavedAddressIsNotPersisted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.cart.Add(ctx, customer, 5)
	require.NoError(t, err)
	ctrl := f.manager(nil).For(customer)

	ctrl.Start(ctx)
	_, _ = ctrl.Continue(ctx, ContinueInput{})
	_, _ = ctrl.Continue(ctx, ContinueInput{})
	s, err := ctrl.Continue(ctx, ContinueInput{Address: &AddressForm{Line: "Calle 80", LocalityID: 1, NeighborhoodID: 2}})
	require.NoError(t, err)
	assert.Zero(t, s.State.Address.AddressID)
	assert.Equal(t, "El Retiro", s.State.Address.NeighborhoodName)

	saved, _ := f.addresses.GetAddresses(ctx, customer)
	assert.Empty(t, saved)
}

func TestCheckout_CancelResetsToCart(t *testing.T) {
	f := newFixture()
	addr, _ := f.seed(t)
	ctx := context.Background()
	other, err := f.addresses.AddAddress(ctx, customer, address.Input{Line: "Calle 1", LocalityID: 2, NeighborhoodID: 3})
	require.NoError(t, err)
	ctrl := f.manager(nil).For(customer)

	start := ctrl.Start(ctx)
	_, err = ctrl.Cancel()
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, _ = ctrl.Continue(ctx, ContinueInput{})
	_, _ = ctrl.Continue(ctx, ContinueInput{})
	s, err := ctrl.Continue(ctx, ContinueInput{Address: &AddressForm{AddressID: other.AddressID}})
	require.NoError(t, err)
	assert.Equal(t, other.AddressID, s.State.Address.AddressID)

	s, err = ctrl.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StepCart, s.Step)
	assert.Equal(t, start.ID, s.ID)
	assert.Greater(t, s.Generation, start.Generation)
	assert.Equal(t, addr.AddressID, s.State.Address.AddressID)

	lines, _ := f.cart.Lines(ctx, customer)
	assert.Len(t, lines, 2)
}

func TestCheckout_ForeignAddressRejected(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()
	foreign, err := f.addresses.AddAddress(ctx, 8, address.Input{Line: "Calle 1", LocalityID: 2, NeighborhoodID: 3})
	require.NoError(t, err)
	ctrl := f.manager(nil).For(customer)

	ctrl.Start(ctx)
	_, _ = ctrl.Continue(ctx, ContinueInput{})
	_, _ = ctrl.Continue(ctx, ContinueInput{})
	s, err := ctrl.Continue(ctx, ContinueInput{Address: &AddressForm{AddressID: foreign.AddressID}})
	assert.ErrorIs(t, err, ErrAddressRequired)
	assert.Equal(t, StepAddress, s.Step)
}

func TestCheckout_FailedOrderKeepsState(t *testing.T) {
	f := newFixture()
	addr, card := f.seed(t)
	ctx := context.Background()
	orders := &flakyOrders{fail: true, next: f.orders}
	ctrl := f.manager(orders).For(customer)

	ctrl.Start(ctx)
	before := toPayment(t, ctrl)

	s, err := ctrl.Finalize(ctx)
	assert.ErrorIs(t, err, ErrOrderFailed)
	assert.Equal(t, StepPayment, s.Step)
	assert.NotEmpty(t, s.LastError)
	assert.False(t, s.Submitting)
	assert.True(t, s.CanFinalize)
	assert.Equal(t, before.State.Address, s.State.Address)
	assert.Equal(t, addr.AddressID, s.State.Address.AddressID)
	assert.Equal(t, card.ID, s.State.PaymentMethod.ID)
	lines, _ := f.cart.Lines(ctx, customer)
	assert.Len(t, lines, 2)

	// retry is up to the user
	orders.fail = false
	s, err = ctrl.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, s.Step)
	assert.Empty(t, s.LastError)
	assert.Equal(t, int32(2), atomic.LoadInt32(&orders.calls))
}

func TestCheckout_FinalizeIsSubmittedOnce(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()
	orders := &blockingOrders{started: make(chan struct{}), release: make(chan struct{})}
	ctrl := f.manager(orders).For(customer)

	ctrl.Start(ctx)
	toPayment(t, ctrl)

	type result struct {
		s   Session
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := ctrl.Finalize(ctx)
		done <- result{s, err}
	}()
	<-orders.started

	assert.False(t, ctrl.CanFinalize())
	_, err := ctrl.Finalize(ctx)
	assert.ErrorIs(t, err, ErrSubmitting)
	_, err = ctrl.Continue(ctx, ContinueInput{})
	assert.ErrorIs(t, err, ErrSubmitting)

	close(orders.release)
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, StepConfirmation, r.s.Step)
	assert.Equal(t, int32(1), atomic.LoadInt32(&orders.calls))
}

func TestCheckout_StaleResultIsDiscarded(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()
	orders := &blockingOrders{started: make(chan struct{}), release: make(chan struct{})}
	ctrl := f.manager(orders).For(customer)

	ctrl.Start(ctx)
	toPayment(t, ctrl)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Finalize(ctx)
		done <- err
	}()
	<-orders.started

	s, err := ctrl.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StepCart, s.Step)

	close(orders.release)
	assert.ErrorIs(t, <-done, ErrStale)

	s, err = ctrl.Session()
	require.NoError(t, err)
	assert.Equal(t, StepCart, s.Step)
	assert.Nil(t, s.Bill)
	assert.False(t, s.Submitting)
}

func TestManager_ControllersArePerUser(t *testing.T) {
	f := newFixture()
	m := f.manager(nil)
	assert.Same(t, m.For(1), m.For(1))
	assert.NotSame(t, m.For(1), m.For(2))

	m.For(1).Start(context.Background())
	_, err := m.For(2).Session()
	assert.ErrorIs(t, err, ErrNoSession)
}
