package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wichananm65/pet-care-backend/internal/address"
	"github.com/wichananm65/pet-care-backend/internal/cart"
	"github.com/wichananm65/pet-care-backend/internal/order"
	"github.com/wichananm65/pet-care-backend/internal/payment"
)

type Cart interface {
	Lines(ctx context.Context, userID int) ([]cart.CartLine, error)
	Clear(ctx context.Context, userID int) error
}

type Addresses interface {
	GetAddresses(ctx context.Context, userID int) ([]address.Address, error)
	GetAddress(ctx context.Context, userID, addressID int) (address.Address, error)
	Preferred(ctx context.Context, userID int) (address.Address, bool, error)
	Prepare(ctx context.Context, userID int, in address.Input) (address.Address, error)
	AddAddress(ctx context.Context, userID int, in address.Input) (address.Address, error)
}

type Payments interface {
	Get(ctx context.Context, userID, id int) (payment.Method, error)
	Default(ctx context.Context, userID int) (payment.Method, bool, error)
}

type OrderPlacer interface {
	Checkout(ctx context.Context, req order.CheckoutRequest) (order.Bill, error)
}

type deps struct {
	cart      Cart
	addresses Addresses
	payments  Payments
	orders    OrderPlacer
}

// Manager hands out one Controller per user.
type Manager struct {
	mu          sync.Mutex
	deps        deps
	controllers map[int]*Controller
}

func NewManager(c Cart, a Addresses, p Payments, o OrderPlacer) *Manager {
	return &Manager{
		deps:        deps{cart: c, addresses: a, payments: p, orders: o},
		controllers: make(map[int]*Controller),
	}
}

func (m *Manager) For(userID int) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[userID]
	if !ok {
		c = &Controller{userID: userID, deps: m.deps}
		m.controllers[userID] = c
	}
	return c
}

// Controller moves one user's checkout through
// CART -> DELIVERY -> ADDRESS -> PAYMENT -> CONFIRMATION. Every reset
// (Start, Cancel, Exit) bumps the generation so a Finalize that was in
// flight at the time discards its result.
type Controller struct {
	mu         sync.Mutex
	userID     int
	deps       deps
	session    *Session
	initial    State
	generation int
}

// Start opens a new checkout at CART, replacing any previous one. The
// user's default address and payment method are preselected when they can
// be loaded.
func (c *Controller) Start(ctx context.Context) Session {
	initial := State{Delivery: DeliveryHome}
	if a, ok, err := c.deps.addresses.Preferred(ctx, c.userID); err != nil {
		log.Warn().Err(err).Int("user_id", c.userID).Msg("checkout: load default address")
	} else if ok {
		initial.Address = formFromAddress(a)
	}
	if m, ok, err := c.deps.payments.Default(ctx, c.userID); err != nil {
		log.Warn().Err(err).Int("user_id", c.userID).Msg("checkout: load default payment method")
	} else if ok {
		initial.PaymentMethod = &m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.initial = initial
	c.session = &Session{
		ID:         uuid.NewString(),
		UserID:     c.userID,
		Step:       StepCart,
		State:      initial,
		Generation: c.generation,
		StartedAt:  time.Now().UTC(),
	}
	return c.snapshot()
}

func (c *Controller) Session() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, ErrNoSession
	}
	return c.snapshot(), nil
}

// Continue leaves the current step for the next one. PAYMENT is left only
// through Finalize.
func (c *Controller) Continue(ctx context.Context, in ContinueInput) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return Session{}, ErrNoSession
	}
	if s.Submitting {
		return c.snapshot(), ErrSubmitting
	}

	var err error
	switch s.Step {
	case StepCart:
		err = c.leaveCart(ctx, s)
	case StepDelivery:
		err = c.leaveDelivery(ctx, s, in)
	case StepAddress:
		err = c.leaveAddress(ctx, s, in)
	default:
		err = fmt.Errorf("%w: cannot continue from %s", ErrInvalidStep, s.Step)
	}
	if err != nil {
		return c.snapshot(), err
	}
	s.LastError = ""
	return c.snapshot(), nil
}

func (c *Controller) leaveCart(ctx context.Context, s *Session) error {
	lines, err := c.deps.cart.Lines(ctx, c.userID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	s.Step = StepDelivery
	return nil
}

func (c *Controller) leaveDelivery(ctx context.Context, s *Session, in ContinueInput) error {
	if in.Delivery != "" {
		s.State.Delivery = in.Delivery
	}
	if !s.State.Delivery.Valid() {
		return ErrInvalidDelivery
	}

	addrs, err := c.deps.addresses.GetAddresses(ctx, c.userID)
	if err != nil {
		return err
	}
	s.Addresses = addrs
	s.NeedsNewAddress = len(addrs) == 0
	switch {
	case s.NeedsNewAddress:
		if s.State.Address.AddressID != 0 {
			s.State.Address = AddressForm{}
		}
	case !hasAddress(addrs, s.State.Address.AddressID):
		s.State.Address = formFromAddress(preferred(addrs))
	}
	s.Step = StepAddress
	return nil
}

func (c *Controller) leaveAddress(ctx context.Context, s *Session, in ContinueInput) error {
	form := s.State.Address
	if in.Address != nil {
		form = *in.Address
	}

	if form.AddressID > 0 {
		a, err := c.deps.addresses.GetAddress(ctx, c.userID, form.AddressID)
		if errors.Is(err, address.ErrNotFound) {
			return ErrAddressRequired
		}
		if err != nil {
			return err
		}
		notes := form.DeliveryNotes
		form = formFromAddress(a)
		if notes != "" {
			form.DeliveryNotes = notes
		}
	} else {
		var (
			a   address.Address
			err error
		)
		if form.SaveToProfile {
			a, err = c.deps.addresses.AddAddress(ctx, c.userID, form.input())
		} else {
			a, err = c.deps.addresses.Prepare(ctx, c.userID, form.input())
		}
		if err != nil {
			return err
		}
		form = formFromAddress(a)
	}

	s.State.Address = form
	s.Step = StepPayment
	return nil
}

// SelectPayment sets the payment method used by Finalize. The method must
// belong to the user.
func (c *Controller) SelectPayment(ctx context.Context, methodID int) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return Session{}, ErrNoSession
	}
	if s.Submitting {
		return c.snapshot(), ErrSubmitting
	}
	if s.Step != StepPayment {
		return c.snapshot(), fmt.Errorf("%w: payment is chosen at %s", ErrInvalidStep, StepPayment)
	}

	m, err := c.deps.payments.Get(ctx, c.userID, methodID)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			return c.snapshot(), ErrUnknownPayment
		}
		return c.snapshot(), err
	}
	s.State.PaymentMethod = &m
	s.LastError = ""
	return c.snapshot(), nil
}

// CanFinalize is true only at PAYMENT, with a payment method chosen and no
// submission in flight.
func (c *Controller) CanFinalize() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && canFinalize(c.session)
}

// Finalize submits the order once. The lock is released while the order is
// placed; if the session was reset in the meantime the result is dropped
// and ErrStale is returned. A failed submission keeps the session at
// PAYMENT with its state and the cart untouched.
func (c *Controller) Finalize(ctx context.Context) (Session, error) {
	c.mu.Lock()
	s := c.session
	var refuse error
	switch {
	case s == nil:
		c.mu.Unlock()
		return Session{}, ErrNoSession
	case s.Submitting:
		refuse = ErrSubmitting
	case s.Step != StepPayment:
		refuse = fmt.Errorf("%w: cannot finalize from %s", ErrInvalidStep, s.Step)
	case s.State.PaymentMethod == nil:
		refuse = ErrPaymentRequired
	}
	if refuse != nil {
		snap := c.snapshot()
		c.mu.Unlock()
		return snap, refuse
	}
	s.Submitting = true
	gen := s.Generation
	state := s.State
	c.mu.Unlock()

	bill, err := c.placeOrder(ctx, state)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s || s.Generation != gen {
		log.Info().Int("user_id", c.userID).Bool("placed", err == nil).Msg("checkout: discarding stale order result")
		return c.snapshot(), ErrStale
	}
	s.Submitting = false
	if err != nil {
		log.Warn().Err(err).Int("user_id", c.userID).Str("session_id", s.ID).Msg("checkout: order failed")
		s.LastError = retryMessage
		return c.snapshot(), fmt.Errorf("%w: %v", ErrOrderFailed, err)
	}
	s.Bill = &bill
	s.Step = StepConfirmation
	s.LastError = ""
	return c.snapshot(), nil
}

func (c *Controller) placeOrder(ctx context.Context, state State) (order.Bill, error) {
	lines, err := c.deps.cart.Lines(ctx, c.userID)
	if err != nil {
		return order.Bill{}, err
	}
	if len(lines) == 0 {
		return order.Bill{}, ErrEmptyCart
	}
	items := make([]order.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.LineItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return c.deps.orders.Checkout(ctx, order.CheckoutRequest{
		UserID:          c.userID,
		PaymentMethodID: state.PaymentMethod.ID,
		ShippingAddress: state.Address.shipping(),
		Items:           items,
	})
}

// Cancel returns to CART from DELIVERY, ADDRESS or PAYMENT, restoring the
// state the checkout started with.
func (c *Controller) Cancel() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return Session{}, ErrNoSession
	}
	if s.Step == StepCart || s.Step == StepConfirmation {
		return c.snapshot(), fmt.Errorf("%w: cannot cancel from %s", ErrInvalidStep, s.Step)
	}
	c.generation++
	s.Generation = c.generation
	s.Step = StepCart
	s.State = c.initial
	s.Addresses = nil
	s.NeedsNewAddress = false
	s.Submitting = false
	s.LastError = ""
	return c.snapshot(), nil
}

// Exit closes a confirmed checkout: the cart is cleared and the session
// discarded. The last view of the session is returned.
func (c *Controller) Exit(ctx context.Context) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return Session{}, ErrNoSession
	}
	if s.Step != StepConfirmation {
		return c.snapshot(), fmt.Errorf("%w: cannot exit from %s", ErrInvalidStep, s.Step)
	}
	if err := c.deps.cart.Clear(ctx, c.userID); err != nil {
		return c.snapshot(), err
	}
	last := c.snapshot()
	c.generation++
	c.session = nil
	return last, nil
}

// snapshot copies the session for callers; c.mu must be held.
func (c *Controller) snapshot() Session {
	if c.session == nil {
		return Session{}
	}
	out := *c.session
	out.Addresses = append([]address.Address(nil), c.session.Addresses...)
	out.CanFinalize = canFinalize(c.session)
	return out
}

func canFinalize(s *Session) bool {
	return s.Step == StepPayment && s.State.PaymentMethod != nil && !s.Submitting
}

func hasAddress(addrs []address.Address, id int) bool {
	if id == 0 {
		return false
	}
	for _, a := range addrs {
		if a.AddressID == id {
			return true
		}
	}
	return false
}

func preferred(addrs []address.Address) address.Address {
	for _, a := range addrs {
		if a.IsDefault {
			return a
		}
	}
	return addrs[0]
}
