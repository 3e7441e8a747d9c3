package checkout

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/salespoint/pos-backend/internal/cart"
)

// ErrSubmissionInFlight is returned when a cart already has a submission
// moving through the gate.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ErrCartEmpty rejects submissions for carts with no lines.
var ErrCartEmpty = errors.New("cart is empty")

// ErrNothingToPay rejects submissions when the grand total is not positive.
var ErrNothingToPay = errors.New("total must be greater than zero")

// ErrNotAwaitingPayment is returned when a tender confirmation arrives for a
// cart that never opened one.
var ErrNotAwaitingPayment = errors.New("no payment awaited for this cart")

// GateState tracks where a cart is in the submission lifecycle.
type GateState string

const (
	// GateIdle means the cart is editable and no submission is pending.
	GateIdle GateState = "idle"
	// GateAwaitingPayment means a tender session must resolve before the
	// sale can be processed.
	GateAwaitingPayment GateState = "awaiting_payment"
	// GateSubmitting means the sale is with the order processor.
	GateSubmitting GateState = "submitting"
)

// Decision tells the caller how a submission request was routed.
type Decision string

const (
	// DecisionSubmit routes straight to the order processor.
	DecisionSubmit Decision = "submit"
	// DecisionAwaitPayment opens a tender session first.
	DecisionAwaitPayment Decision = "await_payment"
)

// Gate serializes submissions for a single cart. Only one submission may be
// in flight at a time; everything else is refused until the gate returns to
// idle.
type Gate struct {
	mu    sync.Mutex
	state GateState
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == "" {
		return GateIdle
	}
	return g.state
}

// Request routes a submission attempt from idle. Credit sales and carts
// that already carry a payment go straight to submitting; cash sales with
// no payment must resolve a tender first.
func (g *Gate) Request(c cart.Cart) (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != "" && g.state != GateIdle {
		return "", ErrSubmissionInFlight
	}
	if len(c.Lines) == 0 {
		return "", ErrCartEmpty
	}
	if c.Totals().Total.Sign() <= 0 {
		return "", ErrNothingToPay
	}
	if c.Profile == cart.ProfileCredit || c.PaidAmount.Sign() > 0 {
		g.state = GateSubmitting
		return DecisionSubmit, nil
	}
	g.state = GateAwaitingPayment
	return DecisionAwaitPayment, nil
}

// Confirm moves an awaited payment into submitting once the tender resolved.
func (g *Gate) Confirm() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GateAwaitingPayment {
		return ErrNotAwaitingPayment
	}
	g.state = GateSubmitting
	return nil
}

// Cancel abandons an awaited payment and reopens the cart for editing.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GateAwaitingPayment {
		g.state = GateIdle
	}
}

// Finish returns the gate to idle after the processor responded, success or
// failure alike.
func (g *Gate) Finish() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = GateIdle
}

// Gates holds one gate per live cart.
type Gates struct {
	mu sync.Mutex
	m  map[uuid.UUID]*Gate
}

// NewGates constructs an empty gate registry.
func NewGates() *Gates {
	return &Gates{m: make(map[uuid.UUID]*Gate)}
}

// For returns the gate for the given cart, creating it on first use.
func (r *Gates) For(id uuid.UUID) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.m[id]; ok {
		return g
	}
	g := &Gate{state: GateIdle}
	r.m[id] = g
	return g
}

// Drop forgets the gate for a cart whose session ended.
func (r *Gates) Drop(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}
