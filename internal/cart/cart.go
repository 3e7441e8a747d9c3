package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salespoint/pos-backend/internal/money"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrLineNotFound indicates the referenced line index is out of range.
var ErrLineNotFound = errors.New("cart line not found")

// Profile determines how a sale is settled.
type Profile string

const (
	// ProfileCash settles the sale immediately at the register.
	ProfileCash Profile = "cash"
	// ProfileCredit invoices the sale for later payment.
	ProfileCredit Profile = "credit"
)

// Valid reports whether the profile is a known settlement mode.
func (p Profile) Valid() bool {
	return p == ProfileCash || p == ProfileCredit
}

// ProductRef is the display snapshot of a product owned by a cart line.
type ProductRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	ImageURL string    `json:"imageUrl,omitempty"`
}

// CustomerRef is a weak reference to a customer; it never affects pricing.
type CustomerRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AgentRef is a weak reference to a sales agent for attribution only.
type AgentRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Line is one product entry in the cart with its own quantity, price,
// discount and tax. Tax is snapshotted when the line is added and is not
// re-derived when quantity, price or discount later change.
type Line struct {
	Product        ProductRef      `json:"product"`
	Qty            decimal.Decimal `json:"qty"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountPct    decimal.Decimal `json:"discountPct"`
	DiscountAmt    decimal.Decimal `json:"discountAmt"`
	TaxPct         decimal.Decimal `json:"taxPct"`
	TaxAmt         decimal.Decimal `json:"taxAmt"`
	OriginalTaxPct decimal.Decimal `json:"originalTaxPct"`
	OriginalTaxAmt decimal.Decimal `json:"originalTaxAmt"`
	TaxRemoved     bool            `json:"taxRemoved"`
}

// Total returns unitPrice*qty - discountAmt + taxAmt for the line.
func (l Line) Total() decimal.Decimal {
	return money.LineTotal(l.UnitPrice, l.Qty, l.DiscountAmt, l.TaxAmt)
}

// Gross returns unitPrice*qty before discount and tax.
func (l Line) Gross() decimal.Decimal {
	return money.Gross(l.UnitPrice, l.Qty)
}

// TenderState snapshots the grand total at the moment a tender session was
// opened. The snapshot does not track later total changes; re-opening the
// tender takes a fresh one.
type TenderState struct {
	Total    decimal.Decimal `json:"total"`
	OpenedAt time.Time       `json:"openedAt"`
}

// Cart is the mutable order state for one register session. There is exactly
// one mutator per cart; callers serialize access through the Service.
type Cart struct {
	ID            uuid.UUID       `json:"id"`
	Profile       Profile         `json:"profile"`
	Lines         []Line          `json:"lines"`
	Customer      *CustomerRef    `json:"customer,omitempty"`
	Agent         *AgentRef       `json:"agent,omitempty"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	PaymentTypeID *uuid.UUID      `json:"paymentTypeId,omitempty"`
	Tender        *TenderState    `json:"tender,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// New creates an empty cart for the given settlement profile.
func New(profile Profile, now time.Time) Cart {
	return Cart{
		ID:         uuid.New(),
		Profile:    profile,
		PaidAmount: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddLine appends a new line with a tax snapshot taken on the line gross.
// Non-positive quantities are ignored without error; the register clamps its
// stepper to the 0.01 minimum and a zero here means a no-op add.
func (c *Cart) AddLine(product ProductRef, qty, unitPrice, taxPct decimal.Decimal) {
	if qty.Sign() <= 0 {
		return
	}
	if unitPrice.Sign() < 0 {
		unitPrice = decimal.Zero
	}
	if taxPct.Sign() < 0 {
		taxPct = decimal.Zero
	}
	taxAmt := money.PercentOf(money.Gross(unitPrice, qty), taxPct)
	c.Lines = append(c.Lines, Line{
		Product:        product,
		Qty:            qty,
		UnitPrice:      unitPrice,
		DiscountPct:    decimal.Zero,
		DiscountAmt:    decimal.Zero,
		TaxPct:         taxPct,
		TaxAmt:         taxAmt,
		OriginalTaxPct: taxPct,
		OriginalTaxAmt: taxAmt,
	})
}

// UpdateQty sets the quantity for a line, flooring at the 0.01 minimum. The
// discount amount is re-clamped so it never exceeds the new line gross; the
// tax snapshot is left untouched.
func (c *Cart) UpdateQty(index int, qty decimal.Decimal) error {
	line, err := c.line(index)
	if err != nil {
		return err
	}
	if qty.LessThan(money.MinQty) {
		qty = money.MinQty
	}
	line.Qty = qty
	line.DiscountAmt = money.ClampDiscount(line.Gross(), line.DiscountAmt)
	return nil
}

// StepQty adjusts a line quantity by delta, flooring at the minimum.
func (c *Cart) StepQty(index int, delta decimal.Decimal) error {
	line, err := c.line(index)
	if err != nil {
		return err
	}
	return c.UpdateQty(index, line.Qty.Add(delta))
}

// UpdatePrice overrides the unit price for a line.
func (c *Cart) UpdatePrice(index int, unitPrice decimal.Decimal) error {
	line, err := c.line(index)
	if err != nil {
		return err
	}
	if unitPrice.Sign() < 0 {
		return fmt.Errorf("unit price must not be negative: %w", ErrInvalidInput)
	}
	line.UnitPrice = unitPrice
	line.DiscountAmt = money.ClampDiscount(line.Gross(), line.DiscountAmt)
	return nil
}

// UpdateDiscount stores a pre-reconciled percentage/amount discount pair.
// The caller supplies both views already agreed under the clamp invariant;
// the cart validates the agreement but never re-derives one from the other.
func (c *Cart) UpdateDiscount(index int, pct, amount decimal.Decimal) error {
	line, err := c.line(index)
	if err != nil {
		return err
	}
	if pct.Sign() < 0 || amount.Sign() < 0 {
		return fmt.Errorf("discount must not be negative: %w", ErrInvalidInput)
	}
	gross := line.Gross()
	if amount.GreaterThan(gross) {
		return fmt.Errorf("discount exceeds line gross: %w", ErrInvalidInput)
	}
	if expected := money.PercentToAmount(line.UnitPrice, line.Qty, pct); !money.Equalish(expected, amount) {
		return fmt.Errorf("discount percentage and amount disagree: %w", ErrInvalidInput)
	}
	line.DiscountPct = pct
	line.DiscountAmt = amount
	return nil
}

// RemoveVAT zeroes the tax on a line. The original snapshot is retained so
// AddVAT can restore it.
func (c *Cart) RemoveVAT(index int) error {
	line, err := c.line(index)
	if err != nil {
		return err
	}
	line.TaxPct = decimal.Zero
	line.TaxAmt = decimal.Zero
	line.TaxRemoved = true
	return nil
}

// AddVAT restores the tax snapshot captured when the line was added. It is a
// no-op when the line never carried tax.
func (c *Cart) AddVAT(index int) error {
	line, err := c.line(index)
	if err != nil {
		return err
	}
	if line.OriginalTaxPct.Sign() <= 0 {
		return nil
	}
	line.TaxPct = line.OriginalTaxPct
	line.TaxAmt = line.OriginalTaxAmt
	line.TaxRemoved = false
	return nil
}

// RemoveLine deletes the line at the given index.
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

// Clear drops all lines and any recorded payment.
func (c *Cart) Clear() {
	c.Lines = nil
	c.PaidAmount = decimal.Zero
	c.PaymentTypeID = nil
	c.Tender = nil
}

// AttachCustomer associates an optional customer. A nil ref detaches.
func (c *Cart) AttachCustomer(ref *CustomerRef) {
	c.Customer = ref
}

// AttachAgent associates an optional sales agent. A nil ref detaches.
func (c *Cart) AttachAgent(ref *AgentRef) {
	c.Agent = ref
}

// RecordPayment stores a resolved tender on the cart.
func (c *Cart) RecordPayment(paymentTypeID uuid.UUID, amount decimal.Decimal) {
	c.PaidAmount = amount
	c.PaymentTypeID = &paymentTypeID
	c.Tender = nil
}

func (c *Cart) line(index int) (*Line, error) {
	if index < 0 || index >= len(c.Lines) {
		return nil, ErrLineNotFound
	}
	return &c.Lines[index], nil
}
