package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salespoint/pos-backend/internal/money"
)

// State tracks where a tender session is in its lifecycle.
type State string

const (
	// StateAwaitingTender means the cashier is still entering the payment.
	StateAwaitingTender State = "awaiting_tender"
	// StateResolved means the tender passed validation and produced a resolution.
	StateResolved State = "resolved"
)

// overpaymentFactor bounds how far the tendered amount may exceed the total.
var overpaymentFactor = decimal.New(110, -2)

// ValidationError carries per-field messages for a rejected tender. The
// session stays open so the cashier can correct the input.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	for field, msg := range e.Fields {
		return field + ": " + msg
	}
	return "tender validation failed"
}

// Resolution is what a successfully closed tender hands to the submission flow.
type Resolution struct {
	MethodID uuid.UUID
	Amount   decimal.Decimal
}

// Session is a single tender interaction against a snapshotted grand total.
// The snapshot is taken when the session opens and does not track later cart
// changes; re-opening takes a fresh one.
type Session struct {
	State    State
	Total    decimal.Decimal
	Tendered decimal.Decimal
	MethodID *uuid.UUID
	OpenedAt time.Time
}

// Open starts a tender session against the given total. The tendered amount
// is pre-filled with the total so an exact cash payment needs no typing.
func Open(total decimal.Decimal, now time.Time) *Session {
	return &Session{
		State:    StateAwaitingTender,
		Total:    total,
		Tendered: total,
		OpenedAt: now,
	}
}

// Change returns how much is owed back to the customer; zero when the
// tendered amount does not cover the total.
func (s *Session) Change() decimal.Decimal {
	diff := s.Tendered.Sub(s.Total)
	if diff.Sign() <= 0 {
		return decimal.Zero
	}
	return diff
}

// Balance returns how much is still missing; zero once the tendered amount
// covers the total. Change and Balance are never both positive.
func (s *Session) Balance() decimal.Decimal {
	diff := s.Total.Sub(s.Tendered)
	if diff.Sign() <= 0 {
		return decimal.Zero
	}
	return diff
}

// Submit validates the tender and, when it passes, resolves the session.
// A failed validation leaves the session awaiting tender and reports every
// offending field at once.
func (s *Session) Submit(methodID *uuid.UUID, tendered string) (Resolution, error) {
	fields := map[string]string{}

	if methodID == nil || *methodID == uuid.Nil {
		fields["paymentTypeId"] = "payment type is required"
	}

	amount, err := decimal.NewFromString(tendered)
	switch {
	case err != nil:
		fields["amount"] = "amount must be a number"
	case amount.Sign() <= 0:
		fields["amount"] = "amount must be greater than zero"
	case amount.GreaterThan(s.Total.Mul(overpaymentFactor)):
		fields["amount"] = "amount exceeds payment by more than " + money.Format2(s.Total.Mul(overpaymentFactor))
	}

	if len(fields) > 0 {
		return Resolution{}, &ValidationError{Fields: fields}
	}

	s.Tendered = amount
	s.MethodID = methodID
	s.State = StateResolved
	return Resolution{MethodID: *methodID, Amount: amount}, nil
}
