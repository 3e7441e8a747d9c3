package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/salespoint/pos-backend/internal/cart"
	"github.com/salespoint/pos-backend/internal/events"
	"github.com/salespoint/pos-backend/internal/money"
	"github.com/salespoint/pos-backend/internal/obs"
	"github.com/salespoint/pos-backend/internal/payment"
)

// PaymentInfo is the settled payment attached to a submitted sale.
type PaymentInfo struct {
	PaymentTypeID uuid.UUID `json:"paymentTypeId"`
	Amount        string    `json:"amount"`
}

// Transaction is the assembled sale handed to the order processor. Figures
// are rendered with two decimal places; the processor never recomputes them.
type Transaction struct {
	SaleID      uuid.UUID         `json:"saleId"`
	CartID      uuid.UUID         `json:"cartId"`
	Profile     cart.Profile      `json:"profile"`
	Lines       []cart.LineView   `json:"lines"`
	Totals      cart.TotalsView   `json:"totals"`
	Payment     *PaymentInfo      `json:"payment,omitempty"`
	Customer    *cart.CustomerRef `json:"customer,omitempty"`
	Agent       *cart.AgentRef    `json:"agent,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// Receipt is the processor's acknowledgement of a completed sale.
type Receipt struct {
	OrderID string `json:"orderId"`
	Number  string `json:"number,omitempty"`
}

// Processor takes a fully assembled transaction and records the sale in the
// back office. One call per gated submission; transport-level retries live
// inside the implementation.
type Processor interface {
	Process(ctx context.Context, tx Transaction) (Receipt, error)
}

// Result reports how a submission request ended.
type Result struct {
	Status  Decision   `json:"status"`
	Receipt *Receipt   `json:"receipt,omitempty"`
	Cart    *cart.View `json:"cart,omitempty"`
}

// Service gates submissions and drives resolved sales through the order
// processor.
type Service struct {
	Carts     *cart.Service
	Gates     *Gates
	Processor Processor
	Events    *events.Bus
	Log       zerolog.Logger
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Submit routes a submission attempt. Credit sales and pre-paid carts go
// straight to the processor; cash sales with no payment open a tender
// session and wait for ConfirmTender.
func (s *Service) Submit(ctx context.Context, cartID uuid.UUID) (Result, error) {
	if s == nil || s.Carts == nil || s.Gates == nil {
		return Result{}, errors.New("checkout service not configured")
	}
	c, err := s.Carts.Load(ctx, cartID)
	if err != nil {
		return Result{}, err
	}
	gate := s.Gates.For(cartID)
	decision, err := gate.Request(c)
	if err != nil {
		return Result{}, err
	}
	if decision == DecisionAwaitPayment {
		view, err := s.Carts.OpenTender(ctx, cartID)
		if err != nil {
			gate.Finish()
			return Result{}, err
		}
		return Result{Status: DecisionAwaitPayment, Cart: &view}, nil
	}
	return s.process(ctx, gate, c)
}

// ConfirmTender validates the tendered payment against the snapshot taken
// when the session opened, records it on the cart and completes the
// submission. Validation failures keep the tender open.
func (s *Service) ConfirmTender(ctx context.Context, cartID uuid.UUID, methodID *uuid.UUID, amount string) (Result, error) {
	if s == nil || s.Carts == nil || s.Gates == nil {
		return Result{}, errors.New("checkout service not configured")
	}
	c, err := s.Carts.Load(ctx, cartID)
	if err != nil {
		return Result{}, err
	}
	if c.Tender == nil {
		return Result{}, ErrNotAwaitingPayment
	}
	session := payment.Open(c.Tender.Total, c.Tender.OpenedAt)
	resolution, err := session.Submit(methodID, amount)
	if err != nil {
		var verr *payment.ValidationError
		if errors.As(err, &verr) {
			for field := range verr.Fields {
				obs.IncTenderFailure(field)
			}
		}
		return Result{}, err
	}
	gate := s.Gates.For(cartID)
	if err := gate.Confirm(); err != nil {
		return Result{}, err
	}
	c.RecordPayment(resolution.MethodID, resolution.Amount)
	if _, err := s.Carts.Save(ctx, c); err != nil {
		gate.Finish()
		return Result{}, err
	}
	if s.Events != nil {
		payload := map[string]any{
			"cartId":        c.ID.String(),
			"paymentTypeId": resolution.MethodID.String(),
			"tendered":      money.Format2(resolution.Amount),
			"total":         money.Format2(session.Total),
			"change":        money.Format2(session.Change()),
		}
		if _, emitErr := s.Events.Emit(ctx, events.TopicTenderResolved, c.ID, payload); emitErr != nil {
			s.Log.Warn().Err(emitErr).Str("cart_id", c.ID.String()).Msg("tender event fan-out incomplete")
		}
	}
	return s.process(ctx, gate, c)
}

// CancelTender dismisses an open tender session and reopens the cart.
func (s *Service) CancelTender(ctx context.Context, cartID uuid.UUID) (cart.View, error) {
	if s == nil || s.Carts == nil || s.Gates == nil {
		return cart.View{}, errors.New("checkout service not configured")
	}
	s.Gates.For(cartID).Cancel()
	c, err := s.Carts.Load(ctx, cartID)
	if err != nil {
		return cart.View{}, err
	}
	c.Tender = nil
	return s.Carts.Save(ctx, c)
}

// process hands the assembled transaction to the order processor. On
// failure the cart is left exactly as it was so the cashier can retry or
// keep editing.
func (s *Service) process(ctx context.Context, gate *Gate, c cart.Cart) (Result, error) {
	if s.Processor == nil {
		gate.Finish()
		return Result{}, errors.New("order processor not configured")
	}
	tx := s.assemble(c)
	receipt, err := s.Processor.Process(ctx, tx)
	if err != nil {
		gate.Finish()
		obs.IncSaleSubmitted(string(c.Profile), "error")
		s.Log.Warn().Err(err).Str("cart_id", c.ID.String()).Msg("sale submission failed")
		if s.Events != nil {
			payload := map[string]any{
				"saleId":  tx.SaleID.String(),
				"cartId":  c.ID.String(),
				"profile": string(c.Profile),
				"reason":  err.Error(),
			}
			if _, emitErr := s.Events.Emit(ctx, events.TopicSaleRejected, tx.SaleID, payload); emitErr != nil {
				s.Log.Warn().Err(emitErr).Str("sale_id", tx.SaleID.String()).Msg("sale event fan-out incomplete")
			}
		}
		return Result{}, fmt.Errorf("process sale: %w", err)
	}
	if s.Events != nil {
		payload := map[string]any{
			"saleId":  tx.SaleID.String(),
			"cartId":  c.ID.String(),
			"orderId": receipt.OrderID,
			"profile": string(c.Profile),
			"total":   tx.Totals.Total,
		}
		if tx.Payment != nil {
			payload["paid"] = tx.Payment.Amount
		}
		if _, emitErr := s.Events.Emit(ctx, events.TopicSaleCompleted, tx.SaleID, payload); emitErr != nil {
			s.Log.Warn().Err(emitErr).Str("sale_id", tx.SaleID.String()).Msg("sale event fan-out incomplete")
		}
	}
	if err := s.Carts.Discard(ctx, c.ID); err != nil {
		s.Log.Warn().Err(err).Str("cart_id", c.ID.String()).Msg("discard cart after sale")
	}
	gate.Finish()
	s.Gates.Drop(c.ID)
	obs.IncSaleSubmitted(string(c.Profile), "ok")
	return Result{Status: DecisionSubmit, Receipt: &receipt}, nil
}

func (s *Service) assemble(c cart.Cart) Transaction {
	view := cart.NewView(c)
	tx := Transaction{
		SaleID:      uuid.New(),
		CartID:      c.ID,
		Profile:     c.Profile,
		Lines:       view.Lines,
		Totals:      view.Totals,
		Customer:    c.Customer,
		Agent:       c.Agent,
		SubmittedAt: s.now(),
	}
	if c.PaymentTypeID != nil && c.PaidAmount.Sign() > 0 {
		tx.Payment = &PaymentInfo{
			PaymentTypeID: *c.PaymentTypeID,
			Amount:        money.Format2(c.PaidAmount),
		}
	}
	return tx
}
