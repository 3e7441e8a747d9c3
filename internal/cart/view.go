package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/salespoint/pos-backend/internal/money"
)

// LineView is the presentation form of a cart line with two-decimal figures.
type LineView struct {
	Index       int        `json:"index"`
	Product     ProductRef `json:"product"`
	Qty         string     `json:"qty"`
	UnitPrice   string     `json:"unitPrice"`
	DiscountPct string     `json:"discountPct"`
	DiscountAmt string     `json:"discountAmt"`
	TaxPct      string     `json:"taxPct"`
	TaxAmt      string     `json:"taxAmt"`
	TaxRemoved  bool       `json:"taxRemoved"`
	LineTotal   string     `json:"lineTotal"`
}

// TotalsView is the presentation form of the aggregate figures.
type TotalsView struct {
	Subtotal    string `json:"subtotal"`
	DiscountAmt string `json:"discountAmt"`
	TaxAmt      string `json:"taxAmt"`
	TaxPct      string `json:"taxPct"`
	Total       string `json:"total"`
}

// View is the full wire representation of a cart with recomputed totals.
// All monetary figures are rendered with exactly two decimal places.
type View struct {
	ID            uuid.UUID    `json:"id"`
	Profile       Profile      `json:"profile"`
	Lines         []LineView   `json:"lines"`
	Totals        TotalsView   `json:"totals"`
	Customer      *CustomerRef `json:"customer,omitempty"`
	Agent         *AgentRef    `json:"agent,omitempty"`
	PaidAmount    string       `json:"paidAmount"`
	PaymentTypeID *uuid.UUID   `json:"paymentTypeId,omitempty"`
	TenderTotal   string       `json:"tenderTotal,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// NewView renders the cart and its recomputed totals for the wire.
func NewView(c Cart) View {
	totals := c.Totals()
	lines := make([]LineView, 0, len(c.Lines))
	for i, line := range c.Lines {
		lines = append(lines, LineView{
			Index:       i,
			Product:     line.Product,
			Qty:         line.Qty.String(),
			UnitPrice:   money.Format2(line.UnitPrice),
			DiscountPct: money.Format2(line.DiscountPct),
			DiscountAmt: money.Format2(line.DiscountAmt),
			TaxPct:      money.Format2(line.TaxPct),
			TaxAmt:      money.Format2(line.TaxAmt),
			TaxRemoved:  line.TaxRemoved,
			LineTotal:   money.Format2(line.Total()),
		})
	}
	view := View{
		ID:      c.ID,
		Profile: c.Profile,
		Lines:   lines,
		Totals: TotalsView{
			Subtotal:    money.Format2(totals.Subtotal),
			DiscountAmt: money.Format2(totals.DiscountAmt),
			TaxAmt:      money.Format2(totals.TaxAmt),
			TaxPct:      money.Format2(totals.TaxPct),
			Total:       money.Format2(totals.Total),
		},
		Customer:      c.Customer,
		Agent:         c.Agent,
		PaidAmount:    money.Format2(c.PaidAmount),
		PaymentTypeID: c.PaymentTypeID,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.Tender != nil {
		view.TenderTotal = money.Format2(c.Tender.Total)
	}
	return view
}
