package cart

import (
	"github.com/shopspring/decimal"

	"github.com/salespoint/pos-backend/internal/money"
)

// Totals aggregates the derived pricing components of a cart. Totals are
// always recomputed from the line list; nothing may set them directly.
type Totals struct {
	Subtotal    decimal.Decimal
	DiscountAmt decimal.Decimal
	TaxAmt      decimal.Decimal
	TaxPct      decimal.Decimal
	Total       decimal.Decimal
}

// Compute derives totals from the provided lines. An empty slice yields all
// zeros. The aggregate tax percentage is the quantity-weighted average of the
// line tax rates, expressed as taxAmt/subtotal with a zero-subtotal guard.
func Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Gross())
		discount = discount.Add(line.DiscountAmt)
		tax = tax.Add(line.TaxAmt)
	}
	if discount.Sign() < 0 {
		discount = decimal.Zero
	}
	taxPct := decimal.Zero
	if subtotal.Sign() > 0 {
		taxPct = tax.Div(subtotal).Mul(money.Hundred)
	}
	return Totals{
		Subtotal:    subtotal,
		DiscountAmt: discount,
		TaxAmt:      tax,
		TaxPct:      taxPct,
		Total:       subtotal.Sub(discount).Add(tax),
	}
}

// Totals recomputes the aggregate figures for the cart.
func (c *Cart) Totals() Totals {
	return Compute(c.Lines)
}
