package money

import "github.com/shopspring/decimal"

var (
	// Hundred is the percentage divisor shared by discount and tax math.
	Hundred = decimal.NewFromInt(100)

	// MinQty is the smallest quantity a cart line may carry.
	MinQty = decimal.New(1, -2)

	// Tolerance is the largest difference two amounts may have and still be
	// treated as equal after rounding.
	Tolerance = decimal.New(1, -2)
)

// Round2 rounds an amount to two decimal places for presentation.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Format2 renders an amount with exactly two decimal places.
func Format2(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// Gross returns unitPrice multiplied by quantity.
func Gross(unitPrice, qty decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(qty)
}

// LineTotal computes unitPrice*qty - discount + tax.
func LineTotal(unitPrice, qty, discount, tax decimal.Decimal) decimal.Decimal {
	return Gross(unitPrice, qty).Sub(discount).Add(tax)
}

// PercentOf returns pct percent of base.
func PercentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(Hundred)
}

// PercentToAmount converts a percentage discount into an absolute amount,
// clamped to the [0, unitPrice*qty] range.
func PercentToAmount(unitPrice, qty, pct decimal.Decimal) decimal.Decimal {
	return ClampDiscount(Gross(unitPrice, qty), PercentOf(Gross(unitPrice, qty), pct))
}

// AmountToPercent converts an absolute discount into a percentage of the
// line gross. A zero gross yields zero.
func AmountToPercent(unitPrice, qty, amount decimal.Decimal) decimal.Decimal {
	gross := Gross(unitPrice, qty)
	if gross.Sign() <= 0 {
		return decimal.Zero
	}
	return ClampDiscount(gross, amount).Mul(Hundred).Div(gross)
}

// ClampDiscount bounds a discount amount to the [0, gross] range.
func ClampDiscount(gross, amount decimal.Decimal) decimal.Decimal {
	if amount.Sign() < 0 {
		return decimal.Zero
	}
	if amount.GreaterThan(gross) {
		return gross
	}
	return amount
}

// Equalish reports whether two amounts agree within rounding tolerance.
func Equalish(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
