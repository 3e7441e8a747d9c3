package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotal(t *testing.T) {
	total := LineTotal(dec("100"), dec("2"), dec("20"), dec("36"))
	if !total.Equal(dec("216")) {
		t.Fatalf("expected 216, got %s", total)
	}
}

func TestPercentToAmountClampsToGross(t *testing.T) {
	amount := PercentToAmount(dec("10"), dec("1"), dec("150"))
	if !amount.Equal(dec("10")) {
		t.Fatalf("expected clamp to 10, got %s", amount)
	}
}

func TestPercentToAmountNegativePercent(t *testing.T) {
	amount := PercentToAmount(dec("10"), dec("2"), dec("-5"))
	if !amount.Equal(decimal.Zero) {
		t.Fatalf("expected 0 for negative percent, got %s", amount)
	}
}

func TestAmountToPercentZeroGross(t *testing.T) {
	pct := AmountToPercent(dec("0"), dec("3"), dec("5"))
	if !pct.Equal(decimal.Zero) {
		t.Fatalf("expected 0 for zero gross, got %s", pct)
	}
}

func TestAmountToPercentRoundTrip(t *testing.T) {
	unitPrice, qty := dec("100"), dec("2")
	amount := PercentToAmount(unitPrice, qty, dec("10"))
	pct := AmountToPercent(unitPrice, qty, amount)
	if !pct.Equal(dec("10")) {
		t.Fatalf("expected 10 percent back, got %s", pct)
	}
}

func TestFormat2(t *testing.T) {
	if got := Format2(dec("150")); got != "150.00" {
		t.Fatalf("expected 150.00, got %s", got)
	}
	if got := Format2(dec("50.005")); got != "50.01" {
		t.Fatalf("expected 50.01, got %s", got)
	}
}

func TestEqualish(t *testing.T) {
	if !Equalish(dec("19.99"), dec("20.00")) {
		t.Fatal("expected amounts within a cent to match")
	}
	if Equalish(dec("19.90"), dec("20.00")) {
		t.Fatal("expected amounts a dime apart to differ")
	}
}
