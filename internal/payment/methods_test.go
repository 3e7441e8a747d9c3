package payment

import (
	"testing"

	"github.com/google/uuid"
)

func method(name, code string, active, sales bool, order int) Method {
	return Method{
		ID:             uuid.New(),
		Name:           name,
		Code:           code,
		IsActive:       active,
		UsedInSales:    sales,
		OrderOfDisplay: order,
	}
}

func TestEligibleFiltersAndSorts(t *testing.T) {
	all := []Method{
		method("Bank Transfer", "TRF", true, true, 5),
		method("Voucher", "VCH", true, false, 1),
		method("Store Card", "CARD", false, true, 1),
		method("Cheque", "CHQ", true, true, 0),
		method("EFTPOS", "EFT", true, true, 2),
	}
	got := Eligible(all)
	if len(got) != 3 {
		t.Fatalf("eligible = %d, want 3", len(got))
	}
	if got[0].Code != "EFT" || got[1].Code != "TRF" || got[2].Code != "CHQ" {
		t.Fatalf("order = %s,%s,%s; want EFT,TRF,CHQ", got[0].Code, got[1].Code, got[2].Code)
	}
	if got[2].OrderOfDisplay != DefaultDisplayOrder {
		t.Fatalf("unset order = %d, want %d", got[2].OrderOfDisplay, DefaultDisplayOrder)
	}
}

func TestSelectDefaultPrefersCash(t *testing.T) {
	all := []Method{
		method("EFTPOS", "EFT", true, true, 1),
		method("Petty Cash", "PC", true, true, 9),
	}
	got, ok := SelectDefault(all)
	if !ok {
		t.Fatal("expected a default method")
	}
	if got.Code != "PC" {
		t.Fatalf("default = %s, want PC (name contains cash)", got.Code)
	}
}

func TestSelectDefaultMatchesCode(t *testing.T) {
	all := []Method{
		method("Terminal", "EFT", true, true, 1),
		method("Register", "CASH01", true, true, 9),
	}
	got, _ := SelectDefault(all)
	if got.Code != "CASH01" {
		t.Fatalf("default = %s, want CASH01", got.Code)
	}
}

func TestSelectDefaultFallsBackToFirst(t *testing.T) {
	all := []Method{
		method("Bank Transfer", "TRF", true, true, 3),
		method("EFTPOS", "EFT", true, true, 1),
	}
	got, _ := SelectDefault(all)
	if got.Code != "EFT" {
		t.Fatalf("default = %s, want EFT (lowest display order)", got.Code)
	}
}

func TestSelectDefaultEmpty(t *testing.T) {
	if _, ok := SelectDefault(nil); ok {
		t.Fatal("expected no default for empty list")
	}
	inactive := []Method{method("Cash", "CASH", false, true, 1)}
	if _, ok := SelectDefault(inactive); ok {
		t.Fatal("expected no default when nothing is eligible")
	}
}
