package directory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salespoint/pos-backend/internal/money"
	"github.com/salespoint/pos-backend/internal/payment"
)

// Product is the lookup view handed to the register when a line is added.
// Price and tax are strings with two decimal places; the cart parses them
// back into exact decimals.
type Product struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	TaxPct   string    `json:"taxPct"`
	ImageURL string    `json:"imageUrl,omitempty"`
	IsActive bool      `json:"isActive"`
}

// Customer is a weak reference target; attaching one never changes pricing.
type Customer struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	IsActive bool      `json:"isActive"`
}

// SalesAgent attributes a sale to a member of staff.
type SalesAgent struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
}

// productRow mirrors the products table. transform is the single place
// snake_case storage becomes the camelCase wire shape.
type productRow struct {
	ID       uuid.UUID
	Code     string
	Name     string
	Price    decimal.Decimal
	TaxPct   decimal.Decimal
	ImageURL *string
	IsActive bool
}

func (r productRow) transform() Product {
	p := Product{
		ID:       r.ID,
		Code:     r.Code,
		Name:     r.Name,
		Price:    money.Format2(r.Price),
		TaxPct:   money.Format2(r.TaxPct),
		IsActive: r.IsActive,
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	return p
}

type customerRow struct {
	ID       uuid.UUID
	Code     string
	Name     string
	Phone    *string
	IsActive bool
}

func (r customerRow) transform() Customer {
	c := Customer{ID: r.ID, Code: r.Code, Name: r.Name, IsActive: r.IsActive}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	return c
}

type agentRow struct {
	ID       uuid.UUID
	Code     string
	Name     string
	IsActive bool
}

func (r agentRow) transform() SalesAgent {
	return SalesAgent{ID: r.ID, Code: r.Code, Name: r.Name, IsActive: r.IsActive}
}

// paymentTypeRow mirrors the payment_types table; the display order default
// is applied in SQL so sorting happens once.
type paymentTypeRow struct {
	ID                   uuid.UUID
	Name                 string
	Code                 string
	IsActive             bool
	UsedInSales          bool
	UsedInDebtorPayments bool
	OrderOfDisplay       int
}

func (r paymentTypeRow) transform() payment.Method {
	return payment.Method{
		ID:                   r.ID,
		Name:                 r.Name,
		Code:                 r.Code,
		IsActive:             r.IsActive,
		UsedInSales:          r.UsedInSales,
		UsedInDebtorPayments: r.UsedInDebtorPayments,
		OrderOfDisplay:       r.OrderOfDisplay,
	}
}
