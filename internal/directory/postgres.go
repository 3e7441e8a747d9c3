package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salespoint/pos-backend/internal/payment"
)

// PGStore serves directory lookups from Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const listProductsSQL = `
SELECT id, code, name, price, tax_pct, image_url, is_active, count(*) OVER() AS total
FROM products
WHERE is_active = true
  AND ($1 = '' OR code ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
ORDER BY name
LIMIT $2 OFFSET $3`

// ListProducts returns a page of active products matching the query.
func (s *PGStore) ListProducts(ctx context.Context, p ListParams) ([]Product, int, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("directory: pool not configured")
	}
	rows, err := s.Pool.Query(ctx, listProductsSQL, strings.TrimSpace(p.Query), p.PerPage, offset(p))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var total int
	out := make([]Product, 0, p.PerPage)
	for rows.Next() {
		var r productRow
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.Price, &r.TaxPct, &r.ImageURL, &r.IsActive, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, r.transform())
	}
	return out, total, rows.Err()
}

const getProductSQL = `
SELECT id, code, name, price, tax_pct, image_url, is_active
FROM products
WHERE id = $1`

// GetProduct fetches one product by id.
func (s *PGStore) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("directory: pool not configured")
	}
	var r productRow
	err := s.Pool.QueryRow(ctx, getProductSQL, id).
		Scan(&r.ID, &r.Code, &r.Name, &r.Price, &r.TaxPct, &r.ImageURL, &r.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return r.transform(), nil
}

const listCustomersSQL = `
SELECT id, code, name, phone, is_active, count(*) OVER() AS total
FROM customers
WHERE is_active = true
  AND ($1 = '' OR code ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
ORDER BY name
LIMIT $2 OFFSET $3`

// ListCustomers returns a page of active customers matching the query.
func (s *PGStore) ListCustomers(ctx context.Context, p ListParams) ([]Customer, int, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("directory: pool not configured")
	}
	rows, err := s.Pool.Query(ctx, listCustomersSQL, strings.TrimSpace(p.Query), p.PerPage, offset(p))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var total int
	out := make([]Customer, 0, p.PerPage)
	for rows.Next() {
		var r customerRow
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.Phone, &r.IsActive, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, r.transform())
	}
	return out, total, rows.Err()
}

const listAgentsSQL = `
SELECT id, code, name, is_active, count(*) OVER() AS total
FROM sales_agents
WHERE is_active = true
  AND ($1 = '' OR code ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
ORDER BY name
LIMIT $2 OFFSET $3`

// ListAgents returns a page of active sales agents matching the query.
func (s *PGStore) ListAgents(ctx context.Context, p ListParams) ([]SalesAgent, int, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("directory: pool not configured")
	}
	rows, err := s.Pool.Query(ctx, listAgentsSQL, strings.TrimSpace(p.Query), p.PerPage, offset(p))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var total int
	out := make([]SalesAgent, 0, p.PerPage)
	for rows.Next() {
		var r agentRow
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.IsActive, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, r.transform())
	}
	return out, total, rows.Err()
}

const listPaymentTypesSQL = `
SELECT id, name, code, is_active, used_in_sales, used_in_debtor_payments,
       COALESCE(order_of_display, 999) AS order_of_display
FROM payment_types
ORDER BY COALESCE(order_of_display, 999), name`

// ListPaymentTypes returns every payment type in display order. Eligibility
// filtering happens in the payment package so cached lists stay complete.
func (s *PGStore) ListPaymentTypes(ctx context.Context) ([]payment.Method, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("directory: pool not configured")
	}
	rows, err := s.Pool.Query(ctx, listPaymentTypesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payment.Method
	for rows.Next() {
		var r paymentTypeRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Code, &r.IsActive, &r.UsedInSales,
			&r.UsedInDebtorPayments, &r.OrderOfDisplay); err != nil {
			return nil, err
		}
		out = append(out, r.transform())
	}
	return out, rows.Err()
}

func offset(p ListParams) int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.PerPage
}
