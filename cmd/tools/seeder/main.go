package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Seeds a development database with a small directory of products,
// customers, sales agents and payment types so a register can be
// exercised end to end.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProducts(ctx, pool)
	seedCustomers(ctx, pool)
	seedAgents(ctx, pool)
	seedPaymentTypes(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	products := []struct {
		Code   string
		Name   string
		Price  string
		TaxPct string
		Image  string
	}{
		{"BN-001", "Beans 1kg", "100.00", "15", "https://images.unsplash.com/photo-1498804103079-a6351b050096?w=800"},
		{"CF-010", "Arabica Coffee 500g", "180.00", "15", "https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=800"},
		{"TE-020", "Green Tea 250g", "65.00", "15", "https://images.unsplash.com/photo-1556679343-c7306c1976bc?w=800"},
		{"SG-030", "Cane Sugar 1kg", "22.50", "0", ""},
		{"ML-040", "Whole Milk 1L", "18.00", "0", ""},
		{"BR-050", "Sourdough Loaf", "45.00", "15", "https://images.unsplash.com/photo-1585478259715-4d3a5f4b68a7?w=800"},
		{"OL-060", "Olive Oil 750ml", "240.00", "15", ""},
		{"HN-070", "Raw Honey 500g", "120.00", "0", ""},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, code, name, price, tax_pct, image_url, is_active)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, true)
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				price = EXCLUDED.price,
				tax_pct = EXCLUDED.tax_pct,
				image_url = EXCLUDED.image_url,
				updated_at = now();
		`, p.Code, p.Name, p.Price, p.TaxPct, p.Image)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Code, err)
		}
	}
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool) {
	customers := []struct {
		Code  string
		Name  string
		Phone string
	}{
		{"CU-001", "ACME Wholesale", "021-555-0101"},
		{"CU-002", "Riverside Cafe", "021-555-0102"},
		{"CU-003", "Budi Santoso", "0812-3456-789"},
		{"CU-004", "Siti Aminah", "0813-9876-543"},
		{"CU-005", "Harbor Restaurant", "021-555-0105"},
	}

	fmt.Println("Seeding Customers...")
	for _, c := range customers {
		_, err := pool.Exec(ctx, `
			INSERT INTO customers (id, code, name, phone, is_active)
			VALUES (gen_random_uuid(), $1, $2, $3, true)
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				phone = EXCLUDED.phone,
				updated_at = now();
		`, c.Code, c.Name, c.Phone)
		if err != nil {
			log.Printf("Failed to seed customer %s: %v", c.Code, err)
		}
	}
}

func seedAgents(ctx context.Context, pool *pgxpool.Pool) {
	agents := []struct {
		Code string
		Name string
	}{
		{"AG-01", "Dewi Lestari"},
		{"AG-02", "Eko Kurniawan"},
		{"AG-03", "Fajar Nugraha"},
	}

	fmt.Println("Seeding Sales Agents...")
	for _, a := range agents {
		_, err := pool.Exec(ctx, `
			INSERT INTO sales_agents (id, code, name, is_active)
			VALUES (gen_random_uuid(), $1, $2, true)
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				updated_at = now();
		`, a.Code, a.Name)
		if err != nil {
			log.Printf("Failed to seed agent %s: %v", a.Code, err)
		}
	}
}

func seedPaymentTypes(ctx context.Context, pool *pgxpool.Pool) {
	types := []struct {
		Code     string
		Name     string
		InSales  bool
		InDebtor bool
		Order    int
	}{
		{"CASH", "Cash", true, false, 1},
		{"CARD", "Debit Card", true, true, 2},
		{"QRIS", "QRIS", true, false, 3},
		{"TRANSFER", "Bank Transfer", false, true, 4},
	}

	fmt.Println("Seeding Payment Types...")
	for _, t := range types {
		_, err := pool.Exec(ctx, `
			INSERT INTO payment_types (id, code, name, is_active, used_in_sales, used_in_debtor_payments, order_of_display)
			VALUES (gen_random_uuid(), $1, $2, true, $3, $4, $5)
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				used_in_sales = EXCLUDED.used_in_sales,
				used_in_debtor_payments = EXCLUDED.used_in_debtor_payments,
				order_of_display = EXCLUDED.order_of_display,
				updated_at = now();
		`, t.Code, t.Name, t.InSales, t.InDebtor, t.Order)
		if err != nil {
			log.Printf("Failed to seed payment type %s: %v", t.Code, err)
		}
	}
}
