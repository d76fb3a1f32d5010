package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB connects to the dedicated test database, wipes it, and seeds the
// master data the scenarios build on. Integration tests are skipped entirely
// when TEST_DATABASE_URL is not set, so `go test ./...` stays safe on machines
// without a database.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE invoice_lines, invoices, stock_movements, products, clients, suppliers, categories, users CASCADE;

		INSERT INTO categories (code, name, description) VALUES
		('CAT-FERT', 'Fertilizers', 'Granulated and foliar fertilizers'),
		('CAT-SEED', 'Seeds', 'Certified seed');

		INSERT INTO suppliers (code, legal_name, trade_name, supplier_type, phone, email,
		                       handles_credit, credit_term_days, credit_limit, outstanding_balance) VALUES
		('PROV-001', 'Agroquimicos del Norte S.A.', 'AgroNorte', 'Distributor', '+505-8400-0001', 'ventas@agronorte.ni', true, 30, 20000.00, 0),
		('PROV-002', 'Semillas La Esperanza',       'La Esperanza', 'Producer',  '+505-8400-0002', '', false, 0, 0, 0);

		INSERT INTO products (code, name, product_type, category_id, supplier_id, unit,
		                      current_stock, minimum_stock, purchase_price, sale_price, tax_rate) VALUES
		('P001', 'Triple 15 Fertilizer 50kg', 'Fertilizer',
		 (SELECT id FROM categories WHERE code = 'CAT-FERT'),
		 (SELECT id FROM suppliers  WHERE code = 'PROV-001'),
		 'sack', 0, 10, 10.00, 12.00, 15.00),
		('P002', 'Hybrid Maize Seed 20kg', 'Seed',
		 (SELECT id FROM categories WHERE code = 'CAT-SEED'),
		 (SELECT id FROM suppliers  WHERE code = 'PROV-002'),
		 'bag', 50, 5, 80.00, 95.00, 15.00);

		INSERT INTO clients (code, name, client_type, phone, email,
		                     allows_credit, credit_limit, outstanding_balance) VALUES
		('C001', 'Finca San Rafael', 'Producer',    '+505-8700-0001', '',                true,  500.00, 0),
		('C002', 'Pulperia El Buen Precio', 'Retail', '',             'compras@bp.ni',   false, 0,      0);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}
