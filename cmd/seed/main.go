// seed is a one-shot tool that loads demo master data and the default admin
// user into the configured database. Safe to re-run: every insert is an upsert.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"agrosupply/internal/config"
	"agrosupply/internal/db"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding admin user...")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
		log.Println("Warning: SEED_ADMIN_PASSWORD not set, using default password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, password_hash, full_name, role)
		VALUES ('admin', $1, 'Administrador', 'admin')
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash;
	`, string(hash))
	if err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	log.Println("Seeding categories...")
	_, err = tx.Exec(ctx, `
		INSERT INTO categories (code, name, description) VALUES
		('CAT-FERT', 'Fertilizantes', 'Fertilizantes y abonos'),
		('CAT-SEM',  'Semillas',      'Semillas certificadas'),
		('CAT-AGRO', 'Agroquimicos',  'Herbicidas, fungicidas e insecticidas'),
		('CAT-HERR', 'Herramientas',  'Herramientas y equipo de campo')
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description;
	`)
	if err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}

	log.Println("Seeding suppliers...")
	_, err = tx.Exec(ctx, `
		INSERT INTO suppliers (code, legal_name, trade_name, supplier_type, phone, email,
		                       handles_credit, credit_term_days, credit_limit) VALUES
		('PROV-001', 'Agroquimicos del Norte S.A.', 'AgroNorte',    'Distributor', '+505-8400-0001', 'ventas@agronorte.ni', true,  30, 50000.00),
		('PROV-002', 'Semillas La Esperanza',       'La Esperanza', 'Producer',    '+505-8400-0002', '',                    false, 0,  0),
		('PROV-003', 'Ferreteria El Machete',       'El Machete',   'Retailer',    '+505-8400-0003', 'ventas@machete.ni',   false, 0,  0)
		ON CONFLICT (code) DO UPDATE SET legal_name = EXCLUDED.legal_name, trade_name = EXCLUDED.trade_name;
	`)
	if err != nil {
		log.Fatalf("Failed to seed suppliers: %v", err)
	}

	log.Println("Seeding products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (code, name, product_type, category_id, supplier_id, unit,
		                      minimum_stock, purchase_price, sale_price)
		SELECT v.code, v.name, v.product_type, c.id, s.id, v.unit,
		       v.minimum_stock, v.purchase_price, v.sale_price
		FROM (VALUES
		    ('P001', 'Fertilizante Triple 15 50kg', 'Fertilizante', 'CAT-FERT', 'PROV-001', 'saco',   20, 28.00, 35.00),
		    ('P002', 'Urea 46% 50kg',               'Fertilizante', 'CAT-FERT', 'PROV-001', 'saco',   20, 25.00, 31.00),
		    ('P003', 'Semilla Maiz Hibrido 20kg',   'Semilla',      'CAT-SEM',  'PROV-002', 'bolsa',  10, 80.00, 95.00),
		    ('P004', 'Semilla Frijol Rojo 25kg',    'Semilla',      'CAT-SEM',  'PROV-002', 'bolsa',  10, 60.00, 72.00),
		    ('P005', 'Glifosato 1L',                'Herbicida',    'CAT-AGRO', 'PROV-001', 'litro',  30, 6.50,  9.00),
		    ('P006', 'Machete 24 pulgadas',         'Herramienta',  'CAT-HERR', 'PROV-003', 'unidad', 15, 4.00,  7.50)
		) AS v(code, name, product_type, category_code, supplier_code, unit,
		       minimum_stock, purchase_price, sale_price)
		JOIN categories c ON c.code = v.category_code
		JOIN suppliers s ON s.code = v.supplier_code
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name,
		    purchase_price = EXCLUDED.purchase_price, sale_price = EXCLUDED.sale_price;
	`)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seeding clients...")
	_, err = tx.Exec(ctx, `
		INSERT INTO clients (code, name, client_type, phone, email, municipality, department,
		                     allows_credit, credit_limit) VALUES
		('C001', 'Finca San Rafael',          'Productor', '+505-8700-0001', '',               'Sebaco',    'Matagalpa', true,  15000.00),
		('C002', 'Cooperativa El Progreso',   'Cooperativa', '+505-8700-0002', 'compras@progreso.ni', 'Jinotega', 'Jinotega', true, 40000.00),
		('C003', 'Pulperia El Buen Precio',   'Minorista', '',               'compras@bp.ni',  'Matagalpa', 'Matagalpa', false, 0)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, credit_limit = EXCLUDED.credit_limit;
	`)
	if err != nil {
		log.Fatalf("Failed to seed clients: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Seed data loaded")
}
