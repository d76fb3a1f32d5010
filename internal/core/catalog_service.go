package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductInput holds the caller-editable product fields. CurrentStock is absent:
// stock enters and leaves only through the stock ledger.
type ProductInput struct {
	Code          string
	Name          string
	ProductType   string
	Description   string
	CategoryCode  string
	SupplierCode  string
	Unit          string
	MinimumStock  decimal.Decimal
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	TaxRate       *decimal.Decimal // nil means DefaultTaxRate
}

// CatalogService manages master data: categories, suppliers, and products.
// Catalog rows are never deleted, only deactivated, so historic movements and
// invoice lines keep their references.
type CatalogService interface {
	CreateCategory(ctx context.Context, code, name, description string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)

	CreateSupplier(ctx context.Context, input Supplier) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplierByCode(ctx context.Context, code string) (*Supplier, error)
	DeactivateSupplier(ctx context.Context, code string) error

	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	// UpdateProduct edits descriptive fields and prices; the sale-price floor
	// (sale ≥ purchase) is enforced on every write.
	UpdateProduct(ctx context.Context, code string, input ProductInput) (*Product, error)
	GetProductByCode(ctx context.Context, code string) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	// ListProductsBelowMinimum returns active products whose stock is under the
	// restock threshold.
	ListProductsBelowMinimum(ctx context.Context) ([]Product, error)
	DeactivateProduct(ctx context.Context, code string) error
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

// ── Categories ───────────────────────────────────────────────────────────────

func (s *catalogService) CreateCategory(ctx context.Context, code, name, description string) (*Category, error) {
	if code == "" || name == "" {
		return nil, validationf("category_missing_identity", "category requires a code and a name")
	}
	var c Category
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (code, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, code, name, description, is_active, created_at
	`, code, name, description).Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category %s: %w", code, err)
	}
	return &c, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, description, is_active, created_at
		FROM categories
		WHERE is_active = true
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// ── Suppliers ────────────────────────────────────────────────────────────────

const supplierColumns = `id, code, legal_name, trade_name, supplier_type, phone, email, address,
	municipality, department, country, handles_credit, credit_term_days,
	credit_limit, outstanding_balance, is_active, created_at`

func scanSupplier(row pgx.Row) (*Supplier, error) {
	var sp Supplier
	err := row.Scan(
		&sp.ID, &sp.Code, &sp.LegalName, &sp.TradeName, &sp.SupplierType, &sp.Phone, &sp.Email, &sp.Address,
		&sp.Municipality, &sp.Department, &sp.Country, &sp.HandlesCredit, &sp.CreditTermDays,
		&sp.CreditLimit, &sp.OutstandingBalance, &sp.IsActive, &sp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *catalogService) CreateSupplier(ctx context.Context, input Supplier) (*Supplier, error) {
	if input.Code == "" || input.LegalName == "" {
		return nil, validationf("supplier_missing_identity", "supplier requires a code and a legal name")
	}
	if input.TradeName == "" {
		input.TradeName = input.LegalName
	}
	if input.HandlesCredit && !input.CreditLimit.IsPositive() {
		return nil, validationf("supplier_non_positive_credit_limit",
			"supplier %s with credit terms needs a credit limit greater than zero", input.Code)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (code, legal_name, trade_name, supplier_type, phone, email, address,
		                       municipality, department, country, handles_credit, credit_term_days,
		                       credit_limit, outstanding_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0)
		RETURNING `+supplierColumns+`
	`, input.Code, input.LegalName, input.TradeName, input.SupplierType, input.Phone, input.Email,
		input.Address, input.Municipality, input.Department, input.Country,
		input.HandlesCredit, input.CreditTermDays, input.CreditLimit)

	sp, err := scanSupplier(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier %s: %w", input.Code, err)
	}
	return sp, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+supplierColumns+" FROM suppliers WHERE is_active = true ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		sp, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, *sp)
	}
	return suppliers, nil
}

func (s *catalogService) GetSupplierByCode(ctx context.Context, code string) (*Supplier, error) {
	sp, err := scanSupplier(s.pool.QueryRow(ctx,
		"SELECT "+supplierColumns+" FROM suppliers WHERE code = $1", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("supplier", code)
		}
		return nil, fmt.Errorf("failed to fetch supplier %s: %w", code, err)
	}
	return sp, nil
}

func (s *catalogService) DeactivateSupplier(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE suppliers SET is_active = false WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("failed to deactivate supplier %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("supplier", code)
	}
	return nil
}

// ── Products ─────────────────────────────────────────────────────────────────

// validateProductPrices enforces the margin floor shared by create and update.
func validateProductPrices(code string, purchase, sale decimal.Decimal) error {
	if purchase.IsNegative() || sale.IsNegative() {
		return validationf("product_negative_price", "product %s prices cannot be negative", code)
	}
	if sale.LessThan(purchase) {
		return validationf("product_sale_below_purchase",
			"product %s sale price %s is below its purchase price %s",
			code, sale.StringFixed(2), purchase.StringFixed(2))
	}
	return nil
}

const productColumns = `p.id, p.code, p.name, p.product_type, p.description,
	p.category_id, cat.name, p.supplier_id, sp.code, p.unit,
	p.current_stock, p.minimum_stock, p.purchase_price, p.sale_price, p.tax_rate,
	p.is_active, p.created_at`

const productSelect = `
	SELECT ` + productColumns + `
	FROM products p
	JOIN categories cat ON cat.id = p.category_id
	JOIN suppliers sp ON sp.id = p.supplier_id
`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.ProductType, &p.Description,
		&p.CategoryID, &p.CategoryName, &p.SupplierID, &p.SupplierCode, &p.Unit,
		&p.CurrentStock, &p.MinimumStock, &p.PurchasePrice, &p.SalePrice, &p.TaxRate,
		&p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	if input.Code == "" || input.Name == "" || input.Unit == "" {
		return nil, validationf("product_missing_identity", "product requires a code, a name, and a unit")
	}
	if err := validateProductPrices(input.Code, input.PurchasePrice, input.SalePrice); err != nil {
		return nil, err
	}
	taxRate := DefaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}

	var categoryID, supplierID int
	err := s.pool.QueryRow(ctx,
		"SELECT id FROM categories WHERE code = $1 AND is_active = true", input.CategoryCode,
	).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("category", input.CategoryCode)
		}
		return nil, fmt.Errorf("failed to resolve category %s: %w", input.CategoryCode, err)
	}
	err = s.pool.QueryRow(ctx,
		"SELECT id FROM suppliers WHERE code = $1 AND is_active = true", input.SupplierCode,
	).Scan(&supplierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("supplier", input.SupplierCode)
		}
		return nil, fmt.Errorf("failed to resolve supplier %s: %w", input.SupplierCode, err)
	}

	var id int
	err = s.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, product_type, description, category_id, supplier_id, unit,
		                      current_stock, minimum_stock, purchase_price, sale_price, tax_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10, $11)
		RETURNING id
	`, input.Code, input.Name, input.ProductType, input.Description, categoryID, supplierID,
		input.Unit, input.MinimumStock, input.PurchasePrice, input.SalePrice, taxRate).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create product %s: %w", input.Code, err)
	}

	return s.getProductByID(ctx, id)
}

func (s *catalogService) UpdateProduct(ctx context.Context, code string, input ProductInput) (*Product, error) {
	current, err := s.GetProductByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.PurchasePrice.IsZero() {
		input.PurchasePrice = current.PurchasePrice
	}
	if input.SalePrice.IsZero() {
		input.SalePrice = current.SalePrice
	}
	if err := validateProductPrices(code, input.PurchasePrice, input.SalePrice); err != nil {
		return nil, err
	}
	if input.Name == "" {
		input.Name = current.Name
	}
	if input.Unit == "" {
		input.Unit = current.Unit
	}
	taxRate := current.TaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, product_type = $2, description = $3, unit = $4,
		    minimum_stock = $5, purchase_price = $6, sale_price = $7, tax_rate = $8
		WHERE id = $9
	`, input.Name, input.ProductType, input.Description, input.Unit,
		input.MinimumStock, input.PurchasePrice, input.SalePrice, taxRate, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", code, err)
	}

	return s.getProductByID(ctx, current.ID)
}

func (s *catalogService) getProductByID(ctx context.Context, id int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, productSelect+" WHERE p.id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return p, nil
}

func (s *catalogService) GetProductByCode(ctx context.Context, code string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, productSelect+" WHERE p.code = $1", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("product", code)
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", code, err)
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	return s.listProducts(ctx, productSelect+" WHERE p.is_active = true ORDER BY p.code")
}

func (s *catalogService) ListProductsBelowMinimum(ctx context.Context) ([]Product, error) {
	return s.listProducts(ctx, productSelect+
		" WHERE p.is_active = true AND p.current_stock < p.minimum_stock ORDER BY p.code")
}

func (s *catalogService) listProducts(ctx context.Context, query string) ([]Product, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE products SET is_active = false WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("product", code)
	}
	return nil
}
