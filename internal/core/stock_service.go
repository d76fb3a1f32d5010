package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StockService is the stock ledger: it applies quantity deltas to a product's
// current stock and records the movement that caused them. ApplyMovement is the
// only code path that changes products.current_stock.
type StockService interface {
	// ApplyMovement validates the input, locks the product row, applies the
	// delta, and inserts the movement record — all in one transaction.
	ApplyMovement(ctx context.Context, input MovementInput) (*Movement, error)

	// ListMovements returns movement history, newest first. productCode empty
	// means all products.
	ListMovements(ctx context.Context, productCode string) ([]Movement, error)
}

type stockService struct {
	pool *pgxpool.Pool
}

func NewStockService(pool *pgxpool.Pool) StockService {
	return &stockService{pool: pool}
}

func (s *stockService) ApplyMovement(ctx context.Context, input MovementInput) (*Movement, error) {
	if input.ProductCode == "" {
		return nil, validationf("movement_no_product", "movement requires a product")
	}
	if !input.Quantity.IsPositive() {
		return nil, validationf("movement_non_positive_quantity",
			"movement quantity must be greater than zero, got %s", input.Quantity)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the product row so concurrent movements serialize on it.
	var p Product
	err = tx.QueryRow(ctx, `
		SELECT id, code, name, current_stock
		FROM products
		WHERE code = $1 AND is_active = true
		FOR UPDATE
	`, input.ProductCode).Scan(&p.ID, &p.Code, &p.Name, &p.CurrentStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("product", input.ProductCode)
		}
		return nil, fmt.Errorf("failed to lock product %s: %w", input.ProductCode, err)
	}

	var newStock = p.CurrentStock
	switch input.Type {
	case MovementIn:
		newStock = round2(p.CurrentStock.Add(input.Quantity))
	case MovementOut:
		if p.CurrentStock.LessThan(input.Quantity) {
			return nil, &InsufficientStockError{
				ProductCode: p.Code,
				Available:   p.CurrentStock,
				Requested:   input.Quantity,
			}
		}
		newStock = round2(p.CurrentStock.Sub(input.Quantity))
	default:
		return nil, &UnsupportedOperationError{Op: string(input.Type)}
	}

	// Optional supplier reference (meaningful for receipts).
	var supplierID *int
	if input.SupplierCode != "" {
		var id int
		err = tx.QueryRow(ctx,
			"SELECT id FROM suppliers WHERE code = $1 AND is_active = true",
			input.SupplierCode,
		).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, notFound("supplier", input.SupplierCode)
			}
			return nil, fmt.Errorf("failed to resolve supplier %s: %w", input.SupplierCode, err)
		}
		supplierID = &id
	}

	_, err = tx.Exec(ctx,
		"UPDATE products SET current_stock = $1 WHERE id = $2",
		newStock, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock for product %s: %w", p.Code, err)
	}

	date := input.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	var m Movement
	err = tx.QueryRow(ctx, `
		INSERT INTO stock_movements (product_id, supplier_id, movement_type, movement_date, quantity, stock_after, observations)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, movement_date::text, created_at
	`, p.ID, supplierID, input.Type, date, input.Quantity, newStock, input.Observations).Scan(
		&m.ID, &m.Date, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock movement: %w", err)
	}

	m.ProductID = p.ID
	m.ProductCode = p.Code
	m.ProductName = p.Name
	m.SupplierID = supplierID
	if input.SupplierCode != "" {
		m.SupplierCode = &input.SupplierCode
	}
	m.Type = input.Type
	m.Quantity = input.Quantity
	m.StockAfter = newStock
	m.Observations = input.Observations
	return &m, nil
}

func (s *stockService) ListMovements(ctx context.Context, productCode string) ([]Movement, error) {
	query := `
		SELECT m.id, m.product_id, p.code, p.name, m.supplier_id, sp.code,
		       m.movement_type, m.movement_date::text, m.quantity, m.stock_after,
		       m.observations, m.created_at
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id
		LEFT JOIN suppliers sp ON sp.id = m.supplier_id
	`
	args := []any{}
	if productCode != "" {
		query += " WHERE p.code = $1"
		args = append(args, productCode)
	}
	query += " ORDER BY m.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.ProductCode, &m.ProductName, &m.SupplierID, &m.SupplierCode,
			&m.Type, &m.Date, &m.Quantity, &m.StockAfter,
			&m.Observations, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, nil
}
