package core_test

import (
	"context"
	"errors"
	"testing"

	"agrosupply/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func productStock(t *testing.T, pool *pgxpool.Pool, code string) decimal.Decimal {
	t.Helper()
	var stock decimal.Decimal
	err := pool.QueryRow(context.Background(),
		"SELECT current_stock FROM products WHERE code = $1", code).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock for %s: %v", code, err)
	}
	return stock
}

func TestStockService_ReceiptThenOverdraw(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewStockService(pool)
	ctx := context.Background()

	// IN 100 onto an empty product.
	m, err := svc.ApplyMovement(ctx, core.MovementInput{
		ProductCode:  "P001",
		Type:         core.MovementIn,
		Quantity:     dec("100"),
		SupplierCode: "PROV-001",
		Observations: "initial delivery",
	})
	if err != nil {
		t.Fatalf("IN movement failed: %v", err)
	}
	if !m.StockAfter.Equal(dec("100.00")) {
		t.Errorf("expected stock_after 100.00, got %s", m.StockAfter)
	}
	if !productStock(t, pool, "P001").Equal(dec("100.00")) {
		t.Errorf("expected product stock 100.00")
	}

	// OUT 150 must fail and leave stock untouched.
	_, err = svc.ApplyMovement(ctx, core.MovementInput{
		ProductCode: "P001",
		Type:        core.MovementOut,
		Quantity:    dec("150"),
	})
	var ierr *core.InsufficientStockError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if !ierr.Available.Equal(dec("100.00")) || !ierr.Requested.Equal(dec("150")) {
		t.Errorf("unexpected error detail: %+v", ierr)
	}
	if !productStock(t, pool, "P001").Equal(dec("100.00")) {
		t.Errorf("stock must be unchanged after failed OUT")
	}

	// OUT 40 succeeds.
	m, err = svc.ApplyMovement(ctx, core.MovementInput{
		ProductCode: "P001",
		Type:        core.MovementOut,
		Quantity:    dec("40"),
	})
	if err != nil {
		t.Fatalf("OUT movement failed: %v", err)
	}
	if !m.StockAfter.Equal(dec("60.00")) {
		t.Errorf("expected stock_after 60.00, got %s", m.StockAfter)
	}

	// The failed movement left no history row: 2 movements, newest first.
	movements, err := svc.ListMovements(ctx, "P001")
	if err != nil {
		t.Fatalf("ListMovements failed: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	if movements[0].Type != core.MovementOut || movements[1].Type != core.MovementIn {
		t.Errorf("unexpected movement order: %s, %s", movements[0].Type, movements[1].Type)
	}
	if movements[1].SupplierCode == nil || *movements[1].SupplierCode != "PROV-001" {
		t.Errorf("expected supplier PROV-001 on the receipt")
	}
}

func TestStockService_ApplyMovement_Validation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewStockService(pool)
	ctx := context.Background()

	var verr *core.ValidationError
	_, err := svc.ApplyMovement(ctx, core.MovementInput{Type: core.MovementIn, Quantity: dec("1")})
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for missing product, got %v", err)
	}

	_, err = svc.ApplyMovement(ctx, core.MovementInput{
		ProductCode: "P001", Type: core.MovementIn, Quantity: dec("0"),
	})
	if !errors.As(err, &verr) || verr.Key != "movement_non_positive_quantity" {
		t.Errorf("expected movement_non_positive_quantity, got %v", err)
	}

	var nferr *core.NotFoundError
	_, err = svc.ApplyMovement(ctx, core.MovementInput{
		ProductCode: "NOPE", Type: core.MovementIn, Quantity: dec("1"),
	})
	if !errors.As(err, &nferr) {
		t.Errorf("expected NotFoundError for unknown product, got %v", err)
	}

	var uerr *core.UnsupportedOperationError
	_, err = svc.ApplyMovement(ctx, core.MovementInput{
		ProductCode: "P001", Type: core.MovementType("TRANSFER"), Quantity: dec("1"),
	})
	if !errors.As(err, &uerr) {
		t.Errorf("expected UnsupportedOperationError, got %v", err)
	}
	if !productStock(t, pool, "P001").IsZero() {
		t.Errorf("no failed movement may change stock")
	}
}

func TestStockService_FractionalQuantitiesRound(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewStockService(pool)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.ApplyMovement(ctx, core.MovementInput{
			ProductCode: "P001", Type: core.MovementIn, Quantity: dec("0.335"),
		}); err != nil {
			t.Fatalf("IN movement %d failed: %v", i, err)
		}
	}
	// Each step rounds: 0.34, 0.68, 1.02 (not round(1.005) applied once at the end).
	if got := productStock(t, pool, "P001"); !got.Equal(dec("1.02")) {
		t.Errorf("expected stock 1.02, got %s", got)
	}
}
