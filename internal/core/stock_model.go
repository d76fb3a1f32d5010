package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement. Only IN (receipt) and OUT (issue)
// are supported; anything else fails with UnsupportedOperationError.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// ParseMovementType validates a movement type string coming from an adapter.
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(s) {
	case MovementIn, MovementOut:
		return MovementType(s), nil
	default:
		return "", &UnsupportedOperationError{Op: s}
	}
}

// Movement is a single stock-affecting event. Rows are immutable once created:
// corrections are made with a compensating movement, never by editing history.
type Movement struct {
	ID           int             `json:"id"`
	ProductID    int             `json:"product_id"`
	ProductCode  string          `json:"product_code"` // joined from products
	ProductName  string          `json:"product_name"` // joined from products
	SupplierID   *int            `json:"supplier_id,omitempty"`
	SupplierCode *string         `json:"supplier_code,omitempty"` // joined from suppliers
	Type         MovementType    `json:"type"`
	Date         string          `json:"date"` // YYYY-MM-DD
	Quantity     decimal.Decimal `json:"quantity"`
	StockAfter   decimal.Decimal `json:"stock_after"` // product stock right after this movement
	Observations string          `json:"observations"`
	CreatedAt    time.Time       `json:"created_at"`
}

// MovementInput is the adapter-facing request for ApplyMovement.
// SupplierCode is optional and only meaningful for IN movements.
type MovementInput struct {
	ProductCode  string
	Type         MovementType
	Date         string // YYYY-MM-DD; empty means today
	Quantity     decimal.Decimal
	SupplierCode string
	Observations string
}
