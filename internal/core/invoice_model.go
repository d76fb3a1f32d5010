package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleType distinguishes cash sales from deferred-payment credit sales.
type SaleType string

const (
	SaleCash   SaleType = "CASH"
	SaleCredit SaleType = "CREDIT"
)

// ParseSaleType validates a sale type string coming from an adapter.
func ParseSaleType(s string) (SaleType, error) {
	switch SaleType(s) {
	case SaleCash, SaleCredit:
		return SaleType(s), nil
	default:
		return "", validationf("invoice_bad_sale_type", "sale type must be CASH or CREDIT, got %q", s)
	}
}

// Invoice is a sales document. Totals are derived state: they are recomputed from
// the lines on every commit and never accepted from the caller. Payment state is
// two-valued — unpaid or paid — and the only transition is UNPAID → PAID via
// RegisterPayment.
type Invoice struct {
	ID         int             `json:"id"`
	Number     string          `json:"number"`
	Date       string          `json:"date"` // YYYY-MM-DD
	ClientID   int             `json:"client_id"`
	ClientCode string          `json:"client_code"` // joined from clients
	ClientName string          `json:"client_name"` // joined from clients
	SaleType   SaleType        `json:"sale_type"`
	Paid       bool            `json:"paid"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Lines      []InvoiceLine   `json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

// IsCreditSale reports whether payment for this invoice is deferred.
func (inv *Invoice) IsCreditSale() bool { return inv.SaleType == SaleCredit }

// InvoiceLine is one sold item. Lines exist only inside their invoice: replacing
// the line set on update deletes the previous rows (owner-collection semantics,
// there is no standalone line lifecycle).
type InvoiceLine struct {
	ID            int             `json:"id"`
	InvoiceID     int             `json:"invoice_id"`
	LineNumber    int             `json:"line_number"`
	ProductID     int             `json:"product_id"`
	ProductCode   string          `json:"product_code"`   // joined from products
	ProductName   string          `json:"product_name"`   // joined from products
	PurchasePrice decimal.Decimal `json:"purchase_price"` // joined; floor for UnitPrice
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Amount        decimal.Decimal `json:"amount"` // round2(Quantity × UnitPrice)
}

// InvoiceLineInput is an adapter-facing line request. UnitPrice zero means
// "use the product's sale price".
type InvoiceLineInput struct {
	ProductCode string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// InvoiceInput is the adapter-facing request for creating or updating an invoice.
// A nil TaxRate falls back to DefaultTaxRate.
type InvoiceInput struct {
	Number     string
	Date       string // YYYY-MM-DD; empty means today
	ClientCode string
	SaleType   SaleType
	TaxRate    *decimal.Decimal
	Lines      []InvoiceLineInput
}
