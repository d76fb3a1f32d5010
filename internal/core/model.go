package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the IVA percentage applied when an invoice does not specify
// one (15.00, the standard rate the agropecuaria operates under).
var DefaultTaxRate = decimal.New(15, 0)

// round2 applies the repository-wide rounding policy: 2 fractional digits, half-up.
// It is applied at every aggregation step, not just the final result, so repeated
// recomputation of the same invoice always lands on the same figures.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Category groups products in the catalog (fertilizers, seeds, veterinary, tools…).
type Category struct {
	ID          int       `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Supplier is a vendor of agricultural supplies. Credit terms mirror the client
// side: a supplier may extend credit to the business, tracked per supplier.
type Supplier struct {
	ID                 int             `json:"id"`
	Code               string          `json:"code"`
	LegalName          string          `json:"legal_name"`
	TradeName          string          `json:"trade_name"`
	SupplierType       string          `json:"supplier_type"`
	Phone              string          `json:"phone"`
	Email              string          `json:"email"`
	Address            string          `json:"address"`
	Municipality       string          `json:"municipality"`
	Department         string          `json:"department"`
	Country            string          `json:"country"`
	HandlesCredit      bool            `json:"handles_credit"`
	CreditTermDays     int             `json:"credit_term_days"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Product is a stocked catalog item. CurrentStock is mutated only by the stock
// ledger (ApplyMovement); products are deactivated, never deleted.
type Product struct {
	ID            int             `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	ProductType   string          `json:"product_type"`
	Description   string          `json:"description"`
	CategoryID    int             `json:"category_id"`
	CategoryName  string          `json:"category_name"` // joined from categories
	SupplierID    int             `json:"supplier_id"`
	SupplierCode  string          `json:"supplier_code"` // joined from suppliers
	Unit          string          `json:"unit"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BelowMinimum reports whether the product needs restocking.
func (p *Product) BelowMinimum() bool {
	return p.CurrentStock.LessThan(p.MinimumStock)
}

// Client is a buyer (producer, farm, distributor). Credit invariants:
// AllowsCredit=false forces CreditLimit and OutstandingBalance to zero;
// AllowsCredit=true requires CreditLimit > 0 and 0 ≤ OutstandingBalance ≤ CreditLimit.
type Client struct {
	ID                 int             `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	ClientType         string          `json:"client_type"`
	Phone              string          `json:"phone"`
	Email              string          `json:"email"`
	Address            string          `json:"address"`
	Municipality       string          `json:"municipality"`
	Department         string          `json:"department"`
	AllowsCredit       bool            `json:"allows_credit"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}

// BlockedByDebt reports whether the client has exhausted its approved credit.
func (c *Client) BlockedByDebt() bool {
	return c.AllowsCredit && c.OutstandingBalance.GreaterThanOrEqual(c.CreditLimit)
}

// User is an application operator account for the web adapter.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
