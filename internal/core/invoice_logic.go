package core

import "github.com/shopspring/decimal"

// Pure invoice arithmetic and validation. Nothing in this file touches the
// database; InvoiceService calls these on a loaded draft before persisting, and
// the unit tests exercise them directly.

// AddLine appends a line priced against the given product and recomputes totals.
// A zero unitPrice means "sell at the product's list price". The line is validated
// on its own before aggregation, so a bad line never dirties the totals.
func (inv *Invoice) AddLine(product *Product, quantity, unitPrice decimal.Decimal) error {
	if product == nil {
		return validationf("line_no_product", "invoice line requires a product")
	}
	if unitPrice.IsZero() {
		unitPrice = product.SalePrice
	}

	line := InvoiceLine{
		LineNumber:    len(inv.Lines) + 1,
		ProductID:     product.ID,
		ProductCode:   product.Code,
		ProductName:   product.Name,
		PurchasePrice: product.PurchasePrice,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
	}
	if err := line.validate(); err != nil {
		return err
	}
	line.Amount = round2(quantity.Mul(unitPrice))

	inv.Lines = append(inv.Lines, line)
	inv.RecomputeTotals()
	return nil
}

// validate checks the per-line business rules: positive quantity, positive unit
// price, and the anti-dumping floor (never sell below the purchase price).
func (l *InvoiceLine) validate() error {
	if l.Quantity.LessThanOrEqual(decimal.Zero) {
		return validationf("line_non_positive_quantity",
			"line %d: quantity must be greater than zero, got %s", l.LineNumber, l.Quantity)
	}
	if l.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return validationf("line_non_positive_price",
			"line %d: unit price must be greater than zero, got %s", l.LineNumber, l.UnitPrice)
	}
	if l.UnitPrice.LessThan(l.PurchasePrice) {
		return validationf("line_below_purchase_price",
			"line %d: cannot sell product %s below its purchase price (%s < %s)",
			l.LineNumber, l.ProductCode, l.UnitPrice.StringFixed(2), l.PurchasePrice.StringFixed(2))
	}
	return nil
}

// RecomputeTotals rebuilds subtotal, tax, and total from the lines. A line with an
// unset amount contributes zero, and a zero tax rate yields zero tax. Rounding is
// half-up to 2 decimals at each step.
func (inv *Invoice) RecomputeTotals() {
	subtotal := decimal.Zero
	for _, l := range inv.Lines {
		subtotal = subtotal.Add(l.Amount)
	}
	inv.Subtotal = round2(subtotal)

	rate := inv.TaxRate.Div(decimal.New(100, 0))
	inv.Tax = round2(inv.Subtotal.Mul(rate))
	inv.Total = round2(inv.Subtotal.Add(inv.Tax))
}

// Validate runs the full pre-commit check: line presence, client presence,
// per-line rules, total recomputation, and the credit gate for CREDIT sales.
// It mutates the invoice (totals) and must be called before every persist.
func (inv *Invoice) Validate(client *Client) error {
	if len(inv.Lines) == 0 {
		return validationf("invoice_no_lines", "invoice must have at least one line")
	}
	if client == nil {
		return validationf("invoice_no_client", "invoice requires a client")
	}
	for i := range inv.Lines {
		if err := inv.Lines[i].validate(); err != nil {
			return err
		}
		inv.Lines[i].Amount = round2(inv.Lines[i].Quantity.Mul(inv.Lines[i].UnitPrice))
	}

	inv.RecomputeTotals()

	if inv.Total.LessThanOrEqual(decimal.Zero) {
		return validationf("invoice_non_positive_total",
			"invoice total must be greater than zero, got %s", inv.Total.StringFixed(2))
	}

	if inv.IsCreditSale() {
		if !client.AllowsCredit {
			return validationf("invoice_client_no_credit",
				"client %s does not have credit enabled", client.Code)
		}
		newBalance := client.OutstandingBalance.Add(inv.Total)
		if newBalance.GreaterThan(client.CreditLimit) {
			return &CreditLimitExceededError{
				ClientCode: client.Code,
				Limit:      client.CreditLimit,
				Balance:    client.OutstandingBalance,
				Total:      inv.Total,
			}
		}
	}
	return nil
}
