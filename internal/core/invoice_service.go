package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InvoiceService manages the invoice lifecycle and keeps the client ledger in
// step with it. The lifecycle hooks of the persistence layer are deliberately
// explicit here: every commit runs Validate before writing and books the client
// balance exactly once after writing, inside the same transaction. The client
// row is locked for the whole operation, so the credit-limit check and the
// balance update cannot interleave with a concurrent commit for the same client.
type InvoiceService interface {
	// CreateInvoice validates and persists a new invoice. For an unpaid CREDIT
	// sale the client's outstanding balance increases by the invoice total.
	CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error)

	// UpdateInvoice replaces an unpaid invoice's content (client, sale type, tax
	// rate, lines) and rebooks the client balance: the previously booked total is
	// reversed before the new one is applied, so a commit never double-counts.
	// Paid invoices are immutable.
	UpdateInvoice(ctx context.Context, id int, input InvoiceInput) (*Invoice, error)

	// RegisterPayment marks a credit invoice paid and reduces the client's
	// outstanding balance by the invoice total, floored at zero. UNPAID → PAID
	// is the only transition and it is irreversible.
	RegisterPayment(ctx context.Context, id int) (*Invoice, error)

	GetInvoice(ctx context.Context, id int) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	// ListInvoices filters by payment state and client; nil/empty means no filter.
	ListInvoices(ctx context.Context, paid *bool, clientCode string) ([]Invoice, error)
}

type invoiceService struct {
	pool *pgxpool.Pool
}

func NewInvoiceService(pool *pgxpool.Pool) InvoiceService {
	return &invoiceService{pool: pool}
}

// lockClient loads a client by code with its row locked for the transaction.
func lockClient(ctx context.Context, tx pgx.Tx, code string) (*Client, error) {
	var c Client
	err := tx.QueryRow(ctx, `
		SELECT id, code, name, allows_credit, credit_limit, outstanding_balance
		FROM clients
		WHERE code = $1 AND is_active = true
		FOR UPDATE
	`, code).Scan(&c.ID, &c.Code, &c.Name, &c.AllowsCredit, &c.CreditLimit, &c.OutstandingBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("client", code)
		}
		return nil, fmt.Errorf("failed to lock client %s: %w", code, err)
	}
	return &c, nil
}

// buildDraft resolves products and assembles an in-memory invoice from the input.
// Line and pricing rules are enforced by AddLine as each line is appended.
func (s *invoiceService) buildDraft(ctx context.Context, tx pgx.Tx, input InvoiceInput, client *Client) (*Invoice, error) {
	taxRate := DefaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}
	date := input.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	inv := &Invoice{
		Number:     input.Number,
		Date:       date,
		ClientID:   client.ID,
		ClientCode: client.Code,
		ClientName: client.Name,
		SaleType:   input.SaleType,
		TaxRate:    taxRate,
	}

	for i, li := range input.Lines {
		var p Product
		err := tx.QueryRow(ctx, `
			SELECT id, code, name, purchase_price, sale_price
			FROM products
			WHERE code = $1 AND is_active = true
		`, li.ProductCode).Scan(&p.ID, &p.Code, &p.Name, &p.PurchasePrice, &p.SalePrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, notFound("product", li.ProductCode)
			}
			return nil, fmt.Errorf("line %d: failed to resolve product %s: %w", i+1, li.ProductCode, err)
		}
		if err := inv.AddLine(&p, li.Quantity, li.UnitPrice); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// bookBalance adds the invoice total to the client's outstanding balance. Called
// exactly once per successful commit of an unpaid credit invoice.
func bookBalance(ctx context.Context, tx pgx.Tx, clientID int, total decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE clients
		SET outstanding_balance = ROUND(outstanding_balance + $1, 2)
		WHERE id = $2
	`, total, clientID)
	if err != nil {
		return fmt.Errorf("failed to book client balance: %w", err)
	}
	return nil
}

// reverseBalance subtracts a previously booked total, floored at zero.
func reverseBalance(ctx context.Context, tx pgx.Tx, clientID int, total decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE clients
		SET outstanding_balance = GREATEST(ROUND(outstanding_balance - $1, 2), 0)
		WHERE id = $2
	`, total, clientID)
	if err != nil {
		return fmt.Errorf("failed to reverse client balance: %w", err)
	}
	return nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error) {
	if input.Number == "" {
		return nil, validationf("invoice_no_number", "invoice requires a number")
	}
	if input.ClientCode == "" {
		return nil, validationf("invoice_no_client", "invoice requires a client")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	client, err := lockClient(ctx, tx, input.ClientCode)
	if err != nil {
		return nil, err
	}

	inv, err := s.buildDraft(ctx, tx, input, client)
	if err != nil {
		return nil, err
	}
	if err := inv.Validate(client); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (number, invoice_date, client_id, sale_type, paid, tax_rate, subtotal, tax, total)
		VALUES ($1, $2, $3, $4, false, $5, $6, $7, $8)
		RETURNING id
	`, inv.Number, inv.Date, inv.ClientID, inv.SaleType, inv.TaxRate, inv.Subtotal, inv.Tax, inv.Total).Scan(&inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice %s: %w", inv.Number, err)
	}

	if err := insertLines(ctx, tx, inv.ID, inv.Lines); err != nil {
		return nil, err
	}

	if inv.IsCreditSale() {
		if err := bookBalance(ctx, tx, client.ID, inv.Total); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice %s: %w", inv.Number, err)
	}

	return s.GetInvoice(ctx, inv.ID)
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id int, input InvoiceInput) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		number      string
		paid        bool
		oldSaleType SaleType
		oldClientID int
		oldTotal    decimal.Decimal
	)
	err = tx.QueryRow(ctx, `
		SELECT number, paid, sale_type, client_id, total
		FROM invoices
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&number, &paid, &oldSaleType, &oldClientID, &oldTotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("invoice", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to lock invoice %d: %w", id, err)
	}
	if paid {
		return nil, validationf("invoice_paid_immutable", "invoice %s is paid and cannot be modified", number)
	}
	if input.ClientCode == "" {
		return nil, validationf("invoice_no_client", "invoice requires a client")
	}
	if input.Number == "" {
		input.Number = number
	}

	client, err := lockClient(ctx, tx, input.ClientCode)
	if err != nil {
		return nil, err
	}

	// Undo the balance effect of the previous commit before re-validating, so the
	// credit check runs against the client's balance without this invoice in it.
	if oldSaleType == SaleCredit {
		if client.ID == oldClientID {
			if err := reverseBalance(ctx, tx, oldClientID, oldTotal); err != nil {
				return nil, err
			}
			client.OutstandingBalance = decimal.Max(client.OutstandingBalance.Sub(oldTotal), decimal.Zero)
		} else {
			// Client changed: the old client's row also needs locking and reversal.
			_, err := tx.Exec(ctx, "SELECT id FROM clients WHERE id = $1 FOR UPDATE", oldClientID)
			if err != nil {
				return nil, fmt.Errorf("failed to lock previous client %d: %w", oldClientID, err)
			}
			if err := reverseBalance(ctx, tx, oldClientID, oldTotal); err != nil {
				return nil, err
			}
		}
	}

	inv, err := s.buildDraft(ctx, tx, input, client)
	if err != nil {
		return nil, err
	}
	if err := inv.Validate(client); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoices
		SET number = $1, invoice_date = $2, client_id = $3, sale_type = $4,
		    tax_rate = $5, subtotal = $6, tax = $7, total = $8, updated_at = NOW()
		WHERE id = $9
	`, inv.Number, inv.Date, inv.ClientID, inv.SaleType, inv.TaxRate, inv.Subtotal, inv.Tax, inv.Total, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice %d: %w", id, err)
	}

	// Lines are owned by the invoice: replace the whole collection.
	if _, err := tx.Exec(ctx, "DELETE FROM invoice_lines WHERE invoice_id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete invoice lines: %w", err)
	}
	if err := insertLines(ctx, tx, id, inv.Lines); err != nil {
		return nil, err
	}

	if inv.IsCreditSale() {
		if err := bookBalance(ctx, tx, client.ID, inv.Total); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice update %d: %w", id, err)
	}

	return s.GetInvoice(ctx, id)
}

func (s *invoiceService) RegisterPayment(ctx context.Context, id int) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		number   string
		saleType SaleType
		paid     bool
		total    decimal.Decimal
		clientID *int
	)
	err = tx.QueryRow(ctx, `
		SELECT number, sale_type, paid, total, client_id
		FROM invoices
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&number, &saleType, &paid, &total, &clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("invoice", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to lock invoice %d: %w", id, err)
	}

	switch {
	case clientID == nil:
		return nil, &PaymentError{Reason: PaymentNoClient, InvoiceNumber: number}
	case saleType != SaleCredit:
		return nil, &PaymentError{Reason: PaymentNotCreditSale, InvoiceNumber: number}
	case paid:
		return nil, &PaymentError{Reason: PaymentAlreadyPaid, InvoiceNumber: number}
	case !total.IsPositive():
		return nil, &PaymentError{Reason: PaymentNonPositiveTotal, InvoiceNumber: number}
	}

	// Lock the client row before adjusting the balance.
	_, err = tx.Exec(ctx, "SELECT id FROM clients WHERE id = $1 FOR UPDATE", *clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock client %d: %w", *clientID, err)
	}
	if err := reverseBalance(ctx, tx, *clientID, total); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		"UPDATE invoices SET paid = true, paid_at = NOW(), updated_at = NOW() WHERE id = $1",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invoice %d paid: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment for invoice %d: %w", id, err)
	}

	return s.GetInvoice(ctx, id)
}

// ── Queries ──────────────────────────────────────────────────────────────────

const invoiceSelect = `
	SELECT i.id, i.number, i.invoice_date::text, i.client_id, c.code, c.name,
	       i.sale_type, i.paid, i.tax_rate, i.subtotal, i.tax, i.total,
	       i.created_at, i.updated_at, i.paid_at
	FROM invoices i
	JOIN clients c ON c.id = i.client_id
`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Date, &inv.ClientID, &inv.ClientCode, &inv.ClientName,
		&inv.SaleType, &inv.Paid, &inv.TaxRate, &inv.Subtotal, &inv.Tax, &inv.Total,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx, invoiceSelect+" WHERE i.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("invoice", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to fetch invoice %d: %w", id, err)
	}

	lines, err := fetchInvoiceLines(ctx, s.pool, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

func (s *invoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx, invoiceSelect+" WHERE i.number = $1", number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("invoice", number)
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", number, err)
	}

	lines, err := fetchInvoiceLines(ctx, s.pool, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, paid *bool, clientCode string) ([]Invoice, error) {
	query := invoiceSelect + " WHERE 1=1"
	args := []any{}
	if paid != nil {
		args = append(args, *paid)
		query += fmt.Sprintf(" AND i.paid = $%d", len(args))
	}
	if clientCode != "" {
		args = append(args, clientCode)
		query += fmt.Sprintf(" AND c.code = $%d", len(args))
	}
	query += " ORDER BY i.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, invoiceID int, lines []InvoiceLine) error {
	for i, l := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_lines (invoice_id, line_number, product_id, quantity, unit_price, amount)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, invoiceID, i+1, l.ProductID, l.Quantity, l.UnitPrice, l.Amount)
		if err != nil {
			return fmt.Errorf("failed to insert invoice line %d: %w", i+1, err)
		}
	}
	return nil
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchInvoiceLines(ctx context.Context, q pgxQuerier, invoiceID int) ([]InvoiceLine, error) {
	rows, err := q.Query(ctx, `
		SELECT il.id, il.invoice_id, il.line_number,
		       p.id, p.code, p.name, p.purchase_price,
		       il.quantity, il.unit_price, il.amount
		FROM invoice_lines il
		JOIN products p ON p.id = il.product_id
		WHERE il.invoice_id = $1
		ORDER BY il.line_number
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []InvoiceLine
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(
			&l.ID, &l.InvoiceID, &l.LineNumber,
			&l.ProductID, &l.ProductCode, &l.ProductName, &l.PurchasePrice,
			&l.Quantity, &l.UnitPrice, &l.Amount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
