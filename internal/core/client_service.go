package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ClientInput holds the caller-editable client fields. OutstandingBalance is not
// here on purpose: only the invoice engine and the payment operation move it.
type ClientInput struct {
	Code         string
	Name         string
	ClientType   string
	Phone        string
	Email        string
	Address      string
	Municipality string
	Department   string
	AllowsCredit bool
	CreditLimit  decimal.Decimal
}

// ClientService manages client master data and guards the credit invariants.
type ClientService interface {
	CreateClient(ctx context.Context, input ClientInput) (*Client, error)
	// UpdateClient re-validates the credit invariants against the stored balance;
	// shrinking the limit below the current outstanding balance is rejected.
	UpdateClient(ctx context.Context, code string, input ClientInput) (*Client, error)
	GetClientByCode(ctx context.Context, code string) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	DeactivateClient(ctx context.Context, code string) error
}

type clientService struct {
	pool *pgxpool.Pool
}

func NewClientService(pool *pgxpool.Pool) ClientService {
	return &clientService{pool: pool}
}

// normalizeClient applies the master-data rules: a contact channel is mandatory,
// and clients without credit carry zeroed credit fields. balance is the stored
// outstanding balance the new limit must still cover.
func normalizeClient(input *ClientInput, balance decimal.Decimal) error {
	if input.Code == "" || input.Name == "" {
		return validationf("client_missing_identity", "client requires a code and a name")
	}
	if input.Phone == "" && input.Email == "" {
		return validationf("client_contact_required",
			"client %s must have at least a phone or an email", input.Code)
	}
	if !input.AllowsCredit {
		input.CreditLimit = decimal.Zero
		if !balance.IsZero() {
			return validationf("client_credit_disabled_with_debt",
				"cannot disable credit for client %s while %s is outstanding",
				input.Code, balance.StringFixed(2))
		}
		return nil
	}
	if !input.CreditLimit.IsPositive() {
		return validationf("client_non_positive_credit_limit",
			"client %s with credit enabled needs a credit limit greater than zero", input.Code)
	}
	if balance.GreaterThan(input.CreditLimit) {
		return validationf("client_balance_exceeds_limit",
			"client %s outstanding balance %s exceeds the new credit limit %s",
			input.Code, balance.StringFixed(2), input.CreditLimit.StringFixed(2))
	}
	return nil
}

const clientColumns = `id, code, name, client_type, phone, email, address, municipality,
	department, allows_credit, credit_limit, outstanding_balance, is_active, created_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.ClientType, &c.Phone, &c.Email, &c.Address, &c.Municipality,
		&c.Department, &c.AllowsCredit, &c.CreditLimit, &c.OutstandingBalance, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *clientService) CreateClient(ctx context.Context, input ClientInput) (*Client, error) {
	if err := normalizeClient(&input, decimal.Zero); err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO clients (code, name, client_type, phone, email, address, municipality, department,
		                     allows_credit, credit_limit, outstanding_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0)
		RETURNING `+clientColumns+`
	`, input.Code, input.Name, input.ClientType, input.Phone, input.Email, input.Address,
		input.Municipality, input.Department, input.AllowsCredit, input.CreditLimit)

	c, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create client %s: %w", input.Code, err)
	}
	return c, nil
}

func (s *clientService) UpdateClient(ctx context.Context, code string, input ClientInput) (*Client, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := lockClient(ctx, tx, code)
	if err != nil {
		return nil, err
	}

	input.Code = code
	if err := normalizeClient(&input, current.OutstandingBalance); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE clients
		SET name = $1, client_type = $2, phone = $3, email = $4, address = $5,
		    municipality = $6, department = $7, allows_credit = $8, credit_limit = $9
		WHERE id = $10
		RETURNING `+clientColumns+`
	`, input.Name, input.ClientType, input.Phone, input.Email, input.Address,
		input.Municipality, input.Department, input.AllowsCredit, input.CreditLimit, current.ID)

	c, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update client %s: %w", code, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit client update: %w", err)
	}
	return c, nil
}

func (s *clientService) GetClientByCode(ctx context.Context, code string) (*Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE code = $1", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("client", code)
		}
		return nil, fmt.Errorf("failed to fetch client %s: %w", code, err)
	}
	return c, nil
}

func (s *clientService) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE is_active = true ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, nil
}

func (s *clientService) DeactivateClient(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE clients SET is_active = false WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("failed to deactivate client %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("client", code)
	}
	return nil
}
