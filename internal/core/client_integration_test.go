package core_test

import (
	"context"
	"errors"
	"testing"

	"agrosupply/internal/core"

	"github.com/shopspring/decimal"
)

func TestClientService_CreateValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewClientService(pool)
	ctx := context.Background()

	var verr *core.ValidationError

	// No contact channel at all.
	_, err := svc.CreateClient(ctx, core.ClientInput{Code: "C100", Name: "No Contact"})
	if !errors.As(err, &verr) || verr.Key != "client_contact_required" {
		t.Errorf("expected client_contact_required, got %v", err)
	}

	// Credit enabled without a positive limit.
	_, err = svc.CreateClient(ctx, core.ClientInput{
		Code: "C101", Name: "Bad Credit", Phone: "+505-8700-0100", AllowsCredit: true,
	})
	if !errors.As(err, &verr) || verr.Key != "client_non_positive_credit_limit" {
		t.Errorf("expected client_non_positive_credit_limit, got %v", err)
	}

	// Credit disabled: limit is forced to zero whatever the caller sent.
	c, err := svc.CreateClient(ctx, core.ClientInput{
		Code: "C102", Name: "Cash Client", Email: "cash@client.ni",
		AllowsCredit: false, CreditLimit: dec("9999.00"),
	})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if !c.CreditLimit.IsZero() || !c.OutstandingBalance.IsZero() {
		t.Errorf("credit fields must be zero for a no-credit client: limit %s, balance %s",
			c.CreditLimit, c.OutstandingBalance)
	}
}

func TestClientService_UpdateGuardsStoredBalance(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	clients := core.NewClientService(pool)
	invoices := core.NewInvoiceService(pool)
	ctx := context.Background()

	// Put 138.00 of debt on C001.
	if _, err := invoices.CreateInvoice(ctx, core.InvoiceInput{
		Number:     "F-0600",
		ClientCode: "C001",
		SaleType:   core.SaleCredit,
		Lines: []core.InvoiceLineInput{
			{ProductCode: "P001", Quantity: decimal.NewFromInt(10), UnitPrice: dec("12.00")},
		},
	}); err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	var verr *core.ValidationError

	// Shrinking the limit below the outstanding balance is rejected.
	_, err := clients.UpdateClient(ctx, "C001", core.ClientInput{
		Name: "Finca San Rafael", Phone: "+505-8700-0001",
		AllowsCredit: true, CreditLimit: dec("100.00"),
	})
	if !errors.As(err, &verr) || verr.Key != "client_balance_exceeds_limit" {
		t.Errorf("expected client_balance_exceeds_limit, got %v", err)
	}

	// Disabling credit while debt is outstanding is rejected too.
	_, err = clients.UpdateClient(ctx, "C001", core.ClientInput{
		Name: "Finca San Rafael", Phone: "+505-8700-0001", AllowsCredit: false,
	})
	if !errors.As(err, &verr) || verr.Key != "client_credit_disabled_with_debt" {
		t.Errorf("expected client_credit_disabled_with_debt, got %v", err)
	}

	// Raising the limit is fine, and the balance survives the update untouched.
	c, err := clients.UpdateClient(ctx, "C001", core.ClientInput{
		Name: "Finca San Rafael", Phone: "+505-8700-0001",
		AllowsCredit: true, CreditLimit: dec("1000.00"),
	})
	if err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	if !c.OutstandingBalance.Equal(dec("138.00")) {
		t.Errorf("balance must not change on master-data update, got %s", c.OutstandingBalance)
	}
}

func TestClientService_Deactivate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewClientService(pool)
	ctx := context.Background()

	if err := svc.DeactivateClient(ctx, "C002"); err != nil {
		t.Fatalf("DeactivateClient failed: %v", err)
	}
	list, err := svc.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	for _, c := range list {
		if c.Code == "C002" {
			t.Error("deactivated client must not be listed")
		}
	}

	var nferr *core.NotFoundError
	if err := svc.DeactivateClient(ctx, "NOPE"); !errors.As(err, &nferr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}
