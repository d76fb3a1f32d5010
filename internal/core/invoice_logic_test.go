package core_test

import (
	"errors"
	"math/rand"
	"testing"

	"agrosupply/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testProduct() *core.Product {
	return &core.Product{
		ID:            1,
		Code:          "P001",
		Name:          "Triple 15 Fertilizer 50kg",
		PurchasePrice: dec("10.00"),
		SalePrice:     dec("12.00"),
	}
}

func TestInvoice_AddLineAndTotals(t *testing.T) {
	inv := &core.Invoice{SaleType: core.SaleCredit, TaxRate: dec("15.00")}

	if err := inv.AddLine(testProduct(), dec("10"), dec("12.00")); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}

	if !inv.Lines[0].Amount.Equal(dec("120.00")) {
		t.Errorf("expected line amount 120.00, got %s", inv.Lines[0].Amount)
	}
	if !inv.Subtotal.Equal(dec("120.00")) {
		t.Errorf("expected subtotal 120.00, got %s", inv.Subtotal)
	}
	if !inv.Tax.Equal(dec("18.00")) {
		t.Errorf("expected tax 18.00, got %s", inv.Tax)
	}
	if !inv.Total.Equal(dec("138.00")) {
		t.Errorf("expected total 138.00, got %s", inv.Total)
	}
}

func TestInvoice_AddLine_DefaultsToSalePrice(t *testing.T) {
	inv := &core.Invoice{TaxRate: decimal.Zero}
	if err := inv.AddLine(testProduct(), dec("2"), decimal.Zero); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if !inv.Lines[0].UnitPrice.Equal(dec("12.00")) {
		t.Errorf("expected list price 12.00, got %s", inv.Lines[0].UnitPrice)
	}
}

func TestInvoice_AddLine_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		price    string
		key      string
	}{
		{"zero quantity", "0", "12.00", "line_non_positive_quantity"},
		{"negative quantity", "-1", "12.00", "line_non_positive_quantity"},
		{"negative price", "1", "-5.00", "line_non_positive_price"},
		{"below purchase price", "100", "9.99", "line_below_purchase_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &core.Invoice{TaxRate: dec("15.00")}
			err := inv.AddLine(testProduct(), dec(tt.quantity), dec(tt.price))
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Key != tt.key {
				t.Errorf("expected key %s, got %s", tt.key, verr.Key)
			}
			if len(inv.Lines) != 0 {
				t.Errorf("rejected line must not be appended")
			}
		})
	}
}

func TestInvoice_RecomputeTotals_RoundsHalfUpAtEachStep(t *testing.T) {
	// 3 × 0.335 = 1.005 → 1.01; tax 15% of 1.01 = 0.1515 → 0.15; total 1.16.
	inv := &core.Invoice{TaxRate: dec("15.00")}
	p := testProduct()
	p.PurchasePrice = dec("0.10")
	if err := inv.AddLine(p, dec("3"), dec("0.335")); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if !inv.Lines[0].Amount.Equal(dec("1.01")) {
		t.Errorf("expected amount 1.01, got %s", inv.Lines[0].Amount)
	}
	if !inv.Tax.Equal(dec("0.15")) {
		t.Errorf("expected tax 0.15, got %s", inv.Tax)
	}
	if !inv.Total.Equal(dec("1.16")) {
		t.Errorf("expected total 1.16, got %s", inv.Total)
	}
}

func TestInvoice_RecomputeTotals_ZeroTaxRate(t *testing.T) {
	inv := &core.Invoice{TaxRate: decimal.Zero}
	if err := inv.AddLine(testProduct(), dec("5"), dec("20.00")); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if !inv.Tax.IsZero() {
		t.Errorf("expected zero tax, got %s", inv.Tax)
	}
	if !inv.Total.Equal(dec("100.00")) {
		t.Errorf("expected total 100.00, got %s", inv.Total)
	}
}

func TestInvoice_RecomputeTotals_UnsetAmountCountsAsZero(t *testing.T) {
	inv := &core.Invoice{
		TaxRate: dec("15.00"),
		Lines: []core.InvoiceLine{
			{Quantity: dec("1"), UnitPrice: dec("50.00"), Amount: dec("50.00")},
			{Quantity: dec("1"), UnitPrice: dec("50.00")}, // amount never computed
		},
	}
	inv.RecomputeTotals()
	if !inv.Subtotal.Equal(dec("50.00")) {
		t.Errorf("expected subtotal 50.00, got %s", inv.Subtotal)
	}
}

func TestInvoice_TotalsAreConsistent_RandomLines(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		inv := &core.Invoice{TaxRate: dec("15.00")}
		p := testProduct()
		p.PurchasePrice = dec("0.01")
		nLines := 1 + rng.Intn(8)
		for j := 0; j < nLines; j++ {
			qty := decimal.NewFromFloat(float64(1+rng.Intn(500)) / 10)
			price := decimal.NewFromFloat(float64(1+rng.Intn(10000)) / 100)
			if err := inv.AddLine(p, qty, price); err != nil {
				t.Fatalf("AddLine failed: %v", err)
			}
		}
		if !inv.Subtotal.Add(inv.Tax).Equal(inv.Total) {
			t.Fatalf("iteration %d: subtotal %s + tax %s != total %s",
				i, inv.Subtotal, inv.Tax, inv.Total)
		}
	}
}

func TestInvoice_Validate(t *testing.T) {
	creditClient := &core.Client{
		Code:         "C001",
		Name:         "Finca San Rafael",
		AllowsCredit: true,
		CreditLimit:  dec("500.00"),
	}

	t.Run("no lines", func(t *testing.T) {
		inv := &core.Invoice{SaleType: core.SaleCash, TaxRate: dec("15.00")}
		err := inv.Validate(creditClient)
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Key != "invoice_no_lines" {
			t.Fatalf("expected invoice_no_lines, got %v", err)
		}
	})

	t.Run("no client", func(t *testing.T) {
		inv := &core.Invoice{SaleType: core.SaleCash, TaxRate: dec("15.00")}
		if err := inv.AddLine(testProduct(), dec("1"), dec("12.00")); err != nil {
			t.Fatalf("AddLine failed: %v", err)
		}
		err := inv.Validate(nil)
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Key != "invoice_no_client" {
			t.Fatalf("expected invoice_no_client, got %v", err)
		}
	})

	t.Run("total rounds to zero", func(t *testing.T) {
		inv := &core.Invoice{SaleType: core.SaleCash, TaxRate: dec("15.00")}
		p := testProduct()
		p.PurchasePrice = dec("0.001")
		if err := inv.AddLine(p, dec("0.01"), dec("0.01")); err != nil {
			t.Fatalf("AddLine failed: %v", err)
		}
		err := inv.Validate(creditClient)
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Key != "invoice_non_positive_total" {
			t.Fatalf("expected invoice_non_positive_total, got %v", err)
		}
	})

	t.Run("credit sale to client without credit", func(t *testing.T) {
		inv := &core.Invoice{SaleType: core.SaleCredit, TaxRate: dec("15.00")}
		if err := inv.AddLine(testProduct(), dec("1"), dec("12.00")); err != nil {
			t.Fatalf("AddLine failed: %v", err)
		}
		noCredit := &core.Client{Code: "C002", Name: "Cash Only"}
		err := inv.Validate(noCredit)
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Key != "invoice_client_no_credit" {
			t.Fatalf("expected invoice_client_no_credit, got %v", err)
		}
	})

	t.Run("credit limit exceeded", func(t *testing.T) {
		inv := &core.Invoice{SaleType: core.SaleCredit, TaxRate: decimal.Zero}
		if err := inv.AddLine(testProduct(), dec("1"), dec("400.00")); err != nil {
			t.Fatalf("AddLine failed: %v", err)
		}
		client := &core.Client{
			Code:               "C001",
			AllowsCredit:       true,
			CreditLimit:        dec("500.00"),
			OutstandingBalance: dec("138.00"),
		}
		err := inv.Validate(client)
		var cerr *core.CreditLimitExceededError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected CreditLimitExceededError, got %v", err)
		}
		if !cerr.Total.Equal(dec("400.00")) || !cerr.Balance.Equal(dec("138.00")) {
			t.Errorf("unexpected error detail: %+v", cerr)
		}
	})

	t.Run("credit sale exactly at the limit passes", func(t *testing.T) {
		inv := &core.Invoice{SaleType: core.SaleCredit, TaxRate: decimal.Zero}
		if err := inv.AddLine(testProduct(), dec("1"), dec("500.00")); err != nil {
			t.Fatalf("AddLine failed: %v", err)
		}
		if err := inv.Validate(creditClient); err != nil {
			t.Fatalf("expected success at exact limit, got %v", err)
		}
	})
}

func TestParseSaleType(t *testing.T) {
	if _, err := core.ParseSaleType("CASH"); err != nil {
		t.Errorf("CASH should parse: %v", err)
	}
	if _, err := core.ParseSaleType("CREDIT"); err != nil {
		t.Errorf("CREDIT should parse: %v", err)
	}
	if _, err := core.ParseSaleType("LAYAWAY"); err == nil {
		t.Error("LAYAWAY should be rejected")
	}
}

func TestParseMovementType(t *testing.T) {
	if _, err := core.ParseMovementType("IN"); err != nil {
		t.Errorf("IN should parse: %v", err)
	}
	if _, err := core.ParseMovementType("OUT"); err != nil {
		t.Errorf("OUT should parse: %v", err)
	}
	var uerr *core.UnsupportedOperationError
	if _, err := core.ParseMovementType("TRANSFER"); !errors.As(err, &uerr) {
		t.Errorf("expected UnsupportedOperationError for TRANSFER, got %v", err)
	}
}
