package web

import (
	"fmt"
	"net/http"
	"testing"

	"agrosupply/internal/core"

	"github.com/shopspring/decimal"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        &core.ValidationError{Key: "invoice_no_lines", Message: "invoice must have at least one line"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "unsupported operation",
			err:        &core.UnsupportedOperationError{Op: "TRANSFER"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNSUPPORTED_OPERATION",
		},
		{
			name: "insufficient stock",
			err: &core.InsufficientStockError{
				ProductCode: "P001",
				Available:   decimal.NewFromInt(5),
				Requested:   decimal.NewFromInt(10),
			},
			wantStatus: http.StatusConflict,
			wantCode:   "INSUFFICIENT_STOCK",
		},
		{
			name: "credit limit exceeded",
			err: &core.CreditLimitExceededError{
				ClientCode: "C001",
				Limit:      decimal.NewFromInt(500),
				Balance:    decimal.NewFromInt(400),
				Total:      decimal.NewFromInt(200),
			},
			wantStatus: http.StatusConflict,
			wantCode:   "CREDIT_LIMIT_EXCEEDED",
		},
		{
			name:       "payment already paid",
			err:        &core.PaymentError{Reason: core.PaymentAlreadyPaid, InvoiceNumber: "F-0001"},
			wantStatus: http.StatusConflict,
			wantCode:   "PAYMENT_ALREADY_PAID",
		},
		{
			name:       "payment not credit sale",
			err:        &core.PaymentError{Reason: core.PaymentNotCreditSale, InvoiceNumber: "F-0001"},
			wantStatus: http.StatusConflict,
			wantCode:   "PAYMENT_NOT_CREDIT_SALE",
		},
		{
			name:       "not found",
			err:        &core.NotFoundError{Entity: "product", Ref: "P999"},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("apply movement: %w", &core.InsufficientStockError{ProductCode: "P001"}),
			wantStatus: http.StatusConflict,
			wantCode:   "INSUFFICIENT_STOCK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := mapDomainError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}
