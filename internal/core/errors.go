package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors carry a stable message key so UI adapters can localize them.
// Infrastructure failures (connection loss, SQL errors) are not wrapped in these
// types; they stay as plain wrapped errors and map to HTTP 500.

// ValidationError reports malformed or business-rule-violating input.
// Key identifies the violated rule for localization; Message is a developer-readable detail.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// MessageKey returns the localization key for this error.
func (e *ValidationError) MessageKey() string { return e.Key }

func validationf(key, format string, args ...any) *ValidationError {
	return &ValidationError{Key: key, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError is returned when an OUT movement exceeds the product's current stock.
type InsufficientStockError struct {
	ProductCode string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %s, requested %s",
		e.ProductCode, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientStockError) MessageKey() string { return "insufficient_stock" }

// CreditLimitExceededError is returned when committing a credit sale would push the
// client's outstanding balance past its approved credit limit.
type CreditLimitExceededError struct {
	ClientCode string
	Limit      decimal.Decimal
	Balance    decimal.Decimal
	Total      decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("invoice exceeds credit limit for client %s: limit %s, balance %s, invoice total %s",
		e.ClientCode, e.Limit.StringFixed(2), e.Balance.StringFixed(2), e.Total.StringFixed(2))
}

func (e *CreditLimitExceededError) MessageKey() string { return "credit_limit_exceeded" }

// Payment failure reasons. The reason string doubles as the localization key suffix.
const (
	PaymentNoClient         = "no_client"
	PaymentNotCreditSale    = "not_credit_sale"
	PaymentAlreadyPaid      = "already_paid"
	PaymentNonPositiveTotal = "non_positive_total"
)

// PaymentError is returned by RegisterPayment when the invoice is not payable.
type PaymentError struct {
	Reason        string
	InvoiceNumber string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("cannot register payment for invoice %s: %s", e.InvoiceNumber, e.Reason)
}

func (e *PaymentError) MessageKey() string { return "payment_" + e.Reason }

// UnsupportedOperationError covers movement types outside IN/OUT.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation: %s", e.Op)
}

func (e *UnsupportedOperationError) MessageKey() string { return "unsupported_operation" }

// NotFoundError reports a missing entity referenced by code or ID.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

func (e *NotFoundError) MessageKey() string { return "not_found" }

func notFound(entity, ref string) *NotFoundError {
	return &NotFoundError{Entity: entity, Ref: ref}
}
