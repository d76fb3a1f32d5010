package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"agrosupply/internal/core"
	"agrosupply/internal/i18n"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// mapDomainError translates a domain error into an HTTP status and error code.
func mapDomainError(err error) (status int, code string, key string) {
	var (
		validation  *core.ValidationError
		stock       *core.InsufficientStockError
		credit      *core.CreditLimitExceededError
		payment     *core.PaymentError
		unsupported *core.UnsupportedOperationError
		missing     *core.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "VALIDATION", validation.MessageKey()
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, "UNSUPPORTED_OPERATION", unsupported.MessageKey()
	case errors.As(err, &stock):
		return http.StatusConflict, "INSUFFICIENT_STOCK", stock.MessageKey()
	case errors.As(err, &credit):
		return http.StatusConflict, "CREDIT_LIMIT_EXCEEDED", credit.MessageKey()
	case errors.As(err, &payment):
		return http.StatusConflict, "PAYMENT_" + strings.ToUpper(payment.Reason), payment.MessageKey()
	case errors.As(err, &missing):
		return http.StatusNotFound, "NOT_FOUND", missing.MessageKey()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", ""
	}
}

// writeDomainError maps a service error to HTTP and localizes the message using
// the request's Accept-Language header.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, key := mapDomainError(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeError(w, r, "internal server error", code, status)
		return
	}
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	writeError(w, r, i18n.T(lang, key), code, status)
}
