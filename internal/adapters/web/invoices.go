package web

import (
	"net/http"
	"strconv"

	"agrosupply/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type invoiceLineRequest struct {
	ProductCode string          `json:"product_code" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type invoiceRequest struct {
	Number     string               `json:"number" validate:"required"`
	Date       string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	ClientCode string               `json:"client_code" validate:"required"`
	SaleType   string               `json:"sale_type" validate:"required"`
	TaxRate    *decimal.Decimal     `json:"tax_rate"`
	Lines      []invoiceLineRequest `json:"lines" validate:"min=1,dive"`
}

func (req *invoiceRequest) toInput() (core.InvoiceInput, error) {
	saleType, err := core.ParseSaleType(req.SaleType)
	if err != nil {
		return core.InvoiceInput{}, err
	}
	lines := make([]core.InvoiceLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.InvoiceLineInput{
			ProductCode: l.ProductCode,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return core.InvoiceInput{
		Number:     req.Number,
		Date:       req.Date,
		ClientCode: req.ClientCode,
		SaleType:   saleType,
		TaxRate:    req.TaxRate,
		Lines:      lines,
	}, nil
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	invoice, err := h.invoices.CreateInvoice(r.Context(), input)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req invoiceRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	invoice, err := h.invoices.UpdateInvoice(r.Context(), id, input)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) payInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	invoice, err := h.invoices.RegisterPayment(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.GetInvoiceByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	var paid *bool
	if raw := r.URL.Query().Get("paid"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, "paid must be true or false", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		paid = &v
	}
	invoices, err := h.invoices.ListInvoices(r.Context(), paid, r.URL.Query().Get("client"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// urlID parses the {id} URL parameter; on failure it writes a 400 response.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invoice id must be an integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
