package web

import (
	"net/http"

	"agrosupply/internal/core"

	"github.com/shopspring/decimal"
)

type movementRequest struct {
	ProductCode  string          `json:"product_code" validate:"required"`
	Type         string          `json:"type" validate:"required"`
	Date         string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Quantity     decimal.Decimal `json:"quantity"`
	SupplierCode string          `json:"supplier_code"`
	Observations string          `json:"observations"`
}

func (h *Handler) createMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	movementType, err := core.ParseMovementType(req.Type)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	movement, err := h.stock.ApplyMovement(r.Context(), core.MovementInput{
		ProductCode:  req.ProductCode,
		Type:         movementType,
		Date:         req.Date,
		Quantity:     req.Quantity,
		SupplierCode: req.SupplierCode,
		Observations: req.Observations,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, movement)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.stock.ListMovements(r.Context(), r.URL.Query().Get("product"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}
