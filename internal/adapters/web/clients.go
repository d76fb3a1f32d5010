package web

import (
	"net/http"

	"agrosupply/internal/core"

	"github.com/shopspring/decimal"
)

type clientRequest struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	ClientType   string          `json:"client_type"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Address      string          `json:"address"`
	Municipality string          `json:"municipality"`
	Department   string          `json:"department"`
	AllowsCredit bool            `json:"allows_credit"`
	CreditLimit  decimal.Decimal `json:"credit_limit"`
}

func (req *clientRequest) toInput() core.ClientInput {
	return core.ClientInput{
		Code:         req.Code,
		Name:         req.Name,
		ClientType:   req.ClientType,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		Municipality: req.Municipality,
		Department:   req.Department,
		AllowsCredit: req.AllowsCredit,
		CreditLimit:  req.CreditLimit,
	}
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	client, err := h.clients.CreateClient(r.Context(), req.toInput())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	client, err := h.clients.UpdateClient(r.Context(), urlCode(r), req.toInput())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.clients.GetClientByCode(r.Context(), urlCode(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *Handler) deactivateClient(w http.ResponseWriter, r *http.Request) {
	if err := h.clients.DeactivateClient(r.Context(), urlCode(r)); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
