package web

import (
	"net/http"

	"agrosupply/internal/core"

	"github.com/shopspring/decimal"
)

// ── Categories ───────────────────────────────────────────────────────────────

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string `json:"code" validate:"required"`
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), req.Code, req.Name, req.Description)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// ── Suppliers ────────────────────────────────────────────────────────────────

type supplierRequest struct {
	Code           string          `json:"code" validate:"required"`
	LegalName      string          `json:"legal_name" validate:"required"`
	TradeName      string          `json:"trade_name"`
	SupplierType   string          `json:"supplier_type"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Address        string          `json:"address"`
	Municipality   string          `json:"municipality"`
	Department     string          `json:"department"`
	Country        string          `json:"country"`
	HandlesCredit  bool            `json:"handles_credit"`
	CreditTermDays int             `json:"credit_term_days" validate:"gte=0"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	supplier, err := h.catalog.CreateSupplier(r.Context(), core.Supplier{
		Code:           req.Code,
		LegalName:      req.LegalName,
		TradeName:      req.TradeName,
		SupplierType:   req.SupplierType,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		Municipality:   req.Municipality,
		Department:     req.Department,
		Country:        req.Country,
		HandlesCredit:  req.HandlesCredit,
		CreditTermDays: req.CreditTermDays,
		CreditLimit:    req.CreditLimit,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.catalog.ListSuppliers(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.catalog.GetSupplierByCode(r.Context(), urlCode(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func (h *Handler) deactivateSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeactivateSupplier(r.Context(), urlCode(r)); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Products ─────────────────────────────────────────────────────────────────

type productRequest struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	ProductType   string           `json:"product_type"`
	Description   string           `json:"description"`
	CategoryCode  string           `json:"category_code"`
	SupplierCode  string           `json:"supplier_code"`
	Unit          string           `json:"unit"`
	MinimumStock  decimal.Decimal  `json:"minimum_stock"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
}

func (req *productRequest) toInput() core.ProductInput {
	return core.ProductInput{
		Code:          req.Code,
		Name:          req.Name,
		ProductType:   req.ProductType,
		Description:   req.Description,
		CategoryCode:  req.CategoryCode,
		SupplierCode:  req.SupplierCode,
		Unit:          req.Unit,
		MinimumStock:  req.MinimumStock,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		TaxRate:       req.TaxRate,
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), urlCode(r), req.toInput())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProductByCode(r.Context(), urlCode(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) listProductsBelowMinimum(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProductsBelowMinimum(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeactivateProduct(r.Context(), urlCode(r)); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
