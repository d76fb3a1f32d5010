package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"agrosupply/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Handler holds the domain services and the chi router.
type Handler struct {
	catalog  core.CatalogService
	clients  core.ClientService
	stock    core.StockService
	invoices core.InvoiceService
	users    core.UserService

	validate  *validator.Validate
	log       *logrus.Logger
	jwtSecret string
	jwtTTL    time.Duration
}

// Options carries the cross-cutting settings the handler needs.
type Options struct {
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(
	catalog core.CatalogService,
	clients core.ClientService,
	stock core.StockService,
	invoices core.InvoiceService,
	users core.UserService,
	log *logrus.Logger,
	opts Options,
) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = time.Hour
	}

	h := &Handler{
		catalog:   catalog,
		clients:   clients,
		stock:     stock,
		invoices:  invoices,
		users:     users,
		validate:  validator.New(),
		log:       log,
		jwtSecret: opts.JWTSecret,
		jwtTTL:    opts.JWTTTL,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RequestBodyLimit(opts.MaxBodyBytes))

	// ── Public ───────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/login", h.login)
	r.Post("/api/logout", h.logout)

	// ── Protected API (401 JSON if unauthenticated) ──────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/me", h.me)

		// Catalog
		r.Get("/api/categories", h.listCategories)
		r.Post("/api/categories", h.createCategory)

		r.Get("/api/suppliers", h.listSuppliers)
		r.Post("/api/suppliers", h.createSupplier)
		r.Get("/api/suppliers/{code}", h.getSupplier)
		r.Delete("/api/suppliers/{code}", h.deactivateSupplier)

		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Get("/api/products/below-minimum", h.listProductsBelowMinimum)
		r.Get("/api/products/{code}", h.getProduct)
		r.Put("/api/products/{code}", h.updateProduct)
		r.Delete("/api/products/{code}", h.deactivateProduct)

		// Clients
		r.Get("/api/clients", h.listClients)
		r.Post("/api/clients", h.createClient)
		r.Get("/api/clients/{code}", h.getClient)
		r.Put("/api/clients/{code}", h.updateClient)
		r.Delete("/api/clients/{code}", h.deactivateClient)

		// Stock ledger
		r.Get("/api/movements", h.listMovements)
		r.Post("/api/movements", h.createMovement)

		// Invoices
		r.Get("/api/invoices", h.listInvoices)
		r.Post("/api/invoices", h.createInvoice)
		r.Get("/api/invoices/{number}", h.getInvoice)
		r.Put("/api/invoices/{id}", h.updateInvoice)
		r.Post("/api/invoices/{id}/pay", h.payInvoice)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// decodeJSON decodes and validates the request body into v. On failure it
// writes the error response and returns false.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

func urlCode(r *http.Request) string {
	return chi.URLParam(r, "code")
}
