package catalog

import (
	"net/http"

	"water-delivery/internal/httpx"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
	"water-delivery/internal/money"
	"water-delivery/internal/services/auth"
)

// Handler handles HTTP requests for the product catalog
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register mounts the catalog routes. Any signed-in user can read the active
// catalog; only administrators see inactive products or change anything.
func (h *Handler) Register(rt *httpx.Router, authn *auth.Authenticator) {
	rt.Handle("GET /products", h.ListActive, authn.Require())
	rt.Handle("GET /admin/products", h.ListAll, authn.Require(models.RoleAdmin))
	rt.Handle("POST /admin/products", h.Create, authn.Require(models.RoleAdmin))
	rt.Handle("PATCH /admin/products/{id}", h.Update, authn.Require(models.RoleAdmin))
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListActive(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAll(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}

type createProductRequest struct {
	Name   string       `json:"name"`
	Price  money.Amount `json:"price_minor_units"`
	Active *httpx.Bool  `json:"active"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	active := true
	if req.Active != nil {
		active = bool(*req.Active)
	}

	product, err := h.service.Create(r.Context(), req.Name, req.Price, active)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, product)
}

type updateProductRequest struct {
	Name   *string       `json:"name"`
	Price  *money.Amount `json:"price_minor_units"`
	Active *httpx.Bool   `json:"active"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var req updateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	product, err := h.service.Update(r.Context(), id, models.ProductPatch{
		Name:   req.Name,
		Price:  req.Price,
		Active: req.Active.Ptr(),
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}
