package customer

import (
	"net/http"

	"water-delivery/internal/httpx"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
	"water-delivery/internal/services/auth"
)

// Handler handles HTTP requests for the customer directory
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register mounts the customer routes. Customers are maintained by the staff
// who take orders.
func (h *Handler) Register(rt *httpx.Router, authn *auth.Authenticator) {
	staff := authn.Require(models.RoleAdmin, models.RoleOrderTaker)

	rt.Handle("GET /customers", h.List, staff)
	rt.Handle("POST /customers", h.Create, staff)
	rt.Handle("GET /customers/search", h.Search, staff)
	rt.Handle("GET /customers/{id}", h.Get, staff)
	rt.Handle("PATCH /customers/{id}", h.Update, staff)
	rt.Handle("DELETE /customers/{id}", h.Delete, staff)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListActive(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, customers)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NewCustomer
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

// Search handles GET /customers/search?q=&limit=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.QueryInt(r, "limit", 0)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	customers, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, customers)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var patch models.CustomerPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	c, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.service.SoftDelete(r.Context(), id); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
