package report

import (
	"net/http"
	"time"

	"water-delivery/internal/httpx"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
	"water-delivery/internal/services/auth"
)

// Handler serves the admin reports
type Handler struct {
	service  *Service
	location *time.Location
	logger   *logger.Logger
}

func NewHandler(service *Service, loc *time.Location, log *logger.Logger) *Handler {
	return &Handler{service: service, location: loc, logger: log}
}

func (h *Handler) Register(rt *httpx.Router, authn *auth.Authenticator) {
	admin := authn.Require(models.RoleAdmin)

	rt.Handle("GET /reports/summary", h.Summary, admin)
	rt.Handle("GET /reports/by-status", h.ByStatus, admin)
	rt.Handle("GET /reports/by-payment", h.ByPayment, admin)
	rt.Handle("GET /reports/products", h.TopProducts, admin)
	rt.Handle("GET /reports/orders", h.Orders, admin)
	rt.Handle("GET /reports/dashboard", h.Dashboard, admin)
}

// params reads ?start=&end=&status=
func (h *Handler) params(r *http.Request) (Range, StatusFilter, error) {
	q := r.URL.Query()

	rng, err := ParseRange(q.Get("start"), q.Get("end"), h.location)
	if err != nil {
		return Range{}, StatusFilter{}, err
	}
	filter, err := ParseStatusFilter(q.Get("status"), h.service.DefaultStatus())
	if err != nil {
		return Range{}, StatusFilter{}, err
	}
	return rng, filter, nil
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	rng, filter, err := h.params(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), rng, filter)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) ByStatus(w http.ResponseWriter, r *http.Request) {
	rng, _, err := h.params(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	totals, err := h.service.ByStatus(r.Context(), rng)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, totals)
}

func (h *Handler) ByPayment(w http.ResponseWriter, r *http.Request) {
	rng, filter, err := h.params(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	totals, err := h.service.ByPaymentMethod(r.Context(), rng, filter)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, totals)
}

func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	rng, filter, err := h.params(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit", DefaultTopProductsLimit)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	products, err := h.service.TopProducts(r.Context(), rng, filter, limit)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	rng, filter, err := h.params(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit", DefaultOrderListLimit)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	orders, err := h.service.OrderList(r.Context(), rng, filter, limit)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rng, filter, err := h.params(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), rng, filter)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dashboard)
}
