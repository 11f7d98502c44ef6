package order

import (
	"net/http"

	"water-delivery/internal/httpx"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
	"water-delivery/internal/money"
	"water-delivery/internal/services/auth"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the order routes. Status changes are open to every role;
// the service decides which transitions each role may perform.
func (h *Handler) Register(rt *httpx.Router, authn *auth.Authenticator) {
	takers := authn.Require(models.RoleAdmin, models.RoleOrderTaker)

	rt.Handle("GET /orders", h.List, authn.Require())
	rt.Handle("POST /orders", h.CreateOrder, takers)
	rt.Handle("GET /orders/{id}", h.Get, authn.Require())
	rt.Handle("PATCH /orders/{id}/status", h.ChangeStatus, authn.Require())
	rt.Handle("PATCH /orders/{id}/courier", h.AssignCourier, takers)
}

// orderResponse adds the derived money figures to an order
type orderResponse struct {
	models.Order
	Total     money.Amount  `json:"total_minor_units"`
	Change    *money.Amount `json:"change_minor_units,omitempty"`
	ItemCount int           `json:"item_count"`
}

func newOrderResponse(o models.Order) orderResponse {
	resp := orderResponse{Order: o, Total: o.Total(), ItemCount: o.ItemCount()}
	if change, ok := o.Change(); ok {
		resp.Change = &change
	}
	return resp
}

// CreateOrder handles POST /orders requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	var req models.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.logger.Debug("validation_failed", "Failed to parse request body", requestID, map[string]any{
			"error": err.Error(),
		})
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newOrderResponse(order))
}

// List handles GET /orders?status=&courier_id=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	courierID, err := httpx.QueryInt(r, "courier_id", 0)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	filter := models.OrderFilter{CourierID: int64(courierID)}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
		filter.Status = status
	}

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = newOrderResponse(o)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newOrderResponse(order))
}

type statusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus handles PATCH /orders/{id}/status
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	actor, _ := auth.PrincipalFromContext(r.Context())
	order, err := h.service.ChangeStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newOrderResponse(order))
}

type courierRequest struct {
	CourierID int64 `json:"courier_id"`
}

// AssignCourier handles PATCH /orders/{id}/courier
func (h *Handler) AssignCourier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var req courierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	actor, _ := auth.PrincipalFromContext(r.Context())
	order, err := h.service.AssignCourier(r.Context(), id, req.CourierID, actor)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newOrderResponse(order))
}
