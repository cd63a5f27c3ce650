package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/internal/service"
	"github.com/utafrali/storefront-admin/pkg/httputil"
	"github.com/utafrali/storefront-admin/pkg/pagination"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateOrderRequest is the JSON request body for creating an order.
type CreateOrderRequest struct {
	ProductIDs []string `json:"product_ids" validate:"max=100"`
}

// UpdateStatusRequest is the JSON request body for moving an order to a new
// status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// StatusGraphResponse describes the order state machine.
type StatusGraphResponse struct {
	Statuses    []domain.OrderStatus                        `json:"statuses"`
	Transitions map[domain.OrderStatus][]domain.OrderStatus `json:"transitions"`
	Terminal    []domain.OrderStatus                        `json:"terminal"`
}

// --- Handlers ---

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.OrderFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := queryString(r, "status"); v != nil {
		status := domain.OrderStatus(*v)
		filter.Status = &status
	}

	orders, total, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(orders, total, params))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// CreateOrder handles POST /api/v1/orders. New orders start pending.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &service.CreateOrderInput{ProductIDs: req.ProductIDs})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// UpdateOrderStatus handles PUT /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}

	order, err := h.service.Transition(r.Context(), id.String(), domain.OrderStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// GetOrderHistory handles GET /api/v1/orders/{id}/history
func (h *OrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	changes, err := h.service.History(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: changes})
}

// ListOrderStatuses handles GET /api/v1/order-statuses. With ?from=<status>
// it returns only the statuses reachable from that one.
func (h *OrderHandler) ListOrderStatuses(w http.ResponseWriter, r *http.Request) {
	if from := queryString(r, "from"); from != nil {
		next, err := h.service.AllowedTransitions(domain.OrderStatus(*from))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: next})
		return
	}

	statuses := domain.ValidStatuses()
	terminal := make([]domain.OrderStatus, 0, len(statuses))
	for _, s := range statuses {
		if s.IsTerminal() {
			terminal = append(terminal, s)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: StatusGraphResponse{
		Statuses:    statuses,
		Transitions: h.service.StatusGraph(),
		Terminal:    terminal,
	}})
}
