package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/middleware"
	"github.com/tienda/tienda-backend/internal/order/domain"
	"github.com/tienda/tienda-backend/internal/order/usecase/command"
	"github.com/tienda/tienda-backend/internal/order/usecase/query"
)

// OrderHandler handles HTTP requests for orders using CQRS pattern
type OrderHandler struct {
	createHandler *command.CreateOrderHandler
	statusHandler *command.UpdateStatusHandler
	cancelHandler *command.CancelOrderHandler
	deleteHandler *command.DeleteOrderHandler

	getHandler   *query.GetOrderHandler
	listHandler  *query.ListOrdersHandler
	statsHandler *query.GetStatsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	orders domain.OrderRepository,
	carts cartdomain.CartRepository,
	products catalogdomain.ProductRepository,
	pricing cartdomain.Pricing,
	events command.EventPublisher,
) *OrderHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_requests_total",
			Help: "Total number of requests to the order module",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_request_duration_seconds",
			Help:    "Duration of order requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &OrderHandler{
		createHandler:  command.NewCreateOrderHandler(orders, carts, products, pricing, events),
		statusHandler:  command.NewUpdateStatusHandler(orders, events),
		cancelHandler:  command.NewCancelOrderHandler(orders, events),
		deleteHandler:  command.NewDeleteOrderHandler(orders),
		getHandler:     query.NewGetOrderHandler(orders),
		listHandler:    query.NewListOrdersHandler(orders),
		statsHandler:   query.NewGetStatsHandler(orders),
		requestCounter: requestCounter,
		requestLatency: requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	var req struct {
		DeliveryAddress domain.DeliveryAddress `json:"delivery_address"`
		PaymentMethod   string                 `json:"payment_method"`
		Notes           string                 `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	order, err := h.createHandler.Handle(r.Context(), command.CreateOrderCommand{
		UserID:          userID,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order placed",
		Data:    order,
	})
}

// ListMyOrders handles GET /api/orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.listHandler.Handle(r.Context(), query.ListOrdersQuery{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// ListAllOrders handles GET /api/orders/all (admin)
func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.listHandler.HandleAll(r.Context(), query.ListAllOrdersQuery{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// GetStats handles GET /api/orders/stats (admin)
func (h *OrderHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), query.GetStatsQuery{})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: stats})
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	order, err := h.getHandler.Handle(r.Context(), query.GetOrderQuery{
		OrderID: id,
		UserID:  userID,
		Admin:   middleware.IsAdmin(r.Context()),
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: order})
}

// GetOrderByNumber handles GET /api/orders/number/{orderNumber}
func (h *OrderHandler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	order, err := h.getHandler.HandleByNumber(r.Context(), query.GetOrderByNumberQuery{
		OrderNumber: mux.Vars(r)["orderNumber"],
		UserID:      userID,
		Admin:       middleware.IsAdmin(r.Context()),
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: order})
}

// CancelOrder handles PUT /api/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for cancellation
	_ = json.NewDecoder(r.Body).Decode(&req)

	order, err := h.cancelHandler.Handle(r.Context(), command.CancelOrderCommand{
		OrderID: id,
		UserID:  userID,
		Reason:  req.Reason,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order cancelled",
		Data:    order,
	})
}

// UpdateStatus handles PATCH /api/orders/{id}/status (admin)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	order, err := h.statusHandler.Handle(r.Context(), command.UpdateStatusCommand{
		OrderID: id,
		Status:  req.Status,
		Note:    req.Note,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order status updated",
		Data:    order,
	})
}

// DeleteOrder handles DELETE /api/orders/{id} (admin)
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteOrderCommand{OrderID: id}); err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Order deleted"})
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/orders", h.metrics("/api/orders", middleware.Auth(h.CreateOrder))).Methods("POST")
	router.HandleFunc("/api/orders", h.metrics("/api/orders", middleware.Auth(h.ListMyOrders))).Methods("GET")
	router.HandleFunc("/api/orders/all", h.metrics("/api/orders/all", middleware.Admin(h.ListAllOrders))).Methods("GET")
	router.HandleFunc("/api/orders/stats", h.metrics("/api/orders/stats", middleware.Admin(h.GetStats))).Methods("GET")
	router.HandleFunc("/api/orders/number/{orderNumber}", h.metrics("/api/orders/number/{orderNumber}", middleware.Auth(h.GetOrderByNumber))).Methods("GET")
	router.HandleFunc("/api/orders/{id}", h.metrics("/api/orders/{id}", middleware.Auth(h.GetOrder))).Methods("GET")
	router.HandleFunc("/api/orders/{id}", h.metrics("/api/orders/{id}", middleware.Admin(h.DeleteOrder))).Methods("DELETE")
	router.HandleFunc("/api/orders/{id}/cancel", h.metrics("/api/orders/{id}/cancel", middleware.Auth(h.CancelOrder))).Methods("PUT")
	router.HandleFunc("/api/orders/{id}/status", h.metrics("/api/orders/{id}/status", middleware.Admin(h.UpdateStatus))).Methods("PATCH")
}

func (h *OrderHandler) metrics(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func statusForError(err error) int {
	var stockErr *catalogdomain.InsufficientStockError
	var transitionErr *domain.InvalidTransitionError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrOrderNotPending),
		errors.Is(err, catalogdomain.ErrProductUnavailable):
		return http.StatusBadRequest
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.As(err, &transitionErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
