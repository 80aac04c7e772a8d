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
	"github.com/tienda/tienda-backend/internal/cart/usecase/command"
	"github.com/tienda/tienda-backend/internal/cart/usecase/query"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/middleware"
)

// CartHandler handles HTTP requests for the cart using CQRS pattern
type CartHandler struct {
	addHandler    *command.AddItemHandler
	updateHandler *command.UpdateQuantityHandler
	removeHandler *command.RemoveItemHandler
	clearHandler  *command.ClearCartHandler

	getHandler   *query.GetCartHandler
	checkHandler *query.CheckAvailabilityHandler

	pricing cartdomain.Pricing

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts cartdomain.CartRepository, products catalogdomain.ProductRepository, pricing cartdomain.Pricing) *CartHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_requests_total",
			Help: "Total number of requests to the cart module",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cart_request_duration_seconds",
			Help:    "Duration of cart requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &CartHandler{
		addHandler:     command.NewAddItemHandler(carts, products),
		updateHandler:  command.NewUpdateQuantityHandler(carts, products),
		removeHandler:  command.NewRemoveItemHandler(carts),
		clearHandler:   command.NewClearCartHandler(carts),
		getHandler:     query.NewGetCartHandler(carts, products, pricing),
		checkHandler:   query.NewCheckAvailabilityHandler(carts, products),
		pricing:        pricing,
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

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	view, err := h.getHandler.Handle(r.Context(), query.GetCartQuery{UserID: userID})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: view})
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	cart, err := h.addHandler.Handle(r.Context(), command.AddItemCommand{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product added to cart",
		Data:    h.cartView(cart),
	})
}

// UpdateQuantity handles PUT /api/cart/items/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	productID, err := pathProductID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	cart, err := h.updateHandler.Handle(r.Context(), command.UpdateQuantityCommand{
		UserID:    userID,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Quantity updated",
		Data:    h.cartView(cart),
	})
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	productID, err := pathProductID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	cart, err := h.removeHandler.Handle(r.Context(), command.RemoveItemCommand{
		UserID:    userID,
		ProductID: productID,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product removed from cart",
		Data:    h.cartView(cart),
	})
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	cart, err := h.clearHandler.Handle(r.Context(), command.ClearCartCommand{UserID: userID})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Cart cleared",
		Data:    h.cartView(cart),
	})
}

// CheckAvailability handles GET /api/cart/availability
func (h *CartHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	report, err := h.checkHandler.Handle(r.Context(), query.CheckAvailabilityQuery{UserID: userID})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: report})
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/cart", h.metrics("/api/cart", middleware.Auth(h.GetCart))).Methods("GET")
	router.HandleFunc("/api/cart", h.metrics("/api/cart", middleware.Auth(h.ClearCart))).Methods("DELETE")
	router.HandleFunc("/api/cart/items", h.metrics("/api/cart/items", middleware.Auth(h.AddItem))).Methods("POST")
	router.HandleFunc("/api/cart/items/{productId}", h.metrics("/api/cart/items/{productId}", middleware.Auth(h.UpdateQuantity))).Methods("PUT")
	router.HandleFunc("/api/cart/items/{productId}", h.metrics("/api/cart/items/{productId}", middleware.Auth(h.RemoveItem))).Methods("DELETE")
	router.HandleFunc("/api/cart/availability", h.metrics("/api/cart/availability", middleware.Auth(h.CheckAvailability))).Methods("GET")
}

func (h *CartHandler) cartView(cart *cartdomain.Cart) *query.CartView {
	return &query.CartView{
		Cart:       cart,
		Totals:     h.pricing.Compute(cart.Subtotal()),
		TotalItems: cart.TotalItems(),
	}
}

func (h *CartHandler) metrics(endpoint string, next http.HandlerFunc) http.HandlerFunc {
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
	switch {
	case errors.Is(err, cartdomain.ErrCartNotFound),
		errors.Is(err, cartdomain.ErrItemNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, cartdomain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, catalogdomain.ErrProductUnavailable), errors.As(err, &stockErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathProductID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["productId"], 10, 32)
	return uint(id), err
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
