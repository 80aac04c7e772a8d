package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/catalog/usecase/command"
	"github.com/tienda/tienda-backend/internal/catalog/usecase/query"
	"github.com/tienda/tienda-backend/internal/middleware"
	"github.com/tienda/tienda-backend/pkg/logger"
)

// ProductHandler handles HTTP requests for the catalog using CQRS pattern
type ProductHandler struct {
	createHandler      *command.CreateProductHandler
	updateHandler      *command.UpdateProductHandler
	deleteHandler      *command.DeleteProductHandler
	updateStockHandler *command.UpdateStockHandler

	getHandler  *query.GetProductHandler
	listHandler *query.ListProductsHandler

	cache *Cache

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewProductHandler creates a new catalog handler
func NewProductHandler(repo domain.ProductRepository, cache *Cache) *ProductHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of requests to the catalog module",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &ProductHandler{
		createHandler:      command.NewCreateProductHandler(repo),
		updateHandler:      command.NewUpdateProductHandler(repo),
		deleteHandler:      command.NewDeleteProductHandler(repo),
		updateStockHandler: command.NewUpdateStockHandler(repo),
		getHandler:         query.NewGetProductHandler(repo),
		listHandler:        query.NewListProductsHandler(repo),
		cache:              cache,
		requestCounter:     requestCounter,
		requestLatency:     requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.listHandler.Handle(r.Context(), query.ListProductsQuery{
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list products")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list products"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	product, err := h.getHandler.Handle(r.Context(), query.GetProductQuery{ID: id})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// CreateProduct handles POST /api/products (admin)
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Category    string  `json:"category"`
		SKU         string  `json:"sku"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := h.createHandler.Handle(r.Context(), command.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKU:         req.SKU,
		IsActive:    isActive,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	h.cache.Invalidate(r.Context())
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Product created successfully", Data: product})
}

// UpdateProduct handles PUT /api/products/{id} (admin)
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
		Category    string   `json:"category"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	product, err := h.updateHandler.Handle(r.Context(), command.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	h.cache.Invalidate(r.Context())
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Product updated successfully", Data: product})
}

// UpdateStock handles PATCH /api/products/{id}/stock (admin)
func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	var req struct {
		Stock int `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	product, err := h.updateStockHandler.Handle(r.Context(), command.UpdateStockCommand{
		ProductID: id,
		Stock:     req.Stock,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	h.cache.Invalidate(r.Context())
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Stock updated successfully", Data: product})
}

// DeleteProduct handles DELETE /api/products/{id} (admin)
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteProductCommand{ID: id}); err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	h.cache.Invalidate(r.Context())
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Product deleted successfully"})
}

// RegisterRoutes registers all catalog routes
func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/products", h.metrics("/api/products", h.cache.Middleware(h.ListProducts))).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.metrics("/api/products/{id}", h.cache.Middleware(h.GetProduct))).Methods("GET")

	router.HandleFunc("/api/products", h.metrics("/api/products", middleware.Admin(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.metrics("/api/products/{id}", middleware.Admin(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/products/{id}/stock", h.metrics("/api/products/{id}/stock", middleware.Admin(h.UpdateStock))).Methods("PATCH")
	router.HandleFunc("/api/products/{id}", h.metrics("/api/products/{id}", middleware.Admin(h.DeleteProduct))).Methods("DELETE")
}

func (h *ProductHandler) metrics(endpoint string, next http.HandlerFunc) http.HandlerFunc {
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
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSKUExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrProductUnavailable), errors.As(err, &stockErr):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
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
