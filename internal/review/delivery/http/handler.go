package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/middleware"
	orderdomain "github.com/tienda/tienda-backend/internal/order/domain"
	"github.com/tienda/tienda-backend/internal/review/domain"
	"github.com/tienda/tienda-backend/internal/review/usecase/command"
	"github.com/tienda/tienda-backend/internal/review/usecase/query"
)

// ReviewHandler handles HTTP requests for reviews using CQRS pattern
type ReviewHandler struct {
	submitHandler *command.SubmitReviewHandler
	updateHandler *command.UpdateReviewHandler
	deleteHandler *command.DeleteReviewHandler

	listHandler *query.ListReviewsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(
	reviews domain.ReviewRepository,
	products catalogdomain.ProductRepository,
	orders orderdomain.OrderRepository,
	events command.EventPublisher,
) *ReviewHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_requests_total",
			Help: "Total number of requests to the review module",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_request_duration_seconds",
			Help:    "Duration of review requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &ReviewHandler{
		submitHandler:  command.NewSubmitReviewHandler(reviews, products, orders, events),
		updateHandler:  command.NewUpdateReviewHandler(reviews, products),
		deleteHandler:  command.NewDeleteReviewHandler(reviews, products),
		listHandler:    query.NewListReviewsHandler(reviews, products),
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

// ListReviews handles GET /api/products/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	rating, _ := strconv.Atoi(r.URL.Query().Get("rating"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.listHandler.Handle(r.Context(), query.ListReviewsQuery{
		ProductID: productID,
		Rating:    rating,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// SubmitReview handles POST /api/products/{id}/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	productID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Title   string `json:"title"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	review, err := h.submitHandler.Handle(r.Context(), command.SubmitReviewCommand{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Review submitted",
		Data:    review,
	})
}

// UpdateReview handles PUT /api/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	reviewID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid review ID"})
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Title   string `json:"title"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	review, err := h.updateHandler.Handle(r.Context(), command.UpdateReviewCommand{
		ReviewID: reviewID,
		UserID:   userID,
		Rating:   req.Rating,
		Title:    req.Title,
		Comment:  req.Comment,
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Review updated",
		Data:    review,
	})
}

// DeleteReview handles DELETE /api/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "User not found in context"})
		return
	}

	reviewID, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid review ID"})
		return
	}

	err = h.deleteHandler.Handle(r.Context(), command.DeleteReviewCommand{
		ReviewID: reviewID,
		UserID:   userID,
		Admin:    middleware.IsAdmin(r.Context()),
	})
	if err != nil {
		respondJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Review deleted"})
}

// RegisterRoutes registers all review routes
func (h *ReviewHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/products/{id}/reviews", h.metrics("/api/products/{id}/reviews", h.ListReviews)).Methods("GET")
	router.HandleFunc("/api/products/{id}/reviews", h.metrics("/api/products/{id}/reviews", middleware.Auth(h.SubmitReview))).Methods("POST")
	router.HandleFunc("/api/reviews/{id}", h.metrics("/api/reviews/{id}", middleware.Auth(h.UpdateReview))).Methods("PUT")
	router.HandleFunc("/api/reviews/{id}", h.metrics("/api/reviews/{id}", middleware.Auth(h.DeleteReview))).Methods("DELETE")
}

func (h *ReviewHandler) metrics(endpoint string, next http.HandlerFunc) http.HandlerFunc {
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
	switch {
	case errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrEditWindowClosed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotReviewOwner):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	return uint(id), err
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
