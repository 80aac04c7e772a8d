package query

import (
	"context"

	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/review/domain"
)

// ListReviewsQuery lists a product's reviews. Rating narrows the page
// to a single star value when set to 1..5.
type ListReviewsQuery struct {
	ProductID uint
	Rating    int
	Limit     int
	Offset    int
}

// ListReviewsResult bundles a page of reviews with the product's
// rating summary
type ListReviewsResult struct {
	Reviews       []domain.Review `json:"reviews"`
	Total         int64           `json:"total"`
	RatingAverage float64         `json:"rating_average"`
	RatingCount   int             `json:"rating_count"`
}

// ListReviewsHandler handles review listing queries
type ListReviewsHandler struct {
	reviews  domain.ReviewRepository
	products catalogdomain.ProductRepository
}

func NewListReviewsHandler(reviews domain.ReviewRepository, products catalogdomain.ProductRepository) *ListReviewsHandler {
	return &ListReviewsHandler{reviews: reviews, products: products}
}

// Handle returns the product's reviews, newest first
func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) (*ListReviewsResult, error) {
	product, err := h.products.FindByID(ctx, q.ProductID)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rating := q.Rating
	if rating < 0 || rating > 5 {
		rating = 0
	}

	reviews, total, err := h.reviews.FindByProduct(ctx, q.ProductID, rating, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListReviewsResult{
		Reviews:       reviews,
		Total:         total,
		RatingAverage: product.RatingAverage,
		RatingCount:   product.RatingCount,
	}, nil
}
