package command

import (
	"context"
	"errors"
	"fmt"
	"math"

	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	orderdomain "github.com/tienda/tienda-backend/internal/order/domain"
	"github.com/tienda/tienda-backend/internal/review/domain"
	"github.com/tienda/tienda-backend/kafka"
	"github.com/tienda/tienda-backend/pkg/logger"
)

// EventPublisher publishes review events. A nil publisher disables
// event publishing.
type EventPublisher interface {
	PublishReviewSubmitted(ctx context.Context, event kafka.ReviewSubmittedEvent) error
}

// SubmitReviewCommand represents the command to review a product
type SubmitReviewCommand struct {
	UserID    uint
	ProductID uint
	Rating    int
	Title     string
	Comment   string
}

// SubmitReviewHandler handles review submission
type SubmitReviewHandler struct {
	reviews  domain.ReviewRepository
	products catalogdomain.ProductRepository
	orders   orderdomain.OrderRepository
	events   EventPublisher
}

func NewSubmitReviewHandler(reviews domain.ReviewRepository, products catalogdomain.ProductRepository, orders orderdomain.OrderRepository, events EventPublisher) *SubmitReviewHandler {
	return &SubmitReviewHandler{reviews: reviews, products: products, orders: orders, events: events}
}

// Handle creates the review and folds it into the product's rating
// summary. Purchase verification only sets a flag and never blocks
// submission.
func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*domain.Review, error) {
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	if _, err := h.products.FindByID(ctx, cmd.ProductID); err != nil {
		return nil, err
	}

	if _, err := h.reviews.FindByUserAndProduct(ctx, cmd.UserID, cmd.ProductID); err == nil {
		return nil, domain.ErrAlreadyReviewed
	} else if !errors.Is(err, domain.ErrReviewNotFound) {
		return nil, err
	}

	verified, err := h.orders.UserHasDelivered(ctx, cmd.UserID, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}

	review := &domain.Review{
		ProductID:        cmd.ProductID,
		UserID:           cmd.UserID,
		Rating:           cmd.Rating,
		Title:            cmd.Title,
		Comment:          cmd.Comment,
		VerifiedPurchase: verified,
	}

	if err := h.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := recomputeRating(ctx, h.reviews, h.products, cmd.ProductID); err != nil {
		return nil, err
	}

	if h.events != nil {
		err := h.events.PublishReviewSubmitted(ctx, kafka.ReviewSubmittedEvent{
			ReviewID:  review.ID,
			ProductID: review.ProductID,
			UserID:    review.UserID,
			Rating:    review.Rating,
		})
		if err != nil {
			logger.Error(ctx).Err(err).Uint("review_id", review.ID).Msg("Failed to publish review submitted event")
		}
	}

	return review, nil
}

// recomputeRating rewrites the product's rating summary from the live
// reviews. The average is stored rounded to one decimal.
func recomputeRating(ctx context.Context, reviews domain.ReviewRepository, products catalogdomain.ProductRepository, productID uint) error {
	agg, err := reviews.AggregateForProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	average := math.Round(agg.Average*10) / 10
	if agg.Count == 0 {
		average = 0
	}

	if err := products.UpdateRating(ctx, productID, average, int(agg.Count)); err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}
	return nil
}
