package command

import (
	"context"

	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/review/domain"
)

// DeleteReviewCommand represents the command to remove a review
type DeleteReviewCommand struct {
	ReviewID uint
	UserID   uint
	Admin    bool
}

// DeleteReviewHandler handles review removal
type DeleteReviewHandler struct {
	reviews  domain.ReviewRepository
	products catalogdomain.ProductRepository
}

func NewDeleteReviewHandler(reviews domain.ReviewRepository, products catalogdomain.ProductRepository) *DeleteReviewHandler {
	return &DeleteReviewHandler{reviews: reviews, products: products}
}

// Handle removes the review and recomputes the product's rating
// summary. Deleting the last review resets the summary to zero.
func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) error {
	review, err := h.reviews.FindByID(ctx, cmd.ReviewID)
	if err != nil {
		return err
	}
	if !cmd.Admin && review.UserID != cmd.UserID {
		return domain.ErrNotReviewOwner
	}

	if err := h.reviews.Delete(ctx, cmd.ReviewID); err != nil {
		return err
	}

	return recomputeRating(ctx, h.reviews, h.products, review.ProductID)
}
