package command

import (
	"context"
	"time"

	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/review/domain"
)

// UpdateReviewCommand represents the command to edit an existing review
type UpdateReviewCommand struct {
	ReviewID uint
	UserID   uint
	Rating   int
	Title    string
	Comment  string
}

// UpdateReviewHandler handles review edits
type UpdateReviewHandler struct {
	reviews  domain.ReviewRepository
	products catalogdomain.ProductRepository
	now      func() time.Time
}

func NewUpdateReviewHandler(reviews domain.ReviewRepository, products catalogdomain.ProductRepository) *UpdateReviewHandler {
	return &UpdateReviewHandler{reviews: reviews, products: products, now: time.Now}
}

// Handle edits the review. Only the author may edit, and only inside
// the edit window.
func (h *UpdateReviewHandler) Handle(ctx context.Context, cmd UpdateReviewCommand) (*domain.Review, error) {
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	review, err := h.reviews.FindByID(ctx, cmd.ReviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != cmd.UserID {
		return nil, domain.ErrNotReviewOwner
	}
	if !review.Editable(h.now()) {
		return nil, domain.ErrEditWindowClosed
	}

	review.Rating = cmd.Rating
	review.Title = cmd.Title
	review.Comment = cmd.Comment

	if err := h.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	if err := recomputeRating(ctx, h.reviews, h.products, review.ProductID); err != nil {
		return nil, err
	}

	return review, nil
}
