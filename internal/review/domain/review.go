package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Review represents a product review. A user may review a product at
// most once, enforced by the composite unique index.
type Review struct {
	ID               uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID        uint           `json:"product_id" gorm:"not null;uniqueIndex:idx_user_product"`
	UserID           uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_product"`
	Rating           int            `json:"rating" gorm:"not null"`
	Title            string         `json:"title"`
	Comment          string         `json:"comment"`
	VerifiedPurchase bool           `json:"verified_purchase" gorm:"not null;default:false"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for Review model
func (Review) TableName() string {
	return "reviews"
}

// EditWindow is how long a review stays editable after creation
const EditWindow = 24 * time.Hour

// Editable reports whether the review is still inside its edit window
func (r *Review) Editable(now time.Time) bool {
	return now.Sub(r.CreatedAt) <= EditWindow
}

// RatingAggregate is the recomputed rating summary for a product
type RatingAggregate struct {
	Average float64
	Count   int64
}

// Review errors
var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrAlreadyReviewed  = errors.New("product already reviewed by this user")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrEditWindowClosed = errors.New("review can no longer be edited")
	ErrNotReviewOwner   = errors.New("review belongs to another user")
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	FindByID(ctx context.Context, id uint) (*Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uint) (*Review, error)
	// FindByProduct pages a product's reviews, newest first. A rating
	// of 1..5 filters to that rating, 0 returns all.
	FindByProduct(ctx context.Context, productID uint, rating, limit, offset int) ([]Review, int64, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id uint) error
	// AggregateForProduct recomputes the average rating and count over
	// the product's live reviews.
	AggregateForProduct(ctx context.Context, productID uint) (*RatingAggregate, error)
}
