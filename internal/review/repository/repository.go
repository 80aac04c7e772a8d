package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tienda/tienda-backend/internal/review/domain"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GORM-based review repository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a new review
func (r *GormReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// FindByID retrieves a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uint) (*domain.Review, error) {
	var review domain.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// FindByUserAndProduct retrieves a user's review of a product
func (r *GormReviewRepository) FindByUserAndProduct(ctx context.Context, userID, productID uint) (*domain.Review, error) {
	var review domain.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// FindByProduct retrieves a product's reviews, newest first, optionally
// filtered to a single rating
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID uint, rating, limit, offset int) ([]domain.Review, int64, error) {
	var reviews []domain.Review
	var total int64

	base := r.db.WithContext(ctx).Model(&domain.Review{}).Where("product_id = ?", productID)
	if rating > 0 {
		base = base.Where("rating = ?", rating)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if rating > 0 {
		query = query.Where("rating = ?", rating)
	}
	err := query.
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// Update persists changes to a review
func (r *GormReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	if err := r.db.WithContext(ctx).Save(review).Error; err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

// Delete soft-deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Review{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// AggregateForProduct recomputes the product's rating summary. A
// product with no reviews aggregates to zero average and zero count.
func (r *GormReviewRepository) AggregateForProduct(ctx context.Context, productID uint) (*domain.RatingAggregate, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0) as average, COUNT(*) as count").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domain.RatingAggregate{Average: row.Average, Count: row.Count}, nil
}
