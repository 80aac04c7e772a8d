package command

import (
	"context"
	"time"

	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/review/domain"
)

// fakeReviewRepository keeps reviews in memory
type fakeReviewRepository struct {
	reviews map[uint]*domain.Review
	nextID  uint
}

func newFakeReviewRepository() *fakeReviewRepository {
	return &fakeReviewRepository{reviews: make(map[uint]*domain.Review), nextID: 1}
}

func (f *fakeReviewRepository) Create(_ context.Context, review *domain.Review) error {
	for _, r := range f.reviews {
		if r.UserID == review.UserID && r.ProductID == review.ProductID {
			return domain.ErrAlreadyReviewed
		}
	}
	review.ID = f.nextID
	f.nextID++
	review.CreatedAt = time.Now().UTC()
	copied := *review
	f.reviews[review.ID] = &copied
	return nil
}

func (f *fakeReviewRepository) FindByID(_ context.Context, id uint) (*domain.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	copied := *review
	return &copied, nil
}

func (f *fakeReviewRepository) FindByUserAndProduct(_ context.Context, userID, productID uint) (*domain.Review, error) {
	for _, r := range f.reviews {
		if r.UserID == userID && r.ProductID == productID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, domain.ErrReviewNotFound
}

func (f *fakeReviewRepository) FindByProduct(_ context.Context, productID uint, rating, _, _ int) ([]domain.Review, int64, error) {
	var out []domain.Review
	for _, r := range f.reviews {
		if r.ProductID == productID && (rating == 0 || r.Rating == rating) {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepository) Update(_ context.Context, review *domain.Review) error {
	if _, ok := f.reviews[review.ID]; !ok {
		return domain.ErrReviewNotFound
	}
	copied := *review
	f.reviews[review.ID] = &copied
	return nil
}

func (f *fakeReviewRepository) Delete(_ context.Context, id uint) error {
	if _, ok := f.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepository) AggregateForProduct(_ context.Context, productID uint) (*domain.RatingAggregate, error) {
	var sum, count int64
	for _, r := range f.reviews {
		if r.ProductID == productID {
			sum += int64(r.Rating)
			count++
		}
	}
	agg := &domain.RatingAggregate{Count: count}
	if count > 0 {
		agg.Average = float64(sum) / float64(count)
	}
	return agg, nil
}

// fakeProductRepository keeps products in memory
type fakeProductRepository struct {
	products map[uint]*catalogdomain.Product
}

func newFakeProductRepository(products ...*catalogdomain.Product) *fakeProductRepository {
	f := &fakeProductRepository{products: make(map[uint]*catalogdomain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepository) Create(_ context.Context, p *catalogdomain.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepository) FindByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepository) FindBySKU(_ context.Context, sku string) (*catalogdomain.Product, error) {
	for _, p := range f.products {
		if p.SKU == sku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, catalogdomain.ErrProductNotFound
}

func (f *fakeProductRepository) FindByIDs(_ context.Context, ids []uint) ([]catalogdomain.Product, error) {
	var out []catalogdomain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepository) FindAll(_ context.Context, _ string, _, _ int) ([]catalogdomain.Product, error) {
	var out []catalogdomain.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepository) Count(_ context.Context, _ string) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeProductRepository) Update(_ context.Context, p *catalogdomain.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepository) Delete(_ context.Context, id uint) error {
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepository) DecrementStock(_ context.Context, id uint, quantity int) error {
	p, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	if p.Stock < quantity {
		return &catalogdomain.InsufficientStockError{ProductID: id, Name: p.Name, Requested: quantity, Available: p.Stock}
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeProductRepository) RestoreStock(_ context.Context, id uint, quantity int) error {
	p, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	p.Stock += quantity
	return nil
}

func (f *fakeProductRepository) UpdateRating(_ context.Context, id uint, average float64, count int) error {
	p, ok := f.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	p.RatingAverage = average
	p.RatingCount = count
	return nil
}
