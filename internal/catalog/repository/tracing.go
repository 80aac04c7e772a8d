package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/tienda/tienda-backend/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// GormProductRepositoryWithTracing wraps GormProductRepository with tracing
// on the stock hot path.
type GormProductRepositoryWithTracing struct {
	*GormProductRepository
}

// NewGormProductRepositoryWithTracing creates a new repository with tracing
func NewGormProductRepositoryWithTracing(db *gorm.DB) *GormProductRepositoryWithTracing {
	return &GormProductRepositoryWithTracing{
		GormProductRepository: NewGormProductRepository(db),
	}
}

func (r *GormProductRepositoryWithTracing) DecrementStock(ctx context.Context, id uint, quantity int) error {
	ctx, span := tracer.Start(ctx, "repository.DecrementStock")
	span.SetAttributes(
		attribute.Int("product.id", int(id)),
		attribute.Int("stock.delta", -quantity),
	)
	defer span.End()

	err := r.GormProductRepository.DecrementStock(ctx, id, quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (r *GormProductRepositoryWithTracing) RestoreStock(ctx context.Context, id uint, quantity int) error {
	ctx, span := tracer.Start(ctx, "repository.RestoreStock")
	span.SetAttributes(
		attribute.Int("product.id", int(id)),
		attribute.Int("stock.delta", quantity),
	)
	defer span.End()

	err := r.GormProductRepository.RestoreStock(ctx, id, quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (r *GormProductRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID")
	span.SetAttributes(attribute.Int("product.id", int(id)))
	defer span.End()

	product, err := r.GormProductRepository.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("product.is_active", product.IsActive),
		attribute.Int("product.stock", product.Stock),
	)
	return product, nil
}
