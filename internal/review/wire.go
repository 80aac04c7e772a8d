//go:build wireinject
// +build wireinject

package review

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	catalogrepo "github.com/tienda/tienda-backend/internal/catalog/repository"
	orderdomain "github.com/tienda/tienda-backend/internal/order/domain"
	orderrepo "github.com/tienda/tienda-backend/internal/order/repository"
	"github.com/tienda/tienda-backend/internal/review/delivery/http"
	"github.com/tienda/tienda-backend/internal/review/domain"
	"github.com/tienda/tienda-backend/internal/review/repository"
	"github.com/tienda/tienda-backend/internal/review/usecase/command"
)

// ProvideReviewRepository provides the review repository
func ProvideReviewRepository(db *gorm.DB) domain.ReviewRepository {
	return repository.NewGormReviewRepository(db)
}

// ProvideProductRepository provides the traced product repository
func ProvideProductRepository(db *gorm.DB) catalogdomain.ProductRepository {
	return catalogrepo.NewGormProductRepositoryWithTracing(db)
}

// ProvideOrderRepository provides the order repository
func ProvideOrderRepository(db *gorm.DB) orderdomain.OrderRepository {
	return orderrepo.NewGormOrderRepository(db)
}

var RepositorySet = wire.NewSet(
	ProvideReviewRepository,
	ProvideProductRepository,
	ProvideOrderRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, events command.EventPublisher) (*http.ReviewHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewReviewHandler,
	)
	return nil, nil
}
