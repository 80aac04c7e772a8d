//go:build wireinject
// +build wireinject

package order

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	cartrepo "github.com/tienda/tienda-backend/internal/cart/repository"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	catalogrepo "github.com/tienda/tienda-backend/internal/catalog/repository"
	"github.com/tienda/tienda-backend/internal/order/delivery/http"
	"github.com/tienda/tienda-backend/internal/order/domain"
	"github.com/tienda/tienda-backend/internal/order/repository"
	"github.com/tienda/tienda-backend/internal/order/usecase/command"
)

// ProvideOrderRepository provides the order repository
func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepository(db)
}

// ProvideCartRepository provides the cart repository
func ProvideCartRepository(db *gorm.DB) cartdomain.CartRepository {
	return cartrepo.NewGormCartRepository(db)
}

// ProvideProductRepository provides the traced product repository
func ProvideProductRepository(db *gorm.DB) catalogdomain.ProductRepository {
	return catalogrepo.NewGormProductRepositoryWithTracing(db)
}

var RepositorySet = wire.NewSet(
	ProvideOrderRepository,
	ProvideCartRepository,
	ProvideProductRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, pricing cartdomain.Pricing, events command.EventPublisher) (*http.OrderHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewOrderHandler,
	)
	return nil, nil
}
