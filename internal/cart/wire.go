//go:build wireinject
// +build wireinject

package cart

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tienda/tienda-backend/internal/cart/delivery/http"
	"github.com/tienda/tienda-backend/internal/cart/domain"
	"github.com/tienda/tienda-backend/internal/cart/repository"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	catalogrepo "github.com/tienda/tienda-backend/internal/catalog/repository"
)

// ProvideCartRepository provides the cart repository
func ProvideCartRepository(db *gorm.DB) domain.CartRepository {
	return repository.NewGormCartRepository(db)
}

// ProvideProductRepository provides the traced product repository
func ProvideProductRepository(db *gorm.DB) catalogdomain.ProductRepository {
	return catalogrepo.NewGormProductRepositoryWithTracing(db)
}

var RepositorySet = wire.NewSet(
	ProvideCartRepository,
	ProvideProductRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, pricing domain.Pricing) (*http.CartHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewCartHandler,
	)
	return nil, nil
}
