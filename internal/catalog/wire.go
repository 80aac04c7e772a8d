//go:build wireinject
// +build wireinject

package catalog

import (
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tienda/tienda-backend/internal/catalog/delivery/http"
	"github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/catalog/repository"
)

// ProvideProductRepository provides the traced product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepositoryWithTracing(db)
}

var RepositorySet = wire.NewSet(
	ProvideProductRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) (*http.ProductHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewCache,
		http.NewProductHandler,
	)
	return nil, nil
}
