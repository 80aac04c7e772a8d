package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable catalog entry. Stock lives on the product
// row and is only ever moved through the conditional repository operations.
type Product struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" gorm:"not null"`
	Description   string         `json:"description"`
	Price         float64        `json:"price" gorm:"not null"`
	Stock         int            `json:"stock" gorm:"not null;default:0"`
	Category      string         `json:"category"`
	SKU           string         `json:"sku" gorm:"uniqueIndex"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	RatingAverage float64        `json:"rating_average" gorm:"not null;default:0"`
	RatingCount   int            `json:"rating_count" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsAvailable reports whether the product can be added to a cart
func (p *Product) IsAvailable() bool {
	return p.IsActive && p.Stock > 0
}

// HasStock reports whether the product can cover the requested quantity
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrSKUExists          = errors.New("sku already exists")
)

// InsufficientStockError names the offending product and the quantity
// that is actually available.
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Product, error)
	FindAll(ctx context.Context, category string, limit, offset int) ([]Product, error)
	Count(ctx context.Context, category string) (int64, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uint) error

	// DecrementStock atomically subtracts quantity, failing with
	// *InsufficientStockError when the guard stock >= quantity does not hold.
	DecrementStock(ctx context.Context, id uint, quantity int) error
	// RestoreStock adds quantity back, compensating a cancelled order.
	RestoreStock(ctx context.Context, id uint, quantity int) error
	// UpdateRating persists the aggregated review summary.
	UpdateRating(ctx context.Context, id uint, average float64, count int) error
}
