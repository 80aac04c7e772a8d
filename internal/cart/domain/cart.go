package domain

import (
	"context"
	"errors"
	"time"
)

// Cart holds a user's current selection. Exactly one cart exists per user
// and it is emptied, never deleted, when an order is placed.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;uniqueIndex"`
	Items     []CartItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one product line in a cart. UnitPrice is a snapshot of the
// product price taken when the line was last touched.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    uint      `json:"-" gorm:"not null;uniqueIndex:idx_cart_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_product"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice float64   `json:"unit_price" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal is the line total for this item
func (i CartItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Item returns the line for the given product, or nil
func (c *Cart) Item(productID uint) *CartItem {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			return &c.Items[idx]
		}
	}
	return nil
}

// Subtotal sums all line totals
func (c *Cart) Subtotal() float64 {
	var subtotal float64
	for _, item := range c.Items {
		subtotal += item.Subtotal()
	}
	return subtotal
}

// TotalItems is the total unit count across all lines
func (c *Cart) TotalItems() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("product not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// CartRepository defines the contract for cart data access
type CartRepository interface {
	// FindByUserID loads the user's cart with its items.
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)
	Create(ctx context.Context, cart *Cart) error
	// SaveItem inserts or updates a single line.
	SaveItem(ctx context.Context, item *CartItem) error
	// DeleteItem removes one line, failing with ErrItemNotFound if absent.
	DeleteItem(ctx context.Context, cartID, productID uint) error
	// ReplaceItems swaps the cart's lines wholesale (pruning).
	ReplaceItems(ctx context.Context, cartID uint, items []CartItem) error
	ClearItems(ctx context.Context, cartID uint) error
}
