package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// transitions maps each status to the statuses reachable from it.
// Delivered and cancelled are terminal.
var transitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns every status from which the given status is reachable
func TransitionSources(to string) []string {
	var sources []string
	for from, targets := range transitions {
		for _, next := range targets {
			if next == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// IsValidStatus reports whether the status is one of the known order statuses
func IsValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// DeliveryAddress is embedded into the order row
type DeliveryAddress struct {
	Street     string `json:"street" gorm:"not null"`
	City       string `json:"city" gorm:"not null"`
	PostalCode string `json:"postal_code" gorm:"not null"`
	Country    string `json:"country" gorm:"not null"`
}

// OrderItem is a frozen snapshot of a product at the moment of ordering
type OrderItem struct {
	ID        uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint    `json:"order_id" gorm:"not null;index"`
	ProductID uint    `json:"product_id" gorm:"not null"`
	Name      string  `json:"name" gorm:"not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	UnitPrice float64 `json:"unit_price" gorm:"not null"`
	Subtotal  float64 `json:"subtotal" gorm:"not null"`
}

// TableName specifies the table name for OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// StatusChange records one step of the order status history
type StatusChange struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   uint      `json:"-" gorm:"not null;index"`
	Status    string    `json:"status" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
	Note      string    `json:"note,omitempty"`
}

// TableName specifies the table name for StatusChange model
func (StatusChange) TableName() string {
	return "order_status_history"
}

// Order represents a placed order with frozen item snapshots
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal        float64         `json:"subtotal" gorm:"not null"`
	Tax             float64         `json:"tax" gorm:"not null"`
	ShippingCost    float64         `json:"shipping_cost" gorm:"not null"`
	Total           float64         `json:"total" gorm:"not null"`
	Status          string          `json:"status" gorm:"not null;default:pending;index"`
	StatusHistory   []StatusChange  `json:"status_history" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveryAddress DeliveryAddress `json:"delivery_address" gorm:"embedded;embeddedPrefix:delivery_"`
	PaymentMethod   string          `json:"payment_method" gorm:"not null"`
	Notes           string          `json:"notes,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the order reached a final status
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// CanBeCancelled reports whether the user may still cancel the order
func (o *Order) CanBeCancelled() bool {
	return CanTransition(o.Status, StatusCancelled)
}

// OrderCounter backs the per-day order number sequence
type OrderCounter struct {
	Day string `gorm:"primaryKey;size:8"`
	Seq int64  `gorm:"not null"`
}

// TableName specifies the table name for OrderCounter model
func (OrderCounter) TableName() string {
	return "order_counters"
}

// Order errors
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyCart       = errors.New("cannot place an order from an empty cart")
	ErrForbidden       = errors.New("order belongs to another user")
	ErrOrderNotPending = errors.New("only pending orders can be deleted")
)

// InvalidTransitionError reports a status change the lifecycle does not allow
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

// OrderStats aggregates order counts and revenue per status. Revenue
// figures exclude cancelled orders.
type OrderStats struct {
	TotalOrders  int64            `json:"total_orders"`
	TotalRevenue float64          `json:"total_revenue"`
	AverageOrder float64          `json:"average_order"`
	ByStatus     map[string]int64 `json:"by_status"`
}

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Place persists the order, decrements stock for every line and
	// clears the source cart inside a single transaction.
	Place(ctx context.Context, order *Order, cartID uint) error
	FindByID(ctx context.Context, id uint) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindByUser(ctx context.Context, userID uint, limit, offset int) ([]Order, int64, error)
	FindAll(ctx context.Context, status string, limit, offset int) ([]Order, int64, error)
	// Transition moves the order to a new status when its current status
	// is one of the allowed sources, appending a history row. When
	// restock is true the order's items are returned to stock in the
	// same transaction.
	Transition(ctx context.Context, id uint, from []string, to, note string, restock bool) (*Order, error)
	// Delete removes a pending order and returns its reserved stock.
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*OrderStats, error)
	// UserHasDelivered reports whether the user has a delivered order
	// containing the given product.
	UserHasDelivered(ctx context.Context, userID, productID uint) (bool, error)
}
