package query

import (
	"context"

	"github.com/tienda/tienda-backend/internal/order/domain"
)

// GetOrderQuery represents the query to fetch a single order
type GetOrderQuery struct {
	OrderID uint
	// UserID scopes the lookup to the requesting user. Zero with
	// Admin set allows cross-user access.
	UserID uint
	Admin  bool
}

// GetOrderByNumberQuery fetches an order by its public order number
type GetOrderByNumberQuery struct {
	OrderNumber string
	UserID      uint
	Admin       bool
}

// GetOrderHandler handles single order queries
type GetOrderHandler struct {
	orders domain.OrderRepository
}

func NewGetOrderHandler(orders domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{orders: orders}
}

// Handle returns the order, hiding other users' orders from non-admins
func (h *GetOrderHandler) Handle(ctx context.Context, q GetOrderQuery) (*domain.Order, error) {
	order, err := h.orders.FindByID(ctx, q.OrderID)
	if err != nil {
		return nil, err
	}
	if !q.Admin && order.UserID != q.UserID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// HandleByNumber returns the order matching the public order number
func (h *GetOrderHandler) HandleByNumber(ctx context.Context, q GetOrderByNumberQuery) (*domain.Order, error) {
	order, err := h.orders.FindByNumber(ctx, q.OrderNumber)
	if err != nil {
		return nil, err
	}
	if !q.Admin && order.UserID != q.UserID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
