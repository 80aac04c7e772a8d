package command

import (
	"context"

	"github.com/tienda/tienda-backend/internal/order/domain"
)

// DeleteOrderCommand represents an admin removing an order record
type DeleteOrderCommand struct {
	OrderID uint
}

// DeleteOrderHandler handles order deletion
type DeleteOrderHandler struct {
	orders domain.OrderRepository
}

func NewDeleteOrderHandler(orders domain.OrderRepository) *DeleteOrderHandler {
	return &DeleteOrderHandler{orders: orders}
}

// Handle deletes the order. The repository only deletes pending
// orders and returns their reserved stock.
func (h *DeleteOrderHandler) Handle(ctx context.Context, cmd DeleteOrderCommand) error {
	return h.orders.Delete(ctx, cmd.OrderID)
}
