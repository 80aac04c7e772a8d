package command

import (
	"context"

	"github.com/tienda/tienda-backend/internal/order/domain"
	"github.com/tienda/tienda-backend/kafka"
	"github.com/tienda/tienda-backend/pkg/logger"
)

// CancelOrderCommand represents a user cancelling their own order
type CancelOrderCommand struct {
	OrderID uint
	UserID  uint
	Reason  string
}

// CancelOrderHandler handles user-initiated cancellation
type CancelOrderHandler struct {
	orders domain.OrderRepository
	events EventPublisher
}

func NewCancelOrderHandler(orders domain.OrderRepository, events EventPublisher) *CancelOrderHandler {
	return &CancelOrderHandler{orders: orders, events: events}
}

// Handle cancels the order and restores its stock. Only pending and
// confirmed orders can be cancelled, and restocking happens at most
// once because the repository guards the transition.
func (h *CancelOrderHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	existing, err := h.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != cmd.UserID {
		return nil, domain.ErrForbidden
	}

	note := cmd.Reason
	if note == "" {
		note = "Cancelled by customer"
	}

	order, err := h.orders.Transition(ctx, cmd.OrderID,
		domain.TransitionSources(domain.StatusCancelled),
		domain.StatusCancelled, note, true)
	if err != nil {
		return nil, err
	}

	if h.events != nil {
		err := h.events.PublishOrderCancelled(ctx, kafka.OrderCancelledEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
		})
		if err != nil {
			logger.Error(ctx).Err(err).Uint("order_id", order.ID).Msg("Failed to publish order cancelled event")
		}
	}

	return order, nil
}
