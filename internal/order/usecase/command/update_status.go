package command

import (
	"context"
	"fmt"

	"github.com/tienda/tienda-backend/internal/order/domain"
	"github.com/tienda/tienda-backend/kafka"
	"github.com/tienda/tienda-backend/pkg/logger"
)

// UpdateStatusCommand represents an admin moving an order through its
// lifecycle
type UpdateStatusCommand struct {
	OrderID uint
	Status  string
	Note    string
}

// UpdateStatusHandler handles order status transitions
type UpdateStatusHandler struct {
	orders domain.OrderRepository
	events EventPublisher
}

func NewUpdateStatusHandler(orders domain.OrderRepository, events EventPublisher) *UpdateStatusHandler {
	return &UpdateStatusHandler{orders: orders, events: events}
}

// Handle applies the transition. The repository guards the update with
// the allowed source statuses, so a stale or concurrent request fails
// with InvalidTransitionError instead of applying twice.
func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.Order, error) {
	if !domain.IsValidStatus(cmd.Status) {
		return nil, fmt.Errorf("unknown order status %q", cmd.Status)
	}

	from := domain.TransitionSources(cmd.Status)
	if len(from) == 0 {
		return nil, fmt.Errorf("no order can transition to %q", cmd.Status)
	}

	restock := cmd.Status == domain.StatusCancelled

	order, err := h.orders.Transition(ctx, cmd.OrderID, from, cmd.Status, cmd.Note, restock)
	if err != nil {
		return nil, err
	}

	if restock && h.events != nil {
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
