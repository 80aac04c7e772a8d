package command

import (
	"context"

	"github.com/tienda/tienda-backend/internal/cart/domain"
)

// RemoveItemCommand represents the command to remove one cart line
type RemoveItemCommand struct {
	UserID    uint
	ProductID uint
}

// RemoveItemHandler handles cart line removal
type RemoveItemHandler struct {
	carts domain.CartRepository
}

func NewRemoveItemHandler(carts domain.CartRepository) *RemoveItemHandler {
	return &RemoveItemHandler{carts: carts}
}

// Handle removes the line unconditionally, regardless of product state
func (h *RemoveItemHandler) Handle(ctx context.Context, cmd RemoveItemCommand) (*domain.Cart, error) {
	cart, err := h.carts.FindByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := h.carts.DeleteItem(ctx, cart.ID, cmd.ProductID); err != nil {
		return nil, err
	}

	return h.carts.FindByUserID(ctx, cmd.UserID)
}
