package command

import (
	"context"
	"fmt"

	"github.com/tienda/tienda-backend/internal/cart/domain"
)

// ClearCartCommand represents the command to empty a user's cart
type ClearCartCommand struct {
	UserID uint
}

// ClearCartHandler handles cart clearing
type ClearCartHandler struct {
	carts domain.CartRepository
}

func NewClearCartHandler(carts domain.CartRepository) *ClearCartHandler {
	return &ClearCartHandler{carts: carts}
}

// Handle empties the cart, keeping the cart row itself
func (h *ClearCartHandler) Handle(ctx context.Context, cmd ClearCartCommand) (*domain.Cart, error) {
	cart, err := h.carts.FindByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := h.carts.ClearItems(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	cart.Items = nil
	return cart, nil
}
