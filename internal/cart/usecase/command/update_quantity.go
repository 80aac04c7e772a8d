package command

import (
	"context"
	"fmt"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
)

// UpdateQuantityCommand sets a cart line to an absolute quantity.
// Zero is not a removal shorthand, removal is its own operation.
type UpdateQuantityCommand struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// UpdateQuantityHandler handles cart quantity changes
type UpdateQuantityHandler struct {
	carts    cartdomain.CartRepository
	products catalogdomain.ProductRepository
}

func NewUpdateQuantityHandler(carts cartdomain.CartRepository, products catalogdomain.ProductRepository) *UpdateQuantityHandler {
	return &UpdateQuantityHandler{carts: carts, products: products}
}

// Handle executes the update quantity command
func (h *UpdateQuantityHandler) Handle(ctx context.Context, cmd UpdateQuantityCommand) (*cartdomain.Cart, error) {
	if cmd.Quantity < 1 {
		return nil, cartdomain.ErrInvalidQuantity
	}

	product, err := h.products.FindByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%q: %w", product.Name, catalogdomain.ErrProductUnavailable)
	}
	if !product.HasStock(cmd.Quantity) {
		return nil, &catalogdomain.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: cmd.Quantity,
			Available: product.Stock,
		}
	}

	cart, err := h.carts.FindByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	item := cart.Item(cmd.ProductID)
	if item == nil {
		return nil, cartdomain.ErrItemNotFound
	}

	item.Quantity = cmd.Quantity
	item.UnitPrice = product.Price
	if err := h.carts.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return h.carts.FindByUserID(ctx, cmd.UserID)
}
