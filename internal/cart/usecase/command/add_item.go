package command

import (
	"context"
	"errors"
	"fmt"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
)

// AddItemCommand represents the command to add a product to a user's cart
type AddItemCommand struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// AddItemHandler handles adding products to carts
type AddItemHandler struct {
	carts    cartdomain.CartRepository
	products catalogdomain.ProductRepository
}

func NewAddItemHandler(carts cartdomain.CartRepository, products catalogdomain.ProductRepository) *AddItemHandler {
	return &AddItemHandler{carts: carts, products: products}
}

// Handle merges the product into an existing line (summing quantities and
// refreshing the price snapshot) or appends a new line. The stock check
// covers the merged quantity, not just the increment.
func (h *AddItemHandler) Handle(ctx context.Context, cmd AddItemCommand) (*cartdomain.Cart, error) {
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

	cart, err := h.carts.FindByUserID(ctx, cmd.UserID)
	if errors.Is(err, cartdomain.ErrCartNotFound) {
		cart = &cartdomain.Cart{UserID: cmd.UserID}
		if err := h.carts.Create(ctx, cart); err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	newQuantity := cmd.Quantity
	if existing := cart.Item(cmd.ProductID); existing != nil {
		newQuantity += existing.Quantity
	}

	if !product.HasStock(newQuantity) {
		return nil, &catalogdomain.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: newQuantity,
			Available: product.Stock,
		}
	}

	if existing := cart.Item(cmd.ProductID); existing != nil {
		existing.Quantity = newQuantity
		existing.UnitPrice = product.Price
		if err := h.carts.SaveItem(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		item := cartdomain.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  cmd.Quantity,
			UnitPrice: product.Price,
		}
		if err := h.carts.SaveItem(ctx, &item); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	return h.carts.FindByUserID(ctx, cmd.UserID)
}
