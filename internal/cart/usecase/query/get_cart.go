package query

import (
	"context"
	"errors"
	"fmt"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
)

// GetCartQuery represents the query for a user's cart
type GetCartQuery struct {
	UserID uint
}

// CartView is a cart with its derived totals. Totals are computed per read,
// never stored.
type CartView struct {
	Cart       *cartdomain.Cart   `json:"cart"`
	Totals     cartdomain.Totals  `json:"totals"`
	TotalItems int                `json:"total_items"`
}

// GetCartHandler returns the user's cart, creating an empty one on first
// access and pruning lines whose product has gone inactive or out of stock.
type GetCartHandler struct {
	carts    cartdomain.CartRepository
	products catalogdomain.ProductRepository
	pricing  cartdomain.Pricing
}

func NewGetCartHandler(carts cartdomain.CartRepository, products catalogdomain.ProductRepository, pricing cartdomain.Pricing) *GetCartHandler {
	return &GetCartHandler{carts: carts, products: products, pricing: pricing}
}

// Handle executes the get cart query
func (h *GetCartHandler) Handle(ctx context.Context, q GetCartQuery) (*CartView, error) {
	cart, err := h.carts.FindByUserID(ctx, q.UserID)
	if errors.Is(err, cartdomain.ErrCartNotFound) {
		cart = &cartdomain.Cart{UserID: q.UserID}
		if err := h.carts.Create(ctx, cart); err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	pruned, err := h.pruneDeadItems(ctx, cart)
	if err != nil {
		return nil, err
	}

	return &CartView{
		Cart:       pruned,
		Totals:     h.pricing.Compute(pruned.Subtotal()),
		TotalItems: pruned.TotalItems(),
	}, nil
}

// pruneDeadItems drops lines whose product was deleted, deactivated or has
// zero stock, persisting the cart only when something actually changed.
func (h *GetCartHandler) pruneDeadItems(ctx context.Context, cart *cartdomain.Cart) (*cartdomain.Cart, error) {
	if cart.IsEmpty() {
		return cart, nil
	}

	ids := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := h.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	byID := make(map[uint]*catalogdomain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	kept := make([]cartdomain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if ok && product.IsAvailable() {
			kept = append(kept, item)
		}
	}

	if len(kept) == len(cart.Items) {
		return cart, nil
	}

	if err := h.carts.ReplaceItems(ctx, cart.ID, kept); err != nil {
		return nil, fmt.Errorf("failed to prune cart: %w", err)
	}
	return h.carts.FindByUserID(ctx, cart.UserID)
}
