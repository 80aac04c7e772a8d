package command

import (
	"context"
	"fmt"
	"time"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
	"github.com/tienda/tienda-backend/internal/order/domain"
	"github.com/tienda/tienda-backend/kafka"
	"github.com/tienda/tienda-backend/pkg/logger"
)

// EventPublisher publishes order lifecycle events. A nil publisher
// disables event publishing.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event kafka.OrderPlacedEvent) error
	PublishOrderCancelled(ctx context.Context, event kafka.OrderCancelledEvent) error
}

// CreateOrderCommand represents the command to place an order from the
// user's cart
type CreateOrderCommand struct {
	UserID          uint
	DeliveryAddress domain.DeliveryAddress
	PaymentMethod   string
	Notes           string
}

// CreateOrderHandler handles order placement
type CreateOrderHandler struct {
	orders   domain.OrderRepository
	carts    cartdomain.CartRepository
	products catalogdomain.ProductRepository
	pricing  cartdomain.Pricing
	events   EventPublisher
}

func NewCreateOrderHandler(orders domain.OrderRepository, carts cartdomain.CartRepository, products catalogdomain.ProductRepository, pricing cartdomain.Pricing, events EventPublisher) *CreateOrderHandler {
	return &CreateOrderHandler{orders: orders, carts: carts, products: products, pricing: pricing, events: events}
}

// Handle freezes the cart into an order. Stock reservation, order
// creation and cart clearing happen atomically in the repository.
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := validateAddress(cmd.DeliveryAddress); err != nil {
		return nil, err
	}
	if cmd.PaymentMethod == "" {
		return nil, fmt.Errorf("payment method is required")
	}

	cart, err := h.carts.FindByUserID(ctx, cmd.UserID)
	if err != nil {
		if err == cartdomain.ErrCartNotFound {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	ids := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := h.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[uint]*catalogdomain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	// Freeze lines at the product's current price, not the cart snapshot
	var items []domain.OrderItem
	var subtotal float64
	for _, line := range cart.Items {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, catalogdomain.ErrProductNotFound)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%q: %w", product.Name, catalogdomain.ErrProductUnavailable)
		}
		lineSubtotal := product.Price * float64(line.Quantity)
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  lineSubtotal,
		})
		subtotal += lineSubtotal
	}

	totals := h.pricing.Compute(subtotal)
	now := time.Now().UTC()

	order := &domain.Order{
		UserID:          cmd.UserID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		ShippingCost:    totals.Shipping,
		Total:           totals.Total,
		Status:          domain.StatusPending,
		DeliveryAddress: cmd.DeliveryAddress,
		PaymentMethod:   cmd.PaymentMethod,
		Notes:           cmd.Notes,
		StatusHistory: []domain.StatusChange{
			{Status: domain.StatusPending, Timestamp: now, Note: "Order placed"},
		},
	}

	if err := h.orders.Place(ctx, order, cart.ID); err != nil {
		return nil, err
	}

	if h.events != nil {
		err := h.events.PublishOrderPlaced(ctx, kafka.OrderPlacedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			ItemCount:   len(order.Items),
			Total:       order.Total,
		})
		if err != nil {
			logger.Error(ctx).Err(err).Uint("order_id", order.ID).Msg("Failed to publish order placed event")
		}
	}

	return order, nil
}

func validateAddress(addr domain.DeliveryAddress) error {
	if addr.Street == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
		return fmt.Errorf("delivery address requires street, city, postal code and country")
	}
	return nil
}
