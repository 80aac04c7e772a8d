package query

import (
	"context"
	"fmt"

	cartdomain "github.com/tienda/tienda-backend/internal/cart/domain"
	catalogdomain "github.com/tienda/tienda-backend/internal/catalog/domain"
)

// CheckAvailabilityQuery represents the availability check for a user's cart
type CheckAvailabilityQuery struct {
	UserID uint
}

// UnavailableItem is a cart line whose product is gone or inactive
type UnavailableItem struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason"`
}

// ShortStockItem is a cart line requesting more than current stock
type ShortStockItem struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// AvailabilityReport partitions the cart into problem lines
type AvailabilityReport struct {
	Available   bool              `json:"available"`
	Unavailable []UnavailableItem `json:"unavailable_items"`
	ShortStock  []ShortStockItem  `json:"short_stock_items"`
}

// CheckAvailabilityHandler verifies every cart line against live catalog data
type CheckAvailabilityHandler struct {
	carts    cartdomain.CartRepository
	products catalogdomain.ProductRepository
}

func NewCheckAvailabilityHandler(carts cartdomain.CartRepository, products catalogdomain.ProductRepository) *CheckAvailabilityHandler {
	return &CheckAvailabilityHandler{carts: carts, products: products}
}

// Handle executes the availability check
func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (*AvailabilityReport, error) {
	cart, err := h.carts.FindByUserID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	report := &AvailabilityReport{
		Unavailable: []UnavailableItem{},
		ShortStock:  []ShortStockItem{},
	}

	if cart.IsEmpty() {
		report.Available = false
		return report, nil
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

	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		switch {
		case !ok:
			report.Unavailable = append(report.Unavailable, UnavailableItem{
				ProductID: item.ProductID,
				Reason:    "product deleted",
			})
		case !product.IsActive:
			report.Unavailable = append(report.Unavailable, UnavailableItem{
				ProductID: product.ID,
				Name:      product.Name,
				Reason:    "product not available",
			})
		case !product.HasStock(item.Quantity):
			report.ShortStock = append(report.ShortStock, ShortStockItem{
				ProductID: product.ID,
				Name:      product.Name,
				Requested: item.Quantity,
				Available: product.Stock,
			})
		}
	}

	report.Available = len(report.Unavailable) == 0 && len(report.ShortStock) == 0
	return report, nil
}
