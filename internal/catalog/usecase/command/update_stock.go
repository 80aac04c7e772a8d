package command

import (
	"context"
	"fmt"

	"github.com/tienda/tienda-backend/internal/catalog/domain"
)

// UpdateStockCommand sets a product's absolute stock level (admin restock)
type UpdateStockCommand struct {
	ProductID uint
	Stock     int
}

// UpdateStockHandler handles stock level updates
type UpdateStockHandler struct {
	repo domain.ProductRepository
}

func NewUpdateStockHandler(repo domain.ProductRepository) *UpdateStockHandler {
	return &UpdateStockHandler{repo: repo}
}

// Handle executes the update stock command
func (h *UpdateStockHandler) Handle(ctx context.Context, cmd UpdateStockCommand) (*domain.Product, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("invalid product id")
	}
	if cmd.Stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative")
	}

	product, err := h.repo.FindByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	product.Stock = cmd.Stock
	if err := h.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	return product, nil
}
