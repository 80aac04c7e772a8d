package command

import (
	"context"
	"fmt"

	"github.com/tienda/tienda-backend/internal/catalog/domain"
)

// UpdateProductCommand represents the command to update an existing product.
// Zero values leave the corresponding field unchanged; IsActive is applied
// explicitly via the pointer.
type UpdateProductCommand struct {
	ID          uint
	Name        string
	Description string
	Price       *float64
	Category    string
	IsActive    *bool
}

// UpdateProductHandler handles product updates
type UpdateProductHandler struct {
	repo domain.ProductRepository
}

func NewUpdateProductHandler(repo domain.ProductRepository) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	if cmd.ID == 0 {
		return nil, fmt.Errorf("invalid product id")
	}

	product, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != "" {
		product.Name = cmd.Name
	}
	if cmd.Description != "" {
		product.Description = cmd.Description
	}
	if cmd.Price != nil {
		if *cmd.Price < 0 {
			return nil, fmt.Errorf("price cannot be negative")
		}
		product.Price = *cmd.Price
	}
	if cmd.Category != "" {
		product.Category = cmd.Category
	}
	if cmd.IsActive != nil {
		product.IsActive = *cmd.IsActive
	}

	if err := h.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}
