package query

import (
	"context"
	"fmt"

	"github.com/tienda/tienda-backend/internal/catalog/domain"
)

// ListProductsQuery represents the query to list products
type ListProductsQuery struct {
	Category string
	Limit    int
	Offset   int
}

// ListProductsResult carries one page of products plus the total count
type ListProductsResult struct {
	Products []domain.Product `json:"products"`
	Total    int64            `json:"total"`
}

// ListProductsHandler handles product listing queries
type ListProductsHandler struct {
	repo domain.ProductRepository
}

func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(ctx context.Context, q ListProductsQuery) (*ListProductsResult, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	products, err := h.repo.FindAll(ctx, q.Category, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	total, err := h.repo.Count(ctx, q.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	return &ListProductsResult{Products: products, Total: total}, nil
}
