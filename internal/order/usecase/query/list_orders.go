package query

import (
	"context"
	"fmt"

	"github.com/tienda/tienda-backend/internal/order/domain"
)

// ListOrdersQuery lists the requesting user's orders
type ListOrdersQuery struct {
	UserID uint
	Limit  int
	Offset int
}

// ListAllOrdersQuery lists orders across users, admin only
type ListAllOrdersQuery struct {
	Status string
	Limit  int
	Offset int
}

// ListOrdersResult bundles a page of orders with the total count
type ListOrdersResult struct {
	Orders []domain.Order `json:"orders"`
	Total  int64          `json:"total"`
}

// ListOrdersHandler handles order listing queries
type ListOrdersHandler struct {
	orders domain.OrderRepository
}

func NewListOrdersHandler(orders domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{orders: orders}
}

// Handle returns the user's orders, newest first
func (h *ListOrdersHandler) Handle(ctx context.Context, q ListOrdersQuery) (*ListOrdersResult, error) {
	limit, offset := normalizePage(q.Limit, q.Offset)
	orders, total, err := h.orders.FindByUser(ctx, q.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListOrdersResult{Orders: orders, Total: total}, nil
}

// HandleAll returns orders across all users, optionally filtered by status
func (h *ListOrdersHandler) HandleAll(ctx context.Context, q ListAllOrdersQuery) (*ListOrdersResult, error) {
	if q.Status != "" && !domain.IsValidStatus(q.Status) {
		return nil, fmt.Errorf("unknown order status %q", q.Status)
	}
	limit, offset := normalizePage(q.Limit, q.Offset)
	orders, total, err := h.orders.FindAll(ctx, q.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListOrdersResult{Orders: orders, Total: total}, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
