package query

import (
	"context"

	"github.com/tienda/tienda-backend/internal/order/domain"
)

// GetStatsQuery requests aggregate order statistics
type GetStatsQuery struct{}

// GetStatsHandler handles order statistics queries
type GetStatsHandler struct {
	orders domain.OrderRepository
}

func NewGetStatsHandler(orders domain.OrderRepository) *GetStatsHandler {
	return &GetStatsHandler{orders: orders}
}

func (h *GetStatsHandler) Handle(ctx context.Context, _ GetStatsQuery) (*domain.OrderStats, error) {
	return h.orders.Stats(ctx)
}
