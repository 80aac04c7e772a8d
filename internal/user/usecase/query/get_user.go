package query

import (
	"context"

	"github.com/tienda/tienda-backend/internal/user/domain"
)

// GetUserQuery represents the query to fetch a single user
type GetUserQuery struct {
	UserID uint
}

// GetUserHandler handles single user queries
type GetUserHandler struct {
	users domain.UserRepository
}

func NewGetUserHandler(users domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{users: users}
}

func (h *GetUserHandler) Handle(ctx context.Context, q GetUserQuery) (*domain.User, error) {
	return h.users.FindByID(ctx, q.UserID)
}
