package query

import (
	"context"

	"github.com/tienda/tienda-backend/internal/user/domain"
)

// ListUsersQuery lists accounts with pagination, admin only
type ListUsersQuery struct {
	Limit  int
	Offset int
}

// ListUsersResult bundles a page of users with the total count
type ListUsersResult struct {
	Users []domain.User `json:"users"`
	Total int64         `json:"total"`
}

// ListUsersHandler handles user listing queries
type ListUsersHandler struct {
	users domain.UserRepository
}

func NewListUsersHandler(users domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{users: users}
}

func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) (*ListUsersResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	users, total, err := h.users.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListUsersResult{Users: users, Total: total}, nil
}
