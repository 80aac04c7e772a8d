package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tienda/tienda-backend/internal/user/domain"
	"github.com/tienda/tienda-backend/pkg/auth"
)

// LoginCommand represents the command to authenticate a user
type LoginCommand struct {
	Username string
	Password string
}

// LoginResult bundles the authenticated user with their token
type LoginResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// LoginHandler handles authentication
type LoginHandler struct {
	users domain.UserRepository
}

func NewLoginHandler(users domain.UserRepository) *LoginHandler {
	return &LoginHandler{users: users}
}

// Handle verifies the credentials and issues a JWT. Unknown usernames
// and wrong passwords fail with the same error.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	user, err := h.users.FindByUsername(ctx, cmd.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if !auth.CheckPassword(user.Password, cmd.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}
