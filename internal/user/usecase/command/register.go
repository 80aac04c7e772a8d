package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tienda/tienda-backend/internal/user/domain"
	"github.com/tienda/tienda-backend/pkg/auth"
)

// RegisterCommand represents the command to create a new account
type RegisterCommand struct {
	Username string
	Email    string
	Password string
	FullName string
}

// RegisterHandler handles account registration
type RegisterHandler struct {
	users domain.UserRepository
}

func NewRegisterHandler(users domain.UserRepository) *RegisterHandler {
	return &RegisterHandler{users: users}
}

// Handle creates the account with a bcrypt password hash and the
// default user role.
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	if len(cmd.Username) < 3 {
		return nil, fmt.Errorf("username must be at least 3 characters")
	}
	if !strings.Contains(cmd.Email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(cmd.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	if _, err := h.users.FindByUsername(ctx, cmd.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := h.users.FindByEmail(ctx, cmd.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username: cmd.Username,
		Email:    cmd.Email,
		Password: hashed,
		FullName: cmd.FullName,
		Role:     domain.RoleUser,
		IsActive: true,
	}

	if err := h.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
