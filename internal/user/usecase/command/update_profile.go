package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tienda/tienda-backend/internal/user/domain"
	"github.com/tienda/tienda-backend/pkg/auth"
)

// UpdateProfileCommand represents the command to edit the caller's
// profile. Nil fields are left unchanged.
type UpdateProfileCommand struct {
	UserID   uint
	Email    *string
	FullName *string
	Password *string
	Address  *domain.Address
}

// UpdateProfileHandler handles profile edits
type UpdateProfileHandler struct {
	users domain.UserRepository
}

func NewUpdateProfileHandler(users domain.UserRepository) *UpdateProfileHandler {
	return &UpdateProfileHandler{users: users}
}

func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*domain.User, error) {
	user, err := h.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if cmd.Email != nil && *cmd.Email != user.Email {
		if !strings.Contains(*cmd.Email, "@") {
			return nil, fmt.Errorf("invalid email address")
		}
		if _, err := h.users.FindByEmail(ctx, *cmd.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user.Email = *cmd.Email
	}
	if cmd.FullName != nil {
		user.FullName = *cmd.FullName
	}
	if cmd.Password != nil {
		if len(*cmd.Password) < 8 {
			return nil, fmt.Errorf("password must be at least 8 characters")
		}
		hashed, err := auth.HashPassword(*cmd.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}
	if cmd.Address != nil {
		user.Address = *cmd.Address
	}

	if err := h.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
