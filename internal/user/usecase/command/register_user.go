package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/user/domain"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/logger"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// RegisterUserCommand represents the command to register a new user
type RegisterUserCommand struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	repo domain.UserRepository
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(repo domain.UserRepository) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// taken reports whether lookup found a row. NotFound means free.
func taken(user *domain.User, err error) (bool, error) {
	if err == nil {
		return user != nil, nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
		return false, nil
	}
	return false, err
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*domain.User, error) {
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.Username = strings.TrimSpace(cmd.Username)

	if cmd.Email == "" || cmd.Username == "" {
		return nil, apperr.Validation("Email and username are required.")
	}
	if len(cmd.Password) < MinPasswordLength {
		return nil, apperr.Validation("Password must be at least %d characters.", MinPasswordLength)
	}
	if domain.IsReservedUsername(cmd.Username) {
		return nil, apperr.Validation(domain.MsgUsernameReserved)
	}

	if exists, err := taken(h.repo.FindByUsername(ctx, cmd.Username)); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.Conflict(domain.MsgUsernameTaken)
	}
	if exists, err := taken(h.repo.FindByEmail(ctx, cmd.Email)); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.Conflict(domain.MsgEmailTaken)
	}

	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:     cmd.Email,
		Username:  cmd.Username,
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Password:  hashedPassword,
		Role:      domain.RoleUser,
		IsActive:  true,
	}
	if err := h.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx).Uint("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return user, nil
}
