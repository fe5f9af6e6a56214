package command

import (
	"context"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/user/domain"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/logger"
)

// DeleteUserCommand represents the command to delete a user
type DeleteUserCommand struct {
	ID    uint
	Actor auth.Principal
}

// DeleteUserHandler handles user deletion command
type DeleteUserHandler struct {
	repo domain.UserRepository
}

// NewDeleteUserHandler creates a new delete user handler
func NewDeleteUserHandler(repo domain.UserRepository) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo}
}

// Handle deletes the account. Recipes survive under the placeholder author.
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	if cmd.ID == 0 {
		return apperr.NotFound(domain.MsgUserNotFound)
	}
	if cmd.Actor.UserID != cmd.ID && !cmd.Actor.IsAdmin() {
		return apperr.Forbidden(domain.MsgNotAllowed)
	}

	heir, err := h.repo.DeleteReassigningRecipes(ctx, cmd.ID)
	if err != nil {
		return err
	}

	logger.Info(ctx).
		Uint("user_id", cmd.ID).
		Uint("actor_id", cmd.Actor.UserID).
		Uint("heir_id", heir.ID).
		Msg("User deleted, recipes reassigned")
	return nil
}
