package query

import (
	"context"

	"github.com/tair/foodgram/internal/user/domain"
)

// GetUserQuery represents the query to get a user by ID
type GetUserQuery struct {
	ID       uint
	ViewerID uint
}

// GetUserHandler handles get user query
type GetUserHandler struct {
	repo domain.UserRepository
}

// NewGetUserHandler creates a new get user handler
func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(ctx context.Context, q GetUserQuery) (*domain.Profile, error) {
	user, err := h.repo.FindByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	subscribed, err := h.repo.SubscribedTo(ctx, q.ViewerID, []uint{user.ID})
	if err != nil {
		return nil, err
	}
	profile := user.Profile(subscribed[user.ID])
	return &profile, nil
}
