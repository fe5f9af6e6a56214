package query

import (
	"context"
	"fmt"

	"github.com/tair/foodgram/internal/user/domain"
	"github.com/tair/foodgram/pkg/pagination"
)

// ListUsersQuery represents the query to list users
type ListUsersQuery struct {
	ViewerID uint
	Page     pagination.Params
}

// ListUsersHandler handles list users query
type ListUsersHandler struct {
	repo   domain.UserRepository
	limits pagination.Limits
}

// NewListUsersHandler creates a new list users handler
func NewListUsersHandler(repo domain.UserRepository, limits pagination.Limits) *ListUsersHandler {
	return &ListUsersHandler{repo: repo, limits: limits}
}

// Handle executes the list users query
func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) ([]domain.Profile, int64, error) {
	users, total, err := h.repo.FindAll(ctx, q.Page.Normalize(h.limits))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := h.repo.SubscribedTo(ctx, q.ViewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	profiles := make([]domain.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile(subscribed[users[i].ID]))
	}
	return profiles, total, nil
}
