package query

import (
	"context"

	"github.com/tair/foodgram/internal/recipe/domain"
)

// GetRecipeQuery represents the query to get one recipe
type GetRecipeQuery struct {
	ID       uint
	ViewerID uint
}

// GetRecipeHandler handles get recipe query
type GetRecipeHandler struct {
	repo   domain.RecipeRepository
	viewer viewer
}

// NewGetRecipeHandler creates a new get recipe handler
func NewGetRecipeHandler(repo domain.RecipeRepository, subs domain.SubscriptionChecker) *GetRecipeHandler {
	return &GetRecipeHandler{repo: repo, viewer: viewer{repo: repo, subs: subs}}
}

// Handle executes the get recipe query
func (h *GetRecipeHandler) Handle(ctx context.Context, q GetRecipeQuery) (*domain.RecipeView, error) {
	recipe, err := h.repo.FindByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	views, err := h.viewer.render(ctx, q.ViewerID, []domain.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
