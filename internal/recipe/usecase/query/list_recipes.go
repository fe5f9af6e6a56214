package query

import (
	"context"
	"fmt"

	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/pkg/pagination"
)

// ListRecipesQuery represents the query to list recipes
type ListRecipesQuery struct {
	Filter domain.RecipeFilter
	Page   pagination.Params
}

// ListRecipesHandler handles list recipes query
type ListRecipesHandler struct {
	repo   domain.RecipeRepository
	viewer viewer
	limits pagination.Limits
}

// NewListRecipesHandler creates a new list recipes handler
func NewListRecipesHandler(repo domain.RecipeRepository, subs domain.SubscriptionChecker, limits pagination.Limits) *ListRecipesHandler {
	return &ListRecipesHandler{repo: repo, viewer: viewer{repo: repo, subs: subs}, limits: limits}
}

// Handle executes the list recipes query
func (h *ListRecipesHandler) Handle(ctx context.Context, q ListRecipesQuery) ([]domain.RecipeView, int64, error) {
	page := q.Page.Normalize(h.limits)

	filter := q.Filter
	if filter.ViewerID == 0 {
		filter.OnlyFavorited = false
		filter.OnlyInShoppingCart = false
	}

	recipes, total, err := h.repo.FindRecipes(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	views, err := h.viewer.render(ctx, filter.ViewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}
