package query

import (
	"context"

	"github.com/tair/foodgram/internal/recipe/domain"
)

// GetRecipeStatsHandler handles the recipe stats query
type GetRecipeStatsHandler struct {
	repo domain.RecipeRepository
}

// NewGetRecipeStatsHandler creates a new get stats handler
func NewGetRecipeStatsHandler(repo domain.RecipeRepository) *GetRecipeStatsHandler {
	return &GetRecipeStatsHandler{repo: repo}
}

// Handle returns how many users favourited the recipe or have it in their cart
func (h *GetRecipeStatsHandler) Handle(ctx context.Context, recipeID uint) (*domain.RecipeStats, error) {
	if _, err := h.repo.FindHeader(ctx, recipeID); err != nil {
		return nil, err
	}
	return h.repo.Stats(ctx, recipeID)
}
