package query

import (
	"context"
	"fmt"

	"github.com/tair/foodgram/internal/recipe/domain"
)

// viewer resolves the per-viewer flags of recipes.
type viewer struct {
	repo domain.RecipeRepository
	subs domain.SubscriptionChecker
}

// render builds the full representations of recipes for viewerID with one
// batched lookup per relation. Anonymous viewers get all flags false.
func (v viewer) render(ctx context.Context, viewerID uint, recipes []domain.Recipe) ([]domain.RecipeView, error) {
	views := make([]domain.RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	var (
		favorited  = map[uint]bool{}
		inCart     = map[uint]bool{}
		subscribed = map[uint]bool{}
	)
	if viewerID != 0 {
		recipeIDs := make([]uint, len(recipes))
		authorIDs := make([]uint, 0, len(recipes))
		seen := make(map[uint]bool, len(recipes))
		for i, r := range recipes {
			recipeIDs[i] = r.ID
			if !seen[r.AuthorID] {
				seen[r.AuthorID] = true
				authorIDs = append(authorIDs, r.AuthorID)
			}
		}

		var err error
		favorited, inCart, err = v.repo.Flags(ctx, viewerID, recipeIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve recipe flags: %w", err)
		}
		if v.subs != nil {
			subscribed, err = v.subs.SubscribedTo(ctx, viewerID, authorIDs)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve subscriptions: %w", err)
			}
		}
	}

	for i := range recipes {
		r := &recipes[i]
		views = append(views, r.View(domain.Flags{
			Favorited:        favorited[r.ID],
			InShoppingCart:   inCart[r.ID],
			AuthorSubscribed: subscribed[r.AuthorID],
		}))
	}
	return views, nil
}
