package query

import (
	"context"
	"fmt"

	recipedomain "github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/internal/user/domain"
	"github.com/tair/foodgram/pkg/pagination"
)

// AuthorRecipes reads the recipes shown under each followed author.
// The recipe repository implements it.
type AuthorRecipes interface {
	ShortByAuthors(ctx context.Context, authorIDs []uint, limit int) (map[uint][]recipedomain.ShortRecipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

// Subscription is a followed author with their newest recipes.
type Subscription struct {
	domain.Profile
	Recipes      []recipedomain.ShortRecipe `json:"recipes"`
	RecipesCount int64                      `json:"recipes_count"`
}

func buildSubscriptions(ctx context.Context, recipes AuthorRecipes, authors []domain.User, recipesLimit int) ([]Subscription, error) {
	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	short, err := recipes.ShortByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load author recipes: %w", err)
	}
	counts, err := recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count author recipes: %w", err)
	}

	out := make([]Subscription, 0, len(authors))
	for i := range authors {
		a := &authors[i]
		list := short[a.ID]
		if list == nil {
			list = []recipedomain.ShortRecipe{}
		}
		out = append(out, Subscription{
			Profile:      a.Profile(true),
			Recipes:      list,
			RecipesCount: counts[a.ID],
		})
	}
	return out, nil
}

// ListSubscriptionsQuery represents the query to list a user's followed authors
type ListSubscriptionsQuery struct {
	UserID uint
	Page   pagination.Params
	// RecipesLimit caps the recipes listed per author. 0 lists all.
	RecipesLimit int
}

// ListSubscriptionsHandler handles list subscriptions query
type ListSubscriptionsHandler struct {
	repo    domain.UserRepository
	recipes AuthorRecipes
	limits  pagination.Limits
}

// NewListSubscriptionsHandler creates a new list subscriptions handler
func NewListSubscriptionsHandler(repo domain.UserRepository, recipes AuthorRecipes, limits pagination.Limits) *ListSubscriptionsHandler {
	return &ListSubscriptionsHandler{repo: repo, recipes: recipes, limits: limits}
}

// Handle executes the list subscriptions query
func (h *ListSubscriptionsHandler) Handle(ctx context.Context, q ListSubscriptionsQuery) ([]Subscription, int64, error) {
	authors, total, err := h.repo.Followees(ctx, q.UserID, q.Page.Normalize(h.limits))
	if err != nil {
		return nil, 0, err
	}
	subs, err := buildSubscriptions(ctx, h.recipes, authors, q.RecipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// GetSubscriptionQuery renders one followed author
type GetSubscriptionQuery struct {
	AuthorID     uint
	RecipesLimit int
}

// GetSubscriptionHandler renders the author returned by a successful subscribe
type GetSubscriptionHandler struct {
	repo    domain.UserRepository
	recipes AuthorRecipes
}

// NewGetSubscriptionHandler creates a new get subscription handler
func NewGetSubscriptionHandler(repo domain.UserRepository, recipes AuthorRecipes) *GetSubscriptionHandler {
	return &GetSubscriptionHandler{repo: repo, recipes: recipes}
}

// Handle executes the get subscription query
func (h *GetSubscriptionHandler) Handle(ctx context.Context, q GetSubscriptionQuery) (*Subscription, error) {
	author, err := h.repo.FindByID(ctx, q.AuthorID)
	if err != nil {
		return nil, err
	}
	subs, err := buildSubscriptions(ctx, h.recipes, []domain.User{*author}, q.RecipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}
