package domain

import (
	"context"

	"github.com/tair/foodgram/pkg/pagination"
)

// RecipeFilter selects recipes for a listing. Tags match if a recipe has any
// of them; every other set field must match.
type RecipeFilter struct {
	// ViewerID is 0 for anonymous requests. Favorite and cart filters are ignored then.
	ViewerID           uint
	AuthorID           uint
	TagSlugs           []string
	OnlyFavorited      bool
	OnlyInShoppingCart bool
	// MatchNothing is set when a filter value can never match, such as a malformed author id.
	MatchNothing bool
}

// RecipeRepository defines the contract for recipe data access
type RecipeRepository interface {
	FindRecipes(ctx context.Context, filter RecipeFilter, page pagination.Params) ([]Recipe, int64, error)
	FindByID(ctx context.Context, id uint) (*Recipe, error)
	FindHeader(ctx context.Context, id uint) (*Recipe, error)
	Count(ctx context.Context) (int64, error)

	// Create stores the header, entries and tag links in one transaction.
	Create(ctx context.Context, recipe *Recipe, draft RecipeDraft) error
	// Replace rewrites the header and swaps the whole entry and tag sets in one transaction.
	// Replace and Delete return the users whose cart held the recipe inside that transaction.
	Replace(ctx context.Context, recipe *Recipe, draft RecipeDraft) ([]uint, error)
	Delete(ctx context.Context, id uint) ([]uint, error)

	AddFavorite(ctx context.Context, userID, recipeID uint) error
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToCart(ctx context.Context, userID, recipeID uint) error
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	Flags(ctx context.Context, viewerID uint, recipeIDs []uint) (favorited, inCart map[uint]bool, err error)
	CartUserIDs(ctx context.Context, recipeID uint) ([]uint, error)
	Stats(ctx context.Context, recipeID uint) (*RecipeStats, error)

	ShoppingLines(ctx context.Context, userID uint) ([]ShoppingLine, error)

	ShortByAuthors(ctx context.Context, authorIDs []uint, limit int) (map[uint][]ShortRecipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

// CatalogRepository covers tags, measurement units and ingredients.
type CatalogRepository interface {
	ListTags(ctx context.Context) ([]Tag, error)
	FindTag(ctx context.Context, id uint) (*Tag, error)
	CreateTag(ctx context.Context, tag *Tag) error

	ListUnits(ctx context.Context) ([]MeasurementUnit, error)
	FindOrCreateUnit(ctx context.Context, name string) (*MeasurementUnit, error)
	CreateUnit(ctx context.Context, unit *MeasurementUnit) error
	DeleteUnit(ctx context.Context, id uint) error

	SearchIngredients(ctx context.Context, prefix string) ([]Ingredient, error)
	FindIngredient(ctx context.Context, id uint) (*Ingredient, error)
	CreateIngredient(ctx context.Context, ingredient *Ingredient) error
	DeleteIngredient(ctx context.Context, id uint) error
}

// ShoppingListCache stores aggregated shopping lists per user.
type ShoppingListCache interface {
	Get(ctx context.Context, userID uint) ([]ShoppingItem, bool, error)
	// Version is read before building a list and handed back to Set.
	Version(ctx context.Context, userID uint) (int64, error)
	// Set is a no-op when the user was invalidated since version was read.
	Set(ctx context.Context, userID uint, version int64, items []ShoppingItem) error
	Invalidate(ctx context.Context, userIDs ...uint) error
}

// SubscriptionChecker reports which authors a viewer follows.
type SubscriptionChecker interface {
	SubscribedTo(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error)
}
