package recipe

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/foodgram/internal/recipe/delivery/http"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/internal/recipe/repository"
	"github.com/tair/foodgram/internal/recipe/usecase/command"
	"github.com/tair/foodgram/internal/recipe/usecase/query"
)

// ProvideRecipeRepository provides the traced recipe repository
func ProvideRecipeRepository(db *gorm.DB) domain.RecipeRepository {
	return repository.NewTracedRecipeRepository(repository.NewGormRecipeRepository(db))
}

// ProvideCatalogRepository provides the tag, unit and ingredient repository
func ProvideCatalogRepository(db *gorm.DB) domain.CatalogRepository {
	return repository.NewGormCatalogRepository(db)
}

// ProvideCommandHandlers provides all command handlers
func ProvideCommandHandlers(
	create *command.CreateRecipeHandler,
	update *command.UpdateRecipeHandler,
	del *command.DeleteRecipeHandler,
	addFavorite *command.AddFavoriteHandler,
	removeFavorite *command.RemoveFavoriteHandler,
	addToCart *command.AddToCartHandler,
	removeFromCart *command.RemoveFromCartHandler,
	createTag *command.CreateTagHandler,
	createUnit *command.CreateUnitHandler,
	deleteUnit *command.DeleteUnitHandler,
	createIngredient *command.CreateIngredientHandler,
	deleteIngredient *command.DeleteIngredientHandler,
) *http.CommandHandlers {
	return &http.CommandHandlers{
		Create:           create,
		Update:           update,
		Delete:           del,
		AddFavorite:      addFavorite,
		RemoveFavorite:   removeFavorite,
		AddToCart:        addToCart,
		RemoveFromCart:   removeFromCart,
		CreateTag:        createTag,
		CreateUnit:       createUnit,
		DeleteUnit:       deleteUnit,
		CreateIngredient: createIngredient,
		DeleteIngredient: deleteIngredient,
	}
}

// ProvideQueryHandlers provides all query handlers
func ProvideQueryHandlers(
	list *query.ListRecipesHandler,
	get *query.GetRecipeHandler,
	stats *query.GetRecipeStatsHandler,
	shoppingList *query.DownloadShoppingListHandler,
	listTags *query.ListTagsHandler,
	getTag *query.GetTagHandler,
	listUnits *query.ListUnitsHandler,
	searchIngredients *query.SearchIngredientsHandler,
	getIngredient *query.GetIngredientHandler,
) *http.QueryHandlers {
	return &http.QueryHandlers{
		List:              list,
		Get:               get,
		Stats:             stats,
		ShoppingList:      shoppingList,
		ListTags:          listTags,
		GetTag:            getTag,
		ListUnits:         listUnits,
		SearchIngredients: searchIngredients,
		GetIngredient:     getIngredient,
	}
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideRecipeRepository,
	ProvideCatalogRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateRecipeHandler,
	command.NewUpdateRecipeHandler,
	command.NewDeleteRecipeHandler,
	command.NewAddFavoriteHandler,
	command.NewRemoveFavoriteHandler,
	command.NewAddToCartHandler,
	command.NewRemoveFromCartHandler,
	command.NewCreateTagHandler,
	command.NewCreateUnitHandler,
	command.NewDeleteUnitHandler,
	command.NewCreateIngredientHandler,
	command.NewDeleteIngredientHandler,
	ProvideCommandHandlers,
)

var QueryHandlerSet = wire.NewSet(
	query.NewListRecipesHandler,
	query.NewGetRecipeHandler,
	query.NewGetRecipeStatsHandler,
	query.NewDownloadShoppingListHandler,
	query.NewListTagsHandler,
	query.NewGetTagHandler,
	query.NewListUnitsHandler,
	query.NewSearchIngredientsHandler,
	query.NewGetIngredientHandler,
	ProvideQueryHandlers,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)
