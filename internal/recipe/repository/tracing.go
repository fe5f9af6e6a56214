package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/pkg/pagination"
)

var tracer = otel.Tracer("recipe-repository")

// TracedRecipeRepository wraps a RecipeRepository with spans on the hot paths.
// Methods that are not overridden fall through to the embedded repository.
type TracedRecipeRepository struct {
	domain.RecipeRepository
}

// NewTracedRecipeRepository creates a new repository with tracing
func NewTracedRecipeRepository(next domain.RecipeRepository) *TracedRecipeRepository {
	return &TracedRecipeRepository{RecipeRepository: next}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "repository."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *TracedRecipeRepository) FindRecipes(ctx context.Context, f domain.RecipeFilter, page pagination.Params) ([]domain.Recipe, int64, error) {
	ctx, span := startSpan(ctx, "FindRecipes",
		attribute.Int("viewer.id", int(f.ViewerID)),
		attribute.Int("filter.author_id", int(f.AuthorID)),
		attribute.StringSlice("filter.tags", f.TagSlugs),
		attribute.Bool("filter.is_favorited", f.OnlyFavorited),
		attribute.Bool("filter.is_in_shopping_cart", f.OnlyInShoppingCart),
		attribute.Int("query.page", page.Page),
		attribute.Int("query.limit", page.Limit),
	)

	recipes, total, err := r.RecipeRepository.FindRecipes(ctx, f, page)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(recipes)), attribute.Int64("result.total", total))
	}
	endSpan(span, err)
	return recipes, total, err
}

func (r *TracedRecipeRepository) FindByID(ctx context.Context, id uint) (*domain.Recipe, error) {
	ctx, span := startSpan(ctx, "FindByID", attribute.Int("recipe.id", int(id)))
	recipe, err := r.RecipeRepository.FindByID(ctx, id)
	endSpan(span, err)
	return recipe, err
}

func (r *TracedRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe, draft domain.RecipeDraft) error {
	ctx, span := startSpan(ctx, "Create",
		attribute.Int("recipe.author_id", int(recipe.AuthorID)),
		attribute.Int("recipe.ingredients", len(draft.Ingredients)),
		attribute.Int("recipe.tags", len(draft.TagIDs)),
	)
	err := r.RecipeRepository.Create(ctx, recipe, draft)
	if err == nil {
		span.SetAttributes(attribute.Int("recipe.id", int(recipe.ID)))
	}
	endSpan(span, err)
	return err
}

func (r *TracedRecipeRepository) Replace(ctx context.Context, recipe *domain.Recipe, draft domain.RecipeDraft) ([]uint, error) {
	ctx, span := startSpan(ctx, "Replace",
		attribute.Int("recipe.id", int(recipe.ID)),
		attribute.Int("recipe.ingredients", len(draft.Ingredients)),
		attribute.Int("recipe.tags", len(draft.TagIDs)),
	)
	holders, err := r.RecipeRepository.Replace(ctx, recipe, draft)
	span.SetAttributes(attribute.Int("recipe.cart_holders", len(holders)))
	endSpan(span, err)
	return holders, err
}

func (r *TracedRecipeRepository) Delete(ctx context.Context, id uint) ([]uint, error) {
	ctx, span := startSpan(ctx, "Delete", attribute.Int("recipe.id", int(id)))
	holders, err := r.RecipeRepository.Delete(ctx, id)
	span.SetAttributes(attribute.Int("recipe.cart_holders", len(holders)))
	endSpan(span, err)
	return holders, err
}

func (r *TracedRecipeRepository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	ctx, span := startSpan(ctx, "AddFavorite", attribute.Int("user.id", int(userID)), attribute.Int("recipe.id", int(recipeID)))
	err := r.RecipeRepository.AddFavorite(ctx, userID, recipeID)
	endSpan(span, err)
	return err
}

func (r *TracedRecipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	ctx, span := startSpan(ctx, "RemoveFavorite", attribute.Int("user.id", int(userID)), attribute.Int("recipe.id", int(recipeID)))
	err := r.RecipeRepository.RemoveFavorite(ctx, userID, recipeID)
	endSpan(span, err)
	return err
}

func (r *TracedRecipeRepository) AddToCart(ctx context.Context, userID, recipeID uint) error {
	ctx, span := startSpan(ctx, "AddToCart", attribute.Int("user.id", int(userID)), attribute.Int("recipe.id", int(recipeID)))
	err := r.RecipeRepository.AddToCart(ctx, userID, recipeID)
	endSpan(span, err)
	return err
}

func (r *TracedRecipeRepository) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	ctx, span := startSpan(ctx, "RemoveFromCart", attribute.Int("user.id", int(userID)), attribute.Int("recipe.id", int(recipeID)))
	err := r.RecipeRepository.RemoveFromCart(ctx, userID, recipeID)
	endSpan(span, err)
	return err
}

func (r *TracedRecipeRepository) ShoppingLines(ctx context.Context, userID uint) ([]domain.ShoppingLine, error) {
	ctx, span := startSpan(ctx, "ShoppingLines", attribute.Int("user.id", int(userID)))
	lines, err := r.RecipeRepository.ShoppingLines(ctx, userID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(lines)))
	}
	endSpan(span, err)
	return lines, err
}
