package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/membership"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/pkg/pagination"
)

// FavoriteRelation is the user → recipe favourites table.
var FavoriteRelation = membership.Relation[domain.Favorite]{
	Name:         "favorite",
	OwnerColumn:  "user_id",
	TargetColumn: "recipe_id",
	New: func(userID, recipeID uint) domain.Favorite {
		return domain.Favorite{UserID: userID, RecipeID: recipeID}
	},
	AlreadyPresent: domain.MsgAlreadyFavorited,
	NotPresent:     domain.MsgNotFavorited,
	Missing:        domain.MsgRecipeNotFound,
}

// CartRelation is the user → recipe shopping cart table.
var CartRelation = membership.Relation[domain.CartItem]{
	Name:         "shopping_cart",
	OwnerColumn:  "user_id",
	TargetColumn: "recipe_id",
	New: func(userID, recipeID uint) domain.CartItem {
		return domain.CartItem{UserID: userID, RecipeID: recipeID}
	},
	AlreadyPresent: domain.MsgAlreadyInCart,
	NotPresent:     domain.MsgNotInCart,
	Missing:        domain.MsgRecipeNotFound,
}

// GormRecipeRepository implements RecipeRepository using GORM
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GORM recipe repository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

// AutoMigrate runs database migrations for recipe tables
func (r *GormRecipeRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.Tag{},
		&domain.MeasurementUnit{},
		&domain.Ingredient{},
		&domain.Recipe{},
		&domain.RecipeIngredientEntry{},
		&domain.Favorite{},
		&domain.CartItem{},
	)
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredient_entries.id")
		}).
		Preload("Ingredients.Ingredient.MeasurementUnit")
}

func (r *GormRecipeRepository) filtered(ctx context.Context, f domain.RecipeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Recipe{})

	if f.MatchNothing {
		return q.Where("1 = 0")
	}
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where(`EXISTS (
			SELECT 1 FROM recipe_tags rt
			JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = recipes.id AND t.slug IN ?)`, f.TagSlugs)
	}
	if f.ViewerID != 0 && f.OnlyFavorited {
		q = q.Where("EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?)", f.ViewerID)
	}
	if f.ViewerID != 0 && f.OnlyInShoppingCart {
		q = q.Where("EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = recipes.id AND sc.user_id = ?)", f.ViewerID)
	}
	return q
}

// FindRecipes returns one page of matching recipes, newest first, and the total match count
func (r *GormRecipeRepository) FindRecipes(ctx context.Context, f domain.RecipeFilter, page pagination.Params) ([]domain.Recipe, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []domain.Recipe
	if total == 0 {
		return recipes, 0, nil
	}

	err := withDetails(r.filtered(ctx, f)).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find recipes: %w", err)
	}
	return recipes, total, nil
}

// FindByID retrieves a recipe with author, tags and ingredients
func (r *GormRecipeRepository) FindByID(ctx context.Context, id uint) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := withDetails(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(domain.MsgRecipeNotFound)
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return &recipe, nil
}

// FindHeader retrieves the recipe row only
func (r *GormRecipeRepository) FindHeader(ctx context.Context, id uint) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(domain.MsgRecipeNotFound)
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return &recipe, nil
}

// Count returns the total number of recipes
func (r *GormRecipeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

// checkReferences verifies every ingredient and tag id exists and returns the tags.
func checkReferences(tx *gorm.DB, draft domain.RecipeDraft) ([]domain.Tag, error) {
	ids := draft.IngredientIDs()
	var found int64
	if err := tx.Model(&domain.Ingredient{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to check ingredients: %w", err)
	}
	if found != int64(len(ids)) {
		return nil, apperr.NotFound(domain.MsgIngredientNotFound)
	}

	var tags []domain.Tag
	if err := tx.Where("id IN ?", draft.TagIDs).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(draft.TagIDs) {
		return nil, apperr.NotFound(domain.MsgTagNotFound)
	}
	return tags, nil
}

func writeComposition(tx *gorm.DB, recipe *domain.Recipe, draft domain.RecipeDraft, tags []domain.Tag) error {
	entries := draft.Entries(recipe.ID)
	if err := tx.Omit(clause.Associations).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to create ingredient entries: %w", err)
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("failed to attach tags: %w", err)
	}
	return nil
}

// Create inserts the recipe header, its entries and tag links atomically
func (r *GormRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe, draft domain.RecipeDraft) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := checkReferences(tx, draft)
		if err != nil {
			return err
		}

		recipe.Name = draft.Name
		recipe.Text = draft.Text
		recipe.CookingTime = draft.CookingTime
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}

		return writeComposition(tx, recipe, draft, tags)
	})
}

// lockRecipe takes a row lock on the recipe so cart adds referencing it wait for the
// transaction, then lists the users whose cart holds it.
func lockRecipe(tx *gorm.DB, id uint) ([]uint, error) {
	var header domain.Recipe
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&header, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(domain.MsgRecipeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock recipe: %w", err)
	}

	var holders []uint
	if err := tx.Model(&domain.CartItem{}).Where("recipe_id = ?", id).Order("user_id").Pluck("user_id", &holders).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart holders: %w", err)
	}
	return holders, nil
}

// Replace updates the header and rebuilds entries and tags from scratch.
// It returns the users whose cart held the recipe at commit time.
func (r *GormRecipeRepository) Replace(ctx context.Context, recipe *domain.Recipe, draft domain.RecipeDraft) ([]uint, error) {
	var holders []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if holders, err = lockRecipe(tx, recipe.ID); err != nil {
			return err
		}
		tags, err := checkReferences(tx, draft)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         draft.Name,
			"text":         draft.Text,
			"cooking_time": draft.CookingTime,
		}
		if draft.Image != "" {
			updates["image"] = draft.Image
		}
		if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&domain.RecipeIngredientEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear ingredient entries: %w", err)
		}

		return writeComposition(tx, recipe, draft, tags)
	})
	if err != nil {
		return nil, err
	}
	return holders, nil
}

// Delete removes a recipe together with its entries, tag links and memberships.
// It returns the users whose cart held the recipe.
func (r *GormRecipeRepository) Delete(ctx context.Context, id uint) ([]uint, error) {
	var holders []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if holders, err = lockRecipe(tx, id); err != nil {
			return err
		}
		recipe := &domain.Recipe{ID: id}

		for _, model := range []interface{}{&domain.Favorite{}, &domain.CartItem{}, &domain.RecipeIngredientEntry{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to detach tags: %w", err)
		}

		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return holders, nil
}

func (r *GormRecipeRepository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	return membership.Add(ctx, r.db, FavoriteRelation, userID, recipeID)
}

func (r *GormRecipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return membership.Remove(ctx, r.db, FavoriteRelation, userID, recipeID)
}

func (r *GormRecipeRepository) AddToCart(ctx context.Context, userID, recipeID uint) error {
	return membership.Add(ctx, r.db, CartRelation, userID, recipeID)
}

func (r *GormRecipeRepository) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return membership.Remove(ctx, r.db, CartRelation, userID, recipeID)
}

// Flags resolves favourite and cart membership of viewerID for a page of recipes
func (r *GormRecipeRepository) Flags(ctx context.Context, viewerID uint, recipeIDs []uint) (map[uint]bool, map[uint]bool, error) {
	favorited, err := membership.TargetsOf(ctx, r.db, FavoriteRelation, viewerID, recipeIDs)
	if err != nil {
		return nil, nil, err
	}
	inCart, err := membership.TargetsOf(ctx, r.db, CartRelation, viewerID, recipeIDs)
	if err != nil {
		return nil, nil, err
	}
	return favorited, inCart, nil
}

// CartUserIDs lists users whose cart holds the recipe
func (r *GormRecipeRepository) CartUserIDs(ctx context.Context, recipeID uint) ([]uint, error) {
	return membership.OwnersOf(ctx, r.db, CartRelation, recipeID)
}

// Stats counts how many users saved the recipe
func (r *GormRecipeRepository) Stats(ctx context.Context, recipeID uint) (*domain.RecipeStats, error) {
	favorites, err := membership.CountTargets(ctx, r.db, FavoriteRelation, recipeID)
	if err != nil {
		return nil, err
	}
	carts, err := membership.CountTargets(ctx, r.db, CartRelation, recipeID)
	if err != nil {
		return nil, err
	}
	return &domain.RecipeStats{
		RecipeID:            recipeID,
		TimesInFavourite:    favorites,
		TimesInShoppingCart: carts,
	}, nil
}

// ShoppingLines returns every ingredient entry of every recipe in the user's cart
func (r *GormRecipeRepository) ShoppingLines(ctx context.Context, userID uint) ([]domain.ShoppingLine, error) {
	var lines []domain.ShoppingLine
	err := r.db.WithContext(ctx).
		Table("shopping_cart AS sc").
		Select("i.name AS name, mu.name AS unit, e.amount AS amount").
		Joins("JOIN recipe_ingredient_entries e ON e.recipe_id = sc.recipe_id").
		Joins("JOIN ingredients i ON i.id = e.ingredient_id").
		Joins("JOIN measurement_units mu ON mu.id = i.measurement_unit_id").
		Where("sc.user_id = ?", userID).
		Order("e.id").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping lines: %w", err)
	}
	return lines, nil
}

// ShortByAuthors returns the newest recipes of each author, at most limit each (0 for all)
func (r *GormRecipeRepository) ShortByAuthors(ctx context.Context, authorIDs []uint, limit int) (map[uint][]domain.ShortRecipe, error) {
	byAuthor := make(map[uint][]domain.ShortRecipe, len(authorIDs))
	if len(authorIDs) == 0 {
		return byAuthor, nil
	}

	var recipes []domain.Recipe
	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recipes by authors: %w", err)
	}

	for i := range recipes {
		rec := &recipes[i]
		if limit > 0 && len(byAuthor[rec.AuthorID]) >= limit {
			continue
		}
		byAuthor[rec.AuthorID] = append(byAuthor[rec.AuthorID], rec.Short())
	}
	return byAuthor, nil
}

// CountByAuthors returns the number of recipes per author
func (r *GormRecipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes by authors: %w", err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
