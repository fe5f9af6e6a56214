package domain

import (
	"time"

	userdomain "github.com/tair/foodgram/internal/user/domain"
)

// Tag labels recipes. Slug is the filter key.
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:50;not null"`
	Color string `json:"color" gorm:"size:200;not null;default:''"`
	Slug  string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
}

func (Tag) TableName() string {
	return "tags"
}

// MeasurementUnit is a named unit such as "g" or "pcs".
type MeasurementUnit struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:20;uniqueIndex;not null"`
}

func (MeasurementUnit) TableName() string {
	return "measurement_units"
}

// Ingredient is unique by (name, unit).
type Ingredient struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"size:100;not null;uniqueIndex:ux_ingredients_name_unit"`
	MeasurementUnitID uint            `json:"-" gorm:"not null;uniqueIndex:ux_ingredients_name_unit;index"`
	MeasurementUnit   MeasurementUnit `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// IngredientView is the public ingredient representation.
type IngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// View renders the ingredient. MeasurementUnit must be loaded.
func (i Ingredient) View() IngredientView {
	return IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit.Name}
}

// RecipeIngredientEntry is one line item of a recipe.
type RecipeIngredientEntry struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	RecipeID     uint       `json:"-" gorm:"not null;index"`
	IngredientID uint       `json:"-" gorm:"not null;index"`
	Ingredient   Ingredient `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	Amount       int        `json:"amount" gorm:"not null;check:chk_entry_amount_positive,amount > 0"`
}

func (RecipeIngredientEntry) TableName() string {
	return "recipe_ingredient_entries"
}

// Recipe is the aggregate root. Tags and Ingredients are replaced wholesale on update.
type Recipe struct {
	ID          uint                    `json:"id" gorm:"primaryKey"`
	AuthorID    uint                    `json:"-" gorm:"not null;index"`
	Author      *userdomain.User        `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT"`
	Name        string                  `json:"name" gorm:"size:200;not null"`
	Image       string                  `json:"image" gorm:"not null"`
	Text        string                  `json:"text" gorm:"type:text;not null"`
	CookingTime int                     `json:"cooking_time" gorm:"not null;check:chk_recipe_cooking_time_positive,cooking_time > 0"`
	Tags        []Tag                   `json:"-" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredientEntry `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time               `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// Favorite marks a recipe as a user's favourite.
type Favorite struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"not null;uniqueIndex:ux_favorites_user_recipe"`
	User      *userdomain.User `gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uint             `gorm:"not null;uniqueIndex:ux_favorites_user_recipe;index"`
	Recipe    *Recipe          `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (Favorite) TableName() string {
	return "favorites"
}

// CartItem puts a recipe in a user's shopping cart.
type CartItem struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"not null;uniqueIndex:ux_shopping_cart_user_recipe"`
	User      *userdomain.User `gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uint             `gorm:"not null;uniqueIndex:ux_shopping_cart_user_recipe;index"`
	Recipe    *Recipe          `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (CartItem) TableName() string {
	return "shopping_cart"
}

// ShortRecipe is the compact representation returned by toggles and subscriptions.
type ShortRecipe struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Short renders the compact representation.
func (r *Recipe) Short() ShortRecipe {
	return ShortRecipe{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// IngredientAmount is an ingredient line in the full recipe representation.
type IngredientAmount struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full recipe representation for a particular viewer.
type RecipeView struct {
	ID               uint               `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           userdomain.Profile `json:"author"`
	Ingredients      []IngredientAmount `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// Flags are the viewer-relative derived booleans of one recipe.
type Flags struct {
	Favorited        bool
	InShoppingCart   bool
	AuthorSubscribed bool
}

// View renders r. Author, Tags and Ingredients (with units) must be loaded.
func (r *Recipe) View(flags Flags) RecipeView {
	ingredients := make([]IngredientAmount, 0, len(r.Ingredients))
	for _, e := range r.Ingredients {
		ingredients = append(ingredients, IngredientAmount{
			ID:              e.Ingredient.ID,
			Name:            e.Ingredient.Name,
			MeasurementUnit: e.Ingredient.MeasurementUnit.Name,
			Amount:          e.Amount,
		})
	}

	tags := r.Tags
	if tags == nil {
		tags = []Tag{}
	}

	var author userdomain.Profile
	if r.Author != nil {
		author = r.Author.Profile(flags.AuthorSubscribed)
	}

	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      flags.Favorited,
		IsInShoppingCart: flags.InShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

// RecipeStats reports how often a recipe is saved.
type RecipeStats struct {
	RecipeID            uint  `json:"recipe_id"`
	TimesInFavourite    int64 `json:"times_in_favourite"`
	TimesInShoppingCart int64 `json:"times_in_shopping_cart"`
}
