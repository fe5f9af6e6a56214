package domain

import (
	"github.com/tair/foodgram/internal/apperr"
)

// IngredientInput is one submitted ingredient line.
type IngredientInput struct {
	ID     uint
	Amount int
}

// RecipeDraft is the submitted state of a recipe on create or update.
type RecipeDraft struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []IngredientInput
	TagIDs      []uint
}

// Validate checks the invariants that hold for every stored recipe.
func (d RecipeDraft) Validate() error {
	if len(d.Ingredients) == 0 {
		return apperr.Validation(MsgNoIngredients)
	}
	seen := make(map[uint]struct{}, len(d.Ingredients))
	for _, in := range d.Ingredients {
		if in.Amount <= 0 {
			return apperr.Validation(MsgAmountNotPositive)
		}
		if _, dup := seen[in.ID]; dup {
			return apperr.Validation(MsgDuplicateIngredients)
		}
		seen[in.ID] = struct{}{}
	}

	if len(d.TagIDs) == 0 {
		return apperr.Validation(MsgNoTags)
	}
	tags := make(map[uint]struct{}, len(d.TagIDs))
	for _, id := range d.TagIDs {
		if _, dup := tags[id]; dup {
			return apperr.Validation(MsgDuplicateTags)
		}
		tags[id] = struct{}{}
	}

	if d.CookingTime <= 0 {
		return apperr.Validation(MsgCookingTimeInvalid)
	}
	return nil
}

// IngredientIDs returns the submitted ingredient ids in order.
func (d RecipeDraft) IngredientIDs() []uint {
	ids := make([]uint, len(d.Ingredients))
	for i, in := range d.Ingredients {
		ids[i] = in.ID
	}
	return ids
}

// Entries builds the line items in submission order.
func (d RecipeDraft) Entries(recipeID uint) []RecipeIngredientEntry {
	entries := make([]RecipeIngredientEntry, len(d.Ingredients))
	for i, in := range d.Ingredients {
		entries[i] = RecipeIngredientEntry{RecipeID: recipeID, IngredientID: in.ID, Amount: in.Amount}
	}
	return entries
}
