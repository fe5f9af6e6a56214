package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/foodgram/internal/apperr"
	userdomain "github.com/tair/foodgram/internal/user/domain"
)

func validDraft() RecipeDraft {
	return RecipeDraft{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Ingredients: []IngredientInput{{ID: 1, Amount: 200}, {ID: 2, Amount: 50}},
		TagIDs:      []uint{1, 2},
	}
}

func TestRecipeDraftValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *RecipeDraft)
		want   string
	}{
		{"valid", func(d *RecipeDraft) {}, ""},
		{"no ingredients", func(d *RecipeDraft) { d.Ingredients = nil }, MsgNoIngredients},
		{"zero amount", func(d *RecipeDraft) { d.Ingredients[1].Amount = 0 }, MsgAmountNotPositive},
		{"negative amount", func(d *RecipeDraft) { d.Ingredients[0].Amount = -5 }, MsgAmountNotPositive},
		{"duplicate ingredient", func(d *RecipeDraft) { d.Ingredients[1].ID = 1 }, MsgDuplicateIngredients},
		{"no tags", func(d *RecipeDraft) { d.TagIDs = []uint{} }, MsgNoTags},
		{"duplicate tag", func(d *RecipeDraft) { d.TagIDs = []uint{3, 3} }, MsgDuplicateTags},
		{"zero cooking time", func(d *RecipeDraft) { d.CookingTime = 0 }, MsgCookingTimeInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			err := d.Validate()
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tc.want, apperr.MessageOf(err))
		})
	}
}

func TestDraftEntriesKeepOrder(t *testing.T) {
	d := validDraft()
	d.Ingredients = []IngredientInput{{ID: 9, Amount: 1}, {ID: 3, Amount: 2}}

	entries := d.Entries(42)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(9), entries[0].IngredientID)
	assert.Equal(t, uint(42), entries[1].RecipeID)
	assert.Equal(t, []uint{9, 3}, d.IngredientIDs())
}

func TestAggregateMergesByNameAndUnit(t *testing.T) {
	lines := []ShoppingLine{
		{Name: "flour", Unit: "g", Amount: 200},
		{Name: "egg", Unit: "pcs", Amount: 2},
		{Name: "flour", Unit: "g", Amount: 100},
	}

	items := Aggregate(lines)
	assert.Equal(t, []ShoppingItem{
		{Name: "egg", Unit: "pcs", Amount: 2},
		{Name: "flour", Unit: "g", Amount: 300},
	}, items)
}

func TestAggregateKeepsUnitsApart(t *testing.T) {
	items := Aggregate([]ShoppingLine{
		{Name: "milk", Unit: "ml", Amount: 200},
		{Name: "milk", Unit: "cup", Amount: 1},
		{Name: "milk", Unit: "ml", Amount: 50},
	})

	assert.Equal(t, []ShoppingItem{
		{Name: "milk", Unit: "cup", Amount: 1},
		{Name: "milk", Unit: "ml", Amount: 250},
	}, items)
}

func TestRenderShoppingList(t *testing.T) {
	body := RenderShoppingList([]ShoppingItem{
		{Name: "egg", Unit: "pcs", Amount: 2},
		{Name: "flour", Unit: "g", Amount: 300},
	})
	assert.Equal(t, "egg  2 pcs\nflour  300 g\n", string(body))

	assert.Empty(t, RenderShoppingList(Aggregate(nil)))
}

func TestRecipeView(t *testing.T) {
	author := &userdomain.User{ID: 5, Username: "chef", Email: "chef@example.com"}
	r := &Recipe{
		ID:       1,
		AuthorID: 5,
		Author:   author,
		Name:     "Omelette",
		Ingredients: []RecipeIngredientEntry{
			{Amount: 3, Ingredient: Ingredient{ID: 7, Name: "egg", MeasurementUnit: MeasurementUnit{Name: "pcs"}}},
		},
		CookingTime: 10,
	}

	v := r.View(Flags{Favorited: true, AuthorSubscribed: true})
	assert.True(t, v.IsFavorited)
	assert.False(t, v.IsInShoppingCart)
	assert.True(t, v.Author.IsSubscribed)
	assert.Equal(t, "chef", v.Author.Username)
	assert.NotNil(t, v.Tags)
	assert.Equal(t, []IngredientAmount{{ID: 7, Name: "egg", MeasurementUnit: "pcs", Amount: 3}}, v.Ingredients)

	assert.Equal(t, ShortRecipe{ID: 1, Name: "Omelette", CookingTime: 10}, r.Short())
}
