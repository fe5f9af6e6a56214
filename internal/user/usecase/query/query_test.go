package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recipedomain "github.com/tair/foodgram/internal/recipe/domain"
	reciperepo "github.com/tair/foodgram/internal/recipe/repository"
	"github.com/tair/foodgram/internal/testutil"
	"github.com/tair/foodgram/internal/user/repository"
	"github.com/tair/foodgram/pkg/pagination"
)

func TestGetUserSubscribedFlag(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()

	reader := fx.User("reader")
	chef := fx.User("chef")
	require.NoError(t, repo.Subscribe(ctx, reader.ID, chef.ID))

	h := NewGetUserHandler(repo)

	profile, err := h.Handle(ctx, GetUserQuery{ID: chef.ID, ViewerID: reader.ID})
	require.NoError(t, err)
	assert.True(t, profile.IsSubscribed)
	assert.Equal(t, "chef", profile.Username)

	anon, err := h.Handle(ctx, GetUserQuery{ID: chef.ID})
	require.NoError(t, err)
	assert.False(t, anon.IsSubscribed)
}

func TestListUsers(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()

	reader := fx.User("reader")
	chef := fx.User("chef")
	fx.User("baker")
	require.NoError(t, repo.Subscribe(ctx, reader.ID, chef.ID))

	profiles, total, err := NewListUsersHandler(repo, pagination.DefaultLimits).Handle(ctx, ListUsersQuery{
		ViewerID: reader.ID,
		Page:     pagination.Params{Page: 1, Limit: 2},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, profiles, 2)
	assert.False(t, profiles[0].IsSubscribed)
	assert.True(t, profiles[1].IsSubscribed)
}

func TestListSubscriptionsEmbedsRecipes(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormUserRepository(db)
	recipes := reciperepo.NewGormRecipeRepository(db)
	ctx := context.Background()

	reader := fx.User("reader")
	chef := fx.User("chef")
	quiet := fx.User("quiet")
	lunch := fx.Tag("lunch")
	egg := fx.Ingredient("egg", "pcs")
	line := testutil.Line{Ingredient: egg, Amount: 2}

	fx.Recipe(chef, "Omelette", []*recipedomain.Tag{lunch}, line)
	second := fx.Recipe(chef, "Frittata", []*recipedomain.Tag{lunch}, line)
	third := fx.Recipe(chef, "Shakshuka", []*recipedomain.Tag{lunch}, line)

	require.NoError(t, repo.Subscribe(ctx, reader.ID, chef.ID))
	require.NoError(t, repo.Subscribe(ctx, reader.ID, quiet.ID))

	subs, total, err := NewListSubscriptionsHandler(repo, recipes, pagination.DefaultLimits).Handle(ctx, ListSubscriptionsQuery{
		UserID:       reader.ID,
		RecipesLimit: 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, subs, 2)

	assert.Equal(t, chef.ID, subs[0].ID)
	assert.True(t, subs[0].IsSubscribed)
	assert.EqualValues(t, 3, subs[0].RecipesCount)
	require.Len(t, subs[0].Recipes, 2)
	assert.Equal(t, third.ID, subs[0].Recipes[0].ID)
	assert.Equal(t, second.ID, subs[0].Recipes[1].ID)

	assert.Equal(t, quiet.ID, subs[1].ID)
	assert.Zero(t, subs[1].RecipesCount)
	assert.NotNil(t, subs[1].Recipes)
	assert.Empty(t, subs[1].Recipes)
}

func TestGetSubscriptionAllRecipes(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormUserRepository(db)
	recipes := reciperepo.NewGormRecipeRepository(db)

	chef := fx.User("chef")
	lunch := fx.Tag("lunch")
	egg := fx.Ingredient("egg", "pcs")
	for _, name := range []string{"a", "b", "c"} {
		fx.Recipe(chef, name, []*recipedomain.Tag{lunch}, testutil.Line{Ingredient: egg, Amount: 1})
	}

	sub, err := NewGetSubscriptionHandler(repo, recipes).Handle(context.Background(), GetSubscriptionQuery{AuthorID: chef.ID})
	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 3)
	assert.EqualValues(t, 3, sub.RecipesCount)
}
