package command

import (
	"context"
	"encoding/base64"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/recipe/cache"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/internal/recipe/repository"
	"github.com/tair/foodgram/internal/testutil"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/storage"
)

var pixel = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))

type env struct {
	repo    *repository.GormRecipeRepository
	catalog *repository.GormCatalogRepository
	fx      *testutil.Fixtures
	images  storage.ImageStore
	media   string
	bus     *kafka.LocalBus
	events  []kafka.Event
}

func newEnv(t *testing.T) *env {
	db := testutil.NewDB(t)
	media := t.TempDir()
	e := &env{
		repo:    repository.NewGormRecipeRepository(db),
		catalog: repository.NewGormCatalogRepository(db),
		fx:      testutil.NewFixtures(t, db),
		images:  storage.NewLocalStore(media, "/media"),
		media:   media,
		bus:     kafka.NewLocalBus(),
	}
	record := func(_ context.Context, ev kafka.Event) error {
		e.events = append(e.events, ev)
		return nil
	}
	for _, et := range []string{
		kafka.EventTypeRecipeCreated,
		kafka.EventTypeRecipeUpdated,
		kafka.EventTypeRecipeDeleted,
		kafka.EventTypeFavoriteAdded,
		kafka.EventTypeCartAdded,
	} {
		e.bus.RegisterHandler(et, record)
	}
	return e
}

// storedImages counts the files written to the media root.
func (e *env) storedImages(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(e.media, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return err
	})
	require.NoError(t, err)
	return n
}

func (e *env) draft(t *testing.T) domain.RecipeDraft {
	t.Helper()
	tag := e.fx.Tag("dinner")
	flour := e.fx.Ingredient("flour", "g")
	return domain.RecipeDraft{
		Name:        "Bread",
		Text:        "Knead and bake",
		Image:       pixel,
		CookingTime: 90,
		Ingredients: []domain.IngredientInput{{ID: flour.ID, Amount: 500}},
		TagIDs:      []uint{tag.ID},
	}
}

func TestCreateRecipe(t *testing.T) {
	e := newEnv(t)
	author := e.fx.User("baker")
	h := NewCreateRecipeHandler(e.repo, e.images, e.bus)
	ctx := context.Background()

	recipe, err := h.Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: e.draft(t)})
	require.NoError(t, err)
	assert.NotZero(t, recipe.ID)
	assert.True(t, strings.HasPrefix(recipe.Image, "/media/"+ImagePrefix+"/"), recipe.Image)
	assert.True(t, strings.HasSuffix(recipe.Image, ".png"), recipe.Image)

	require.Len(t, e.events, 1)
	assert.Equal(t, kafka.EventTypeRecipeCreated, e.events[0].EventType)
	assert.Equal(t, recipe.ID, e.events[0].RecipeID)
}

func TestCreateRecipeRejections(t *testing.T) {
	e := newEnv(t)
	author := e.fx.User("baker")
	h := NewCreateRecipeHandler(e.repo, e.images, nil)
	ctx := context.Background()
	base := e.draft(t)

	_, err := h.Handle(ctx, CreateRecipeCommand{Draft: base})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	noImage := base
	noImage.Image = ""
	_, err = h.Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: noImage})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, domain.MsgImageRequired, apperr.MessageOf(err))

	badImage := base
	badImage.Image = "data:image/png;base64,!!!"
	_, err = h.Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: badImage})
	assert.Equal(t, domain.MsgImageInvalid, apperr.MessageOf(err))

	dupIngredients := base
	dupIngredients.Ingredients = append([]domain.IngredientInput{}, base.Ingredients[0], base.Ingredients[0])
	_, err = h.Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: dupIngredients})
	assert.Equal(t, domain.MsgDuplicateIngredients, apperr.MessageOf(err))

	unknownTag := base
	unknownTag.TagIDs = []uint{4242}
	_, err = h.Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: unknownTag})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	unknownIngredient := base
	unknownIngredient.Ingredients = []domain.IngredientInput{{ID: 4242, Amount: 1}}
	_, err = h.Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: unknownIngredient})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	count, err := e.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, e.storedImages(t), "rolled back creates must not leave images behind")
}

func TestUpdateRecipePermissionsAndReplace(t *testing.T) {
	e := newEnv(t)
	author := e.fx.User("baker")
	other := e.fx.User("thief")
	ctx := context.Background()

	recipe, err := NewCreateRecipeHandler(e.repo, e.images, nil).Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: e.draft(t)})
	require.NoError(t, err)

	h := NewUpdateRecipeHandler(e.repo, e.images, e.bus)
	water := e.fx.Ingredient("water", "ml")
	breakfast := e.fx.Tag("breakfast")
	next := domain.RecipeDraft{
		Name:        "Flatbread",
		Text:        "Roll thin",
		CookingTime: 15,
		Ingredients: []domain.IngredientInput{{ID: water.ID, Amount: 200}},
		TagIDs:      []uint{breakfast.ID},
	}

	_, err = h.Handle(ctx, UpdateRecipeCommand{RecipeID: 4242, Actor: auth.Principal{UserID: author.ID}, Draft: next})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Permission is checked before the payload.
	_, err = h.Handle(ctx, UpdateRecipeCommand{RecipeID: recipe.ID, Actor: auth.Principal{UserID: other.ID}, Draft: domain.RecipeDraft{}})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	updated, err := h.Handle(ctx, UpdateRecipeCommand{RecipeID: recipe.ID, Actor: auth.Principal{UserID: author.ID}, Draft: next})
	require.NoError(t, err)
	assert.Equal(t, "Flatbread", updated.Name)
	assert.Equal(t, recipe.Image, updated.Image)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, water.ID, updated.Ingredients[0].IngredientID)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, breakfast.ID, updated.Tags[0].ID)

	next.Image = pixel
	admin := auth.Principal{UserID: other.ID, Role: auth.RoleAdmin}
	updated, err = h.Handle(ctx, UpdateRecipeCommand{RecipeID: recipe.ID, Actor: admin, Draft: next})
	require.NoError(t, err)
	assert.NotEqual(t, recipe.Image, updated.Image)
	assert.Equal(t, 2, e.storedImages(t))

	broken := next
	broken.TagIDs = []uint{4242}
	_, err = h.Handle(ctx, UpdateRecipeCommand{RecipeID: recipe.ID, Actor: admin, Draft: broken})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, 2, e.storedImages(t))
}

// cartDuringUpdate adds a recipe to a cart right after the handler loaded it.
type cartDuringUpdate struct {
	domain.RecipeRepository
	onFind func(id uint)
}

func (r *cartDuringUpdate) FindHeader(ctx context.Context, id uint) (*domain.Recipe, error) {
	recipe, err := r.RecipeRepository.FindHeader(ctx, id)
	if err == nil && r.onFind != nil {
		r.onFind(id)
		r.onFind = nil
	}
	return recipe, err
}

func TestUpdateRecipeNotifiesLateCartHolders(t *testing.T) {
	e := newEnv(t)
	author := e.fx.User("baker")
	early := e.fx.User("early")
	late := e.fx.User("late")
	ctx := context.Background()

	draft := e.draft(t)
	recipe, err := NewCreateRecipeHandler(e.repo, e.images, nil).Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: draft})
	require.NoError(t, err)
	require.NoError(t, e.repo.AddToCart(ctx, early.ID, recipe.ID))

	repo := &cartDuringUpdate{RecipeRepository: e.repo, onFind: func(id uint) {
		require.NoError(t, e.repo.AddToCart(ctx, late.ID, id))
	}}
	next := draft
	next.Image = ""
	_, err = NewUpdateRecipeHandler(repo, e.images, e.bus).Handle(ctx, UpdateRecipeCommand{
		RecipeID: recipe.ID,
		Actor:    auth.Principal{UserID: author.ID},
		Draft:    next,
	})
	require.NoError(t, err)

	require.Len(t, e.events, 1)
	assert.Equal(t, kafka.EventTypeRecipeUpdated, e.events[0].EventType)
	assert.ElementsMatch(t, []uint{early.ID, late.ID}, e.events[0].AffectedUserIDs)
}

func TestDeleteRecipeNotifiesCartHolders(t *testing.T) {
	e := newEnv(t)
	author := e.fx.User("baker")
	shopper := e.fx.User("shopper")
	ctx := context.Background()

	recipe, err := NewCreateRecipeHandler(e.repo, e.images, nil).Handle(ctx, CreateRecipeCommand{AuthorID: author.ID, Draft: e.draft(t)})
	require.NoError(t, err)
	require.NoError(t, e.repo.AddToCart(ctx, shopper.ID, recipe.ID))

	h := NewDeleteRecipeHandler(e.repo, e.bus)
	err = h.Handle(ctx, DeleteRecipeCommand{RecipeID: recipe.ID, Actor: auth.Principal{UserID: shopper.ID}})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, h.Handle(ctx, DeleteRecipeCommand{RecipeID: recipe.ID, Actor: auth.Principal{UserID: author.ID}}))
	require.Len(t, e.events, 1)
	assert.Equal(t, kafka.EventTypeRecipeDeleted, e.events[0].EventType)
	assert.Equal(t, []uint{shopper.ID}, e.events[0].AffectedUserIDs)

	err = h.Handle(ctx, DeleteRecipeCommand{RecipeID: recipe.ID, Actor: auth.Principal{UserID: author.ID}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRecipeListToggles(t *testing.T) {
	e := newEnv(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	lists := cache.NewRedisShoppingListCache(client, 0)

	author := e.fx.User("baker")
	shopper := e.fx.User("shopper")
	lunch := e.fx.Tag("lunch")
	egg := e.fx.Ingredient("egg", "pcs")
	recipe := e.fx.Recipe(author, "Omelette", []*domain.Tag{lunch}, testutil.Line{Ingredient: egg, Amount: 3})
	ctx := context.Background()
	cmd := RecipeListCommand{UserID: shopper.ID, RecipeID: recipe.ID}

	short, err := NewAddFavoriteHandler(e.repo, e.bus).Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "Omelette", short.Name)

	_, err = NewAddFavoriteHandler(e.repo, e.bus).Handle(ctx, cmd)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, domain.MsgAlreadyFavorited, apperr.MessageOf(err))

	require.NoError(t, NewRemoveFavoriteHandler(e.repo, e.bus).Handle(ctx, cmd))
	err = NewRemoveFavoriteHandler(e.repo, e.bus).Handle(ctx, cmd)
	assert.Equal(t, domain.MsgNotFavorited, apperr.MessageOf(err))

	version, err := lists.Version(ctx, shopper.ID)
	require.NoError(t, err)
	require.NoError(t, lists.Set(ctx, shopper.ID, version, []domain.ShoppingItem{}))
	_, err = NewAddToCartHandler(e.repo, lists, e.bus).Handle(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ShoppingListKey(shopper.ID)))

	_, err = NewAddToCartHandler(e.repo, lists, e.bus).Handle(ctx, cmd)
	assert.Equal(t, domain.MsgAlreadyInCart, apperr.MessageOf(err))

	version, err = lists.Version(ctx, shopper.ID)
	require.NoError(t, err)
	require.NoError(t, lists.Set(ctx, shopper.ID, version, []domain.ShoppingItem{}))
	require.NoError(t, NewRemoveFromCartHandler(e.repo, lists, e.bus).Handle(ctx, cmd))
	assert.False(t, mr.Exists(cache.ShoppingListKey(shopper.ID)))

	err = NewRemoveFromCartHandler(e.repo, lists, e.bus).Handle(ctx, cmd)
	assert.Equal(t, domain.MsgNotInCart, apperr.MessageOf(err))

	_, err = NewAddToCartHandler(e.repo, lists, e.bus).Handle(ctx, RecipeListCommand{UserID: shopper.ID, RecipeID: 4242})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	var types []string
	for _, ev := range e.events {
		types = append(types, ev.EventType)
	}
	assert.Equal(t, []string{kafka.EventTypeFavoriteAdded, kafka.EventTypeCartAdded}, types)
}

func TestInvalidateShoppingListsHandler(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	lists := cache.NewRedisShoppingListCache(client, 0)
	ctx := context.Background()

	for _, id := range []uint{1, 2, 3} {
		require.NoError(t, lists.Set(ctx, id, 0, []domain.ShoppingItem{{Name: "egg", Unit: "pcs", Amount: 1}}))
	}

	bus := kafka.NewLocalBus()
	NewInvalidateShoppingListsHandler(lists).Register(bus)

	require.NoError(t, bus.Publish(ctx, kafka.Event{EventType: kafka.EventTypeRecipeUpdated, RecipeID: 9, AffectedUserIDs: []uint{1}}))
	require.NoError(t, bus.Publish(ctx, kafka.Event{EventType: kafka.EventTypeRecipeDeleted, RecipeID: 9, AffectedUserIDs: []uint{2}}))
	require.NoError(t, bus.Publish(ctx, kafka.Event{EventType: kafka.EventTypeRecipeDeleted, RecipeID: 9}))

	assert.False(t, mr.Exists(cache.ShoppingListKey(1)))
	assert.False(t, mr.Exists(cache.ShoppingListKey(2)))
	assert.True(t, mr.Exists(cache.ShoppingListKey(3)))
}

func TestCatalogCommands(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tag, err := NewCreateTagHandler(e.catalog).Handle(ctx, CreateTagCommand{Name: "Vegan", Slug: "vegan"})
	require.NoError(t, err)
	assert.NotZero(t, tag.ID)

	_, err = NewCreateTagHandler(e.catalog).Handle(ctx, CreateTagCommand{Name: "Vegan", Slug: "vegan"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, domain.MsgTagSlugExists, apperr.MessageOf(err))

	_, err = NewCreateTagHandler(e.catalog).Handle(ctx, CreateTagCommand{Name: "x", Slug: "a b"})
	assert.Equal(t, domain.MsgInvalidSlug, apperr.MessageOf(err))

	ing, err := NewCreateIngredientHandler(e.catalog).Handle(ctx, CreateIngredientCommand{Name: "salt", MeasurementUnit: "pinch"})
	require.NoError(t, err)
	assert.Equal(t, "pinch", ing.MeasurementUnit.Name)

	err = NewDeleteUnitHandler(e.catalog).Handle(ctx, ing.MeasurementUnitID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, domain.MsgUnitInUse, apperr.MessageOf(err))

	require.NoError(t, NewDeleteIngredientHandler(e.catalog).Handle(ctx, ing.ID))
	require.NoError(t, NewDeleteUnitHandler(e.catalog).Handle(ctx, ing.MeasurementUnitID))

	err = NewDeleteIngredientHandler(e.catalog).Handle(ctx, ing.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
