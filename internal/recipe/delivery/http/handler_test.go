package http_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/foodgram/internal/recipe"
	"github.com/tair/foodgram/internal/recipe/cache"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/internal/recipe/usecase/command"
	"github.com/tair/foodgram/internal/testutil"
	userdomain "github.com/tair/foodgram/internal/user/domain"
	userrepo "github.com/tair/foodgram/internal/user/repository"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/httpx"
	"github.com/tair/foodgram/pkg/pagination"
	"github.com/tair/foodgram/pkg/storage"
)

var pixel = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))

type server struct {
	router *mux.Router
	fx     *testutil.Fixtures
	redis  *miniredis.Miniredis

	alice *userdomain.User
	bob   *userdomain.User
	admin *userdomain.User

	breakfast *domain.Tag
	lunch     *domain.Tag
	flour     *domain.Ingredient
	egg       *domain.Ingredient
}

func newServer(t *testing.T) *server {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	lists := cache.NewRedisShoppingListCache(client, time.Minute)

	bus := kafka.NewLocalBus()
	command.NewInvalidateShoppingListsHandler(lists).Register(bus)

	h, err := recipe.InitializeHTTPHandler(
		db,
		userrepo.NewGormUserRepository(db),
		lists,
		storage.NewLocalStore(t.TempDir(), "http://localhost/media"),
		bus,
		nil,
		httpx.NewValidator(),
		prometheus.NewRegistry(),
		pagination.DefaultLimits,
	)
	require.NoError(t, err)

	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/api").Subrouter())

	return &server{
		router:    router,
		fx:        fx,
		redis:     mr,
		alice:     fx.User("alice"),
		bob:       fx.User("bob"),
		admin:     fx.Admin("root"),
		breakfast: fx.Tag("breakfast"),
		lunch:     fx.Tag("lunch"),
		flour:     fx.Ingredient("flour", "g"),
		egg:       fx.Ingredient("egg", "pcs"),
	}
}

func (s *server) do(t *testing.T, method, path, body string, user *userdomain.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, err := auth.GenerateToken(user.ID, user.Username, user.Role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.False(t, env.Success)
	return env.Error
}

func recipeBody(name string, tags []uint, lines map[uint]int, image string) string {
	type line struct {
		ID     uint `json:"id"`
		Amount int  `json:"amount"`
	}
	payload := struct {
		Ingredients []line `json:"ingredients"`
		Tags        []uint `json:"tags"`
		Image       string `json:"image,omitempty"`
		Name        string `json:"name"`
		Text        string `json:"text"`
		CookingTime int    `json:"cooking_time"`
	}{Tags: tags, Image: image, Name: name, Text: "Mix and bake", CookingTime: 30}
	payload.Ingredients = []line{}
	for id, amount := range lines {
		payload.Ingredients = append(payload.Ingredients, line{ID: id, Amount: amount})
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func recipePath(id uint, suffix string) string {
	return fmt.Sprintf("/api/recipes/%d%s", id, suffix)
}

func (s *server) create(t *testing.T, author *userdomain.User, name string) domain.RecipeView {
	t.Helper()
	body := recipeBody(name, []uint{s.lunch.ID}, map[uint]int{s.flour.ID: 300, s.egg.ID: 2}, pixel)
	rec := s.do(t, http.MethodPost, "/api/recipes", body, author)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.RecipeView](t, rec)
}

func TestCreateRecipe(t *testing.T) {
	s := newServer(t)

	view := s.create(t, s.alice, "Pancakes")
	assert.Equal(t, "Pancakes", view.Name)
	assert.Equal(t, s.alice.ID, view.Author.ID)
	assert.True(t, strings.HasPrefix(view.Image, "http://localhost/media/recipes/"), view.Image)
	require.Len(t, view.Tags, 1)
	assert.Equal(t, "lunch", view.Tags[0].Slug)
	assert.Len(t, view.Ingredients, 2)
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)
}

func TestCreateRecipeRejections(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name   string
		body   string
		user   *userdomain.User
		status int
		msg    string
	}{
		{"anonymous", recipeBody("x", []uint{s.lunch.ID}, map[uint]int{s.flour.ID: 1}, pixel), nil, http.StatusUnauthorized, ""},
		{"no image", recipeBody("x", []uint{s.lunch.ID}, map[uint]int{s.flour.ID: 1}, ""), s.alice, http.StatusBadRequest, domain.MsgImageRequired},
		{"bad image", recipeBody("x", []uint{s.lunch.ID}, map[uint]int{s.flour.ID: 1}, "not-a-uri"), s.alice, http.StatusBadRequest, domain.MsgImageInvalid},
		{"no ingredients", recipeBody("x", []uint{s.lunch.ID}, nil, pixel), s.alice, http.StatusBadRequest, domain.MsgNoIngredients},
		{"zero amount", recipeBody("x", []uint{s.lunch.ID}, map[uint]int{s.flour.ID: 0}, pixel), s.alice, http.StatusBadRequest, domain.MsgAmountNotPositive},
		{"no tags", recipeBody("x", nil, map[uint]int{s.flour.ID: 1}, pixel), s.alice, http.StatusBadRequest, domain.MsgNoTags},
		{"duplicate tags", recipeBody("x", []uint{s.lunch.ID, s.lunch.ID}, map[uint]int{s.flour.ID: 1}, pixel), s.alice, http.StatusBadRequest, domain.MsgDuplicateTags},
		{"unknown ingredient", recipeBody("x", []uint{s.lunch.ID}, map[uint]int{999: 1}, pixel), s.alice, http.StatusNotFound, domain.MsgIngredientNotFound},
		{"unknown tag", recipeBody("x", []uint{999}, map[uint]int{s.flour.ID: 1}, pixel), s.alice, http.StatusNotFound, domain.MsgTagNotFound},
		{"missing name", recipeBody("", []uint{s.lunch.ID}, map[uint]int{s.flour.ID: 1}, pixel), s.alice, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/recipes", tc.body, tc.user)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.msg != "" {
				assert.Equal(t, tc.msg, errorOf(t, rec))
			}
		})
	}

	rec := s.do(t, http.MethodGet, "/api/recipes", "", nil)
	page := decode[pagination.Page[domain.RecipeView]](t, rec)
	assert.Zero(t, page.Count)
}

func TestUpdateAndDeletePermissions(t *testing.T) {
	s := newServer(t)
	view := s.create(t, s.alice, "Pancakes")

	update := recipeBody("Crepes", []uint{s.breakfast.ID}, map[uint]int{s.egg.ID: 3}, "")

	rec := s.do(t, http.MethodPatch, recipePath(view.ID, ""), update, s.bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, recipePath(999, ""), update, s.alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, recipePath(view.ID, ""), update, s.alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.RecipeView](t, rec)
	assert.Equal(t, "Crepes", updated.Name)
	assert.Equal(t, view.Image, updated.Image)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, 3, updated.Ingredients[0].Amount)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "breakfast", updated.Tags[0].Slug)

	rec = s.do(t, http.MethodDelete, recipePath(view.ID, ""), "", s.bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, recipePath(view.ID, ""), "", s.admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, recipePath(view.ID, ""), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoriteToggle(t *testing.T) {
	s := newServer(t)
	view := s.create(t, s.alice, "Pancakes")

	rec := s.do(t, http.MethodGet, recipePath(view.ID, "/favorite"), "", s.bob)
	require.Equal(t, http.StatusCreated, rec.Code)
	short := decode[domain.ShortRecipe](t, rec)
	assert.Equal(t, view.ID, short.ID)
	assert.Equal(t, 30, short.CookingTime)

	rec = s.do(t, http.MethodGet, recipePath(view.ID, "/favorite"), "", s.bob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgAlreadyFavorited, errorOf(t, rec))

	rec = s.do(t, http.MethodGet, recipePath(view.ID, ""), "", s.bob)
	assert.True(t, decode[domain.RecipeView](t, rec).IsFavorited)

	rec = s.do(t, http.MethodGet, recipePath(view.ID, "/stats"), "", nil)
	stats := decode[domain.RecipeStats](t, rec)
	assert.EqualValues(t, 1, stats.TimesInFavourite)

	rec = s.do(t, http.MethodDelete, recipePath(view.ID, "/favorite"), "", s.bob)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, recipePath(view.ID, "/favorite"), "", s.bob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgNotFavorited, errorOf(t, rec))

	rec = s.do(t, http.MethodGet, recipePath(999, "/favorite"), "", s.bob)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFiltersAndAnonymousFlags(t *testing.T) {
	s := newServer(t)
	pancakes := s.create(t, s.alice, "Pancakes")
	soup := s.create(t, s.bob, "Soup")

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodGet, recipePath(soup.ID, "/favorite"), "", s.alice).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodGet, recipePath(pancakes.ID, "/shopping_cart"), "", s.alice).Code)

	list := func(query string, user *userdomain.User) pagination.Page[domain.RecipeView] {
		rec := s.do(t, http.MethodGet, "/api/recipes"+query, "", user)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[pagination.Page[domain.RecipeView]](t, rec)
	}

	all := list("", nil)
	assert.EqualValues(t, 2, all.Count)
	for _, v := range all.Results {
		assert.False(t, v.IsFavorited)
		assert.False(t, v.IsInShoppingCart)
	}
	assert.Equal(t, soup.ID, all.Results[0].ID)

	assert.EqualValues(t, 2, list("?is_favorited=1", nil).Count)

	fav := list("?is_favorited=true", s.alice)
	require.Len(t, fav.Results, 1)
	assert.Equal(t, soup.ID, fav.Results[0].ID)
	assert.True(t, fav.Results[0].IsFavorited)

	cart := list("?is_in_shopping_cart=1", s.alice)
	require.Len(t, cart.Results, 1)
	assert.True(t, cart.Results[0].IsInShoppingCart)

	assert.EqualValues(t, 2, list("?is_favorited=0", s.alice).Count)
	assert.EqualValues(t, 1, list(fmt.Sprintf("?author=%d", s.alice.ID), nil).Count)
	assert.EqualValues(t, 0, list("?author=abc", nil).Count)
	assert.EqualValues(t, 0, list("?author=0", nil).Count)
	assert.EqualValues(t, 2, list("?author=", nil).Count)
	assert.EqualValues(t, 2, list("?tags=", nil).Count)
	assert.EqualValues(t, 2, list("?tags=&tags=lunch", nil).Count)
	assert.EqualValues(t, 2, list("?tags=lunch&tags=breakfast", nil).Count)
	assert.EqualValues(t, 0, list("?tags=breakfast", nil).Count)
	assert.EqualValues(t, 0, list("?tags=nope", nil).Count)

	paged := list("?limit=1&page=2", nil)
	require.Len(t, paged.Results, 1)
	assert.Equal(t, pancakes.ID, paged.Results[0].ID)
	assert.NotNil(t, paged.Previous)
	assert.Nil(t, paged.Next)
}

func TestDownloadShoppingCart(t *testing.T) {
	s := newServer(t)
	pancakes := s.create(t, s.alice, "Pancakes")

	bread := recipeBody("Bread", []uint{s.lunch.ID}, map[uint]int{s.flour.ID: 200}, pixel)
	rec := s.do(t, http.MethodPost, "/api/recipes", bread, s.alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	breadView := decode[domain.RecipeView](t, rec)

	rec = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", "", s.bob)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodGet, recipePath(pancakes.ID, "/shopping_cart"), "", s.bob).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodGet, recipePath(breadView.ID, "/shopping_cart"), "", s.bob).Code)

	rec = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", "", s.bob)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="to_buy.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "egg  2 pcs\nflour  500 g\n", rec.Body.String())
	assert.True(t, s.redis.Exists(cache.ShoppingListKey(s.bob.ID)))

	// Removing from the cart evicts the cached list.
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, recipePath(breadView.ID, "/shopping_cart"), "", s.bob).Code)
	assert.False(t, s.redis.Exists(cache.ShoppingListKey(s.bob.ID)))

	rec = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", "", s.bob)
	assert.Equal(t, "egg  2 pcs\nflour  300 g\n", rec.Body.String())

	// An author edit evicts the lists of every cart holder.
	update := recipeBody("Pancakes", []uint{s.lunch.ID}, map[uint]int{s.flour.ID: 100}, "")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, recipePath(pancakes.ID, ""), update, s.alice).Code)
	assert.False(t, s.redis.Exists(cache.ShoppingListKey(s.bob.ID)))

	rec = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", "", s.bob)
	assert.Equal(t, "flour  100 g\n", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/tags", `{"name":"Dinner","color":"#49B64E","slug":"dinner"}`, s.alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/tags", `{"name":"Dinner","color":"#49B64E","slug":"dinner"}`, s.admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/tags", `{"name":"Bad","slug":"no spaces"}`, s.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgInvalidSlug, errorOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/tags", "", nil)
	tags := decode[[]domain.Tag](t, rec)
	require.Len(t, tags, 3)
	assert.Equal(t, "breakfast", tags[0].Slug)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/tags/%d", s.lunch.ID), "", nil)
	assert.Equal(t, "lunch", decode[domain.Tag](t, rec).Slug)

	rec = s.do(t, http.MethodPost, "/api/ingredients", `{"name":"Fennel","measurement_unit":"bulb"}`, s.admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fennel := decode[domain.IngredientView](t, rec)
	assert.Equal(t, "bulb", fennel.MeasurementUnit)

	rec = s.do(t, http.MethodPost, "/api/ingredients", `{"name":"Fennel","measurement_unit":"bulb"}`, s.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgIngredientExists, errorOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/ingredients?name=FL", "", nil)
	found := decode[[]domain.IngredientView](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "flour", found[0].Name)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/ingredients/%d", s.egg.ID), "", nil)
	assert.Equal(t, "pcs", decode[domain.IngredientView](t, rec).MeasurementUnit)

	rec = s.do(t, http.MethodGet, "/api/units", "", nil)
	units := decode[[]domain.MeasurementUnit](t, rec)
	assert.Len(t, units, 3)
}

func TestRestrictOnDelete(t *testing.T) {
	s := newServer(t)
	s.create(t, s.alice, "Pancakes")

	rec := s.do(t, http.MethodDelete, fmt.Sprintf("/api/ingredients/%d", s.flour.ID), "", s.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgIngredientInUse, errorOf(t, rec))

	unitID := s.flour.MeasurementUnitID
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/units/%d", unitID), "", s.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgUnitInUse, errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/api/units", `{"name":"pinch"}`, s.admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	pinch := decode[domain.MeasurementUnit](t, rec)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/units/%d", pinch.ID), "", s.admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/units/%d", pinch.ID), "", s.admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
