package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/internal/recipe/usecase/command"
	"github.com/tair/foodgram/internal/recipe/usecase/query"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/httpx"
	"github.com/tair/foodgram/pkg/logger"
	"github.com/tair/foodgram/pkg/pagination"
	"github.com/tair/foodgram/pkg/ratelimit"
)

// Query parameters of the recipe listing.
const (
	AuthorParam           = "author"
	TagsParam             = "tags"
	IsFavoritedParam      = "is_favorited"
	IsInShoppingCartParam = "is_in_shopping_cart"
)

// CommandHandlers groups the recipe write side
type CommandHandlers struct {
	Create         *command.CreateRecipeHandler
	Update         *command.UpdateRecipeHandler
	Delete         *command.DeleteRecipeHandler
	AddFavorite    *command.AddFavoriteHandler
	RemoveFavorite *command.RemoveFavoriteHandler
	AddToCart      *command.AddToCartHandler
	RemoveFromCart *command.RemoveFromCartHandler

	CreateTag        *command.CreateTagHandler
	CreateUnit       *command.CreateUnitHandler
	DeleteUnit       *command.DeleteUnitHandler
	CreateIngredient *command.CreateIngredientHandler
	DeleteIngredient *command.DeleteIngredientHandler
}

// QueryHandlers groups the recipe read side
type QueryHandlers struct {
	List         *query.ListRecipesHandler
	Get          *query.GetRecipeHandler
	Stats        *query.GetRecipeStatsHandler
	ShoppingList *query.DownloadShoppingListHandler

	ListTags          *query.ListTagsHandler
	GetTag            *query.GetTagHandler
	ListUnits         *query.ListUnitsHandler
	SearchIngredients *query.SearchIngredientsHandler
	GetIngredient     *query.GetIngredientHandler
}

// RecipeHandler handles HTTP requests for recipes and reference data
type RecipeHandler struct {
	commands *CommandHandlers
	queries  *QueryHandlers

	repo     domain.RecipeRepository
	auth     *auth.Middleware
	throttle func(http.HandlerFunc) http.HandlerFunc
	validate *validator.Validate
	limits   pagination.Limits

	metrics      *httpx.Metrics
	recipesTotal prometheus.Gauge
}

// NewRecipeHandlerWithDI creates a new recipe handler using dependency injection.
// A nil limiter disables throttling of write endpoints.
func NewRecipeHandlerWithDI(
	commands *CommandHandlers,
	queries *QueryHandlers,
	repo domain.RecipeRepository,
	limiter ratelimit.Limiter,
	validate *validator.Validate,
	reg prometheus.Registerer,
	limits pagination.Limits,
) *RecipeHandler {
	recipesTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recipe_service_recipes_total",
		Help: "Number of stored recipes",
	})
	reg.MustRegister(recipesTotal)

	throttle := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if limiter != nil {
		throttle = ratelimit.Middleware(limiter, httpx.RespondStatus)
	}

	return &RecipeHandler{
		commands:     commands,
		queries:      queries,
		repo:         repo,
		auth:         auth.NewMiddleware(httpx.RespondStatus),
		throttle:     throttle,
		validate:     validate,
		limits:       limits,
		metrics:      httpx.NewMetrics(reg, "recipe_service"),
		recipesTotal: recipesTotal,
	}
}

type ingredientAmountRequest struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount"`
}

type recipeRequest struct {
	Ingredients []ingredientAmountRequest `json:"ingredients" validate:"dive"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" validate:"required,max=200"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time"`
}

func (req recipeRequest) draft() domain.RecipeDraft {
	d := domain.RecipeDraft{
		Name:        req.Name,
		Text:        req.Text,
		Image:       req.Image,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: make([]domain.IngredientInput, len(req.Ingredients)),
	}
	for i, in := range req.Ingredients {
		d.Ingredients[i] = domain.IngredientInput{ID: in.ID, Amount: in.Amount}
	}
	return d
}

// filterFrom reads the listing filters. Empty values are skipped; an author
// that is not a positive id matches no recipe.
func filterFrom(r *http.Request) domain.RecipeFilter {
	q := r.URL.Query()
	f := domain.RecipeFilter{
		ViewerID:           auth.ViewerID(r.Context()),
		OnlyFavorited:      httpx.QueryBool(r, IsFavoritedParam),
		OnlyInShoppingCart: httpx.QueryBool(r, IsInShoppingCartParam),
	}
	for _, slug := range q[TagsParam] {
		if slug = strings.TrimSpace(slug); slug != "" {
			f.TagSlugs = append(f.TagSlugs, slug)
		}
	}
	if raw := strings.TrimSpace(q.Get(AuthorParam)); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || author == 0 {
			f.MatchNothing = true
		} else {
			f.AuthorID = uint(author)
		}
	}
	return f
}

// updateRecipesMetric updates the stored recipes gauge
func (h *RecipeHandler) updateRecipesMetric(ctx context.Context) {
	count, err := h.repo.Count(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to count recipes")
		return
	}
	h.recipesTotal.Set(float64(count))
}

// render returns the recipe as the caller sees it
func (h *RecipeHandler) render(w http.ResponseWriter, r *http.Request, status int, id uint) {
	view, err := h.queries.Get.Handle(r.Context(), query.GetRecipeQuery{ID: id, ViewerID: auth.ViewerID(r.Context())})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, status, view)
}

// ListRecipes godoc
// @Summary List recipes
// @Tags Recipes
// @Produce json
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param is_favorited query string false "1 or true"
// @Param is_in_shopping_cart query string false "1 or true"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} httpx.Response{data=pagination.Page[domain.RecipeView]}
// @Router /api/recipes [get]
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, h.limits)
	views, total, err := h.queries.List.Handle(r.Context(), query.ListRecipesQuery{
		Filter: filterFrom(r),
		Page:   page,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, pagination.NewPage(r.URL, page, total, views))
}

// GetRecipe godoc
// @Summary Get a recipe
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} httpx.Response{data=domain.RecipeView}
// @Failure 404 {object} httpx.Response
// @Router /api/recipes/{id} [get]
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, id)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Tags Recipes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body recipeRequest true "Recipe; image is a base64 data URI"
// @Success 201 {object} httpx.Response{data=domain.RecipeView}
// @Failure 400 {object} httpx.Response
// @Router /api/recipes [post]
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	recipe, err := h.commands.Create.Handle(r.Context(), command.CreateRecipeCommand{
		AuthorID: auth.ViewerID(r.Context()),
		Draft:    req.draft(),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	h.updateRecipesMetric(r.Context())
	h.render(w, r, http.StatusCreated, recipe.ID)
}

// UpdateRecipe godoc
// @Summary Replace a recipe
// @Description Tags and ingredients are replaced wholesale. The image is optional.
// @Tags Recipes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body recipeRequest true "Recipe"
// @Success 200 {object} httpx.Response{data=domain.RecipeView}
// @Failure 400 {object} httpx.Response
// @Failure 403 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/recipes/{id} [patch]
func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req recipeRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	actor, _ := auth.FromContext(r.Context())
	recipe, err := h.commands.Update.Handle(r.Context(), command.UpdateRecipeCommand{
		RecipeID: id,
		Actor:    actor,
		Draft:    req.draft(),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, recipe.ID)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags Recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/recipes/{id} [delete]
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	actor, _ := auth.FromContext(r.Context())
	if err := h.commands.Delete.Handle(r.Context(), command.DeleteRecipeCommand{RecipeID: id, Actor: actor}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	h.updateRecipesMetric(r.Context())
	httpx.RespondNoContent(w)
}

// listCommand reads the recipe id for a favorite or cart toggle
func listCommand(r *http.Request) (command.RecipeListCommand, error) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		return command.RecipeListCommand{}, err
	}
	return command.RecipeListCommand{UserID: auth.ViewerID(r.Context()), RecipeID: id}, nil
}

// AddFavorite godoc
// @Summary Add a recipe to favourites
// @Tags Favourites
// @Security BearerAuth
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} httpx.Response{data=domain.ShortRecipe}
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/recipes/{id}/favorite [get]
func (h *RecipeHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	cmd, err := listCommand(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	short, err := h.commands.AddFavorite.Handle(r.Context(), cmd)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusCreated, short)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favourites
// @Tags Favourites
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} httpx.Response
// @Router /api/recipes/{id}/favorite [delete]
func (h *RecipeHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	cmd, err := listCommand(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.commands.RemoveFavorite.Handle(r.Context(), cmd); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondNoContent(w)
}

// AddToCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags Shopping cart
// @Security BearerAuth
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} httpx.Response{data=domain.ShortRecipe}
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/recipes/{id}/shopping_cart [get]
func (h *RecipeHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	cmd, err := listCommand(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	short, err := h.commands.AddToCart.Handle(r.Context(), cmd)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusCreated, short)
}

// RemoveFromCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags Shopping cart
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} httpx.Response
// @Router /api/recipes/{id}/shopping_cart [delete]
func (h *RecipeHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cmd, err := listCommand(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.commands.RemoveFromCart.Handle(r.Context(), cmd); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondNoContent(w)
}

// DownloadShoppingCart godoc
// @Summary Download the aggregated shopping list
// @Tags Shopping cart
// @Security BearerAuth
// @Produce plain
// @Success 200 {string} string "to_buy.txt"
// @Failure 401 {object} httpx.Response
// @Router /api/recipes/download_shopping_cart [get]
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ShoppingList.Handle(r.Context(), query.DownloadShoppingListQuery{
		UserID: auth.ViewerID(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+domain.ShoppingListFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(domain.RenderShoppingList(items))
}

// RecipeStats godoc
// @Summary Favourite and cart counters of a recipe
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} httpx.Response{data=domain.RecipeStats}
// @Failure 404 {object} httpx.Response
// @Router /api/recipes/{id}/stats [get]
func (h *RecipeHandler) RecipeStats(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	stats, err := h.queries.Stats.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, stats)
}

// RegisterRoutes registers recipe, tag, unit and ingredient routes under the /api subrouter
func (h *RecipeHandler) RegisterRoutes(router *mux.Router) {
	m := h.metrics
	required := func(next http.HandlerFunc) http.HandlerFunc { return h.auth.Required(h.throttle(next)) }
	admin := func(next http.HandlerFunc) http.HandlerFunc { return h.auth.Admin(h.throttle(next)) }

	// Registered before /recipes/{id} so the literal path wins.
	router.HandleFunc("/recipes/download_shopping_cart", m.Wrap("/recipes/download_shopping_cart", required(h.DownloadShoppingCart))).Methods("GET")

	router.HandleFunc("/recipes", m.Wrap("/recipes", h.auth.Optional(h.ListRecipes))).Methods("GET")
	router.HandleFunc("/recipes", m.Wrap("/recipes", required(h.CreateRecipe))).Methods("POST")
	router.HandleFunc("/recipes/{id:[0-9]+}", m.Wrap("/recipes/{id}", h.auth.Optional(h.GetRecipe))).Methods("GET")
	router.HandleFunc("/recipes/{id:[0-9]+}", m.Wrap("/recipes/{id}", required(h.UpdateRecipe))).Methods("PATCH", "PUT")
	router.HandleFunc("/recipes/{id:[0-9]+}", m.Wrap("/recipes/{id}", required(h.DeleteRecipe))).Methods("DELETE")
	router.HandleFunc("/recipes/{id:[0-9]+}/stats", m.Wrap("/recipes/{id}/stats", h.RecipeStats)).Methods("GET")

	router.HandleFunc("/recipes/{id:[0-9]+}/favorite", m.Wrap("/recipes/{id}/favorite", required(h.AddFavorite))).Methods("GET")
	router.HandleFunc("/recipes/{id:[0-9]+}/favorite", m.Wrap("/recipes/{id}/favorite", required(h.RemoveFavorite))).Methods("DELETE")
	router.HandleFunc("/recipes/{id:[0-9]+}/shopping_cart", m.Wrap("/recipes/{id}/shopping_cart", required(h.AddToCart))).Methods("GET")
	router.HandleFunc("/recipes/{id:[0-9]+}/shopping_cart", m.Wrap("/recipes/{id}/shopping_cart", required(h.RemoveFromCart))).Methods("DELETE")

	router.HandleFunc("/tags", m.Wrap("/tags", h.ListTags)).Methods("GET")
	router.HandleFunc("/tags", m.Wrap("/tags", admin(h.CreateTag))).Methods("POST")
	router.HandleFunc("/tags/{id:[0-9]+}", m.Wrap("/tags/{id}", h.GetTag)).Methods("GET")

	router.HandleFunc("/units", m.Wrap("/units", h.ListUnits)).Methods("GET")
	router.HandleFunc("/units", m.Wrap("/units", admin(h.CreateUnit))).Methods("POST")
	router.HandleFunc("/units/{id:[0-9]+}", m.Wrap("/units/{id}", admin(h.DeleteUnit))).Methods("DELETE")

	router.HandleFunc("/ingredients", m.Wrap("/ingredients", h.SearchIngredients)).Methods("GET")
	router.HandleFunc("/ingredients", m.Wrap("/ingredients", admin(h.CreateIngredient))).Methods("POST")
	router.HandleFunc("/ingredients/{id:[0-9]+}", m.Wrap("/ingredients/{id}", h.GetIngredient)).Methods("GET")
	router.HandleFunc("/ingredients/{id:[0-9]+}", m.Wrap("/ingredients/{id}", admin(h.DeleteIngredient))).Methods("DELETE")
}
