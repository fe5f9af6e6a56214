package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/foodgram/internal/user/usecase/command"
	"github.com/tair/foodgram/internal/user/usecase/query"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/httpx"
	"github.com/tair/foodgram/pkg/pagination"
)

// RecipesLimitParam caps the recipes embedded per followed author.
const RecipesLimitParam = "recipes_limit"

// UserHandler handles HTTP requests for users
type UserHandler struct {
	// Command handlers
	registerHandler    *command.RegisterUserHandler
	loginHandler       *command.LoginUserHandler
	deleteHandler      *command.DeleteUserHandler
	subscribeHandler   *command.SubscribeHandler
	unsubscribeHandler *command.UnsubscribeHandler

	// Query handlers
	getUserHandler       *query.GetUserHandler
	listHandler          *query.ListUsersHandler
	subscriptionsHandler *query.ListSubscriptionsHandler
	subscriptionHandler  *query.GetSubscriptionHandler

	auth     *auth.Middleware
	validate *validator.Validate
	metrics  *httpx.Metrics
	limits   pagination.Limits
}

// NewUserHandlerWithDI creates a new user handler using dependency injection
func NewUserHandlerWithDI(
	registerHandler *command.RegisterUserHandler,
	loginHandler *command.LoginUserHandler,
	deleteHandler *command.DeleteUserHandler,
	subscribeHandler *command.SubscribeHandler,
	unsubscribeHandler *command.UnsubscribeHandler,
	getUserHandler *query.GetUserHandler,
	listHandler *query.ListUsersHandler,
	subscriptionsHandler *query.ListSubscriptionsHandler,
	subscriptionHandler *query.GetSubscriptionHandler,
	validate *validator.Validate,
	reg prometheus.Registerer,
	limits pagination.Limits,
) *UserHandler {
	return &UserHandler{
		registerHandler:      registerHandler,
		loginHandler:         loginHandler,
		deleteHandler:        deleteHandler,
		subscribeHandler:     subscribeHandler,
		unsubscribeHandler:   unsubscribeHandler,
		getUserHandler:       getUserHandler,
		listHandler:          listHandler,
		subscriptionsHandler: subscriptionsHandler,
		subscriptionHandler:  subscriptionHandler,
		auth:                 auth.NewMiddleware(httpx.RespondStatus),
		validate:             validate,
		metrics:              httpx.NewMetrics(reg, "user_service"),
		limits:               limits,
	}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration data"
// @Success 201 {object} httpx.Response{data=domain.Profile}
// @Failure 400 {object} httpx.Response
// @Router /api/users [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	user, err := h.registerHandler.Handle(r.Context(), command.RegisterUserCommand{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondData(w, http.StatusCreated, user.Profile(false))
}

// Login godoc
// @Summary Obtain an auth token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} httpx.Response{data=command.LoginResponse}
// @Failure 400 {object} httpx.Response
// @Router /api/auth/token/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	token, err := h.loginHandler.Handle(r.Context(), command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondData(w, http.StatusOK, token)
}

// Me godoc
// @Summary Current user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} httpx.Response{data=domain.Profile}
// @Failure 401 {object} httpx.Response
// @Router /api/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	viewer := auth.ViewerID(r.Context())
	profile, err := h.getUserHandler.Handle(r.Context(), query.GetUserQuery{ID: viewer, ViewerID: viewer})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, profile)
}

// GetUser godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} httpx.Response{data=domain.Profile}
// @Failure 404 {object} httpx.Response
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	profile, err := h.getUserHandler.Handle(r.Context(), query.GetUserQuery{
		ID:       id,
		ViewerID: auth.ViewerID(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, profile)
}

// ListUsers godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} httpx.Response{data=pagination.Page[domain.Profile]}
// @Router /api/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, h.limits)
	profiles, total, err := h.listHandler.Handle(r.Context(), query.ListUsersQuery{
		ViewerID: auth.ViewerID(r.Context()),
		Page:     page,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, pagination.NewPage(r.URL, page, total, profiles))
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Recipes of the removed account are kept under the "deleted" author.
// @Tags Users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	actor, _ := auth.FromContext(r.Context())
	if err := h.deleteHandler.Handle(r.Context(), command.DeleteUserCommand{ID: id, Actor: actor}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondNoContent(w)
}

// Subscriptions godoc
// @Summary Followed authors
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} httpx.Response{data=pagination.Page[query.Subscription]}
// @Router /api/users/subscriptions [get]
func (h *UserHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, h.limits)
	subs, total, err := h.subscriptionsHandler.Handle(r.Context(), query.ListSubscriptionsQuery{
		UserID:       auth.ViewerID(r.Context()),
		Page:         page,
		RecipesLimit: httpx.QueryInt(r, RecipesLimitParam),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, pagination.NewPage(r.URL, page, total, subs))
}

// Subscribe godoc
// @Summary Follow an author
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes to embed"
// @Success 201 {object} httpx.Response{data=query.Subscription}
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/users/{id}/subscribe [get]
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	cmd := command.SubscriptionCommand{FollowerID: auth.ViewerID(r.Context()), AuthorID: authorID}
	if err := h.subscribeHandler.Handle(r.Context(), cmd); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	sub, err := h.subscriptionHandler.Handle(r.Context(), query.GetSubscriptionQuery{
		AuthorID:     authorID,
		RecipesLimit: httpx.QueryInt(r, RecipesLimitParam),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusCreated, sub)
}

// Unsubscribe godoc
// @Summary Unfollow an author
// @Tags Subscriptions
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} httpx.Response
// @Router /api/users/{id}/subscribe [delete]
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	cmd := command.SubscriptionCommand{FollowerID: auth.ViewerID(r.Context()), AuthorID: authorID}
	if err := h.unsubscribeHandler.Handle(r.Context(), cmd); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondNoContent(w)
}

// RegisterRoutes registers all user routes under router, which is expected to be the /api subrouter
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	m := h.metrics

	// Public routes
	router.HandleFunc("/users", m.Wrap("/users", h.Register)).Methods("POST")
	router.HandleFunc("/users", m.Wrap("/users", h.auth.Optional(h.ListUsers))).Methods("GET")
	router.HandleFunc("/auth/token/login", m.Wrap("/auth/token/login", h.Login)).Methods("POST")

	// Literal paths go before {id}
	router.HandleFunc("/users/me", m.Wrap("/users/me", h.auth.Required(h.Me))).Methods("GET")
	router.HandleFunc("/users/subscriptions", m.Wrap("/users/subscriptions", h.auth.Required(h.Subscriptions))).Methods("GET")

	router.HandleFunc("/users/{id:[0-9]+}", m.Wrap("/users/{id}", h.auth.Optional(h.GetUser))).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}", m.Wrap("/users/{id}", h.auth.Required(h.DeleteUser))).Methods("DELETE")
	router.HandleFunc("/users/{id:[0-9]+}/subscribe", m.Wrap("/users/{id}/subscribe", h.auth.Required(h.Subscribe))).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}/subscribe", m.Wrap("/users/{id}/subscribe", h.auth.Required(h.Unsubscribe))).Methods("DELETE")
}
