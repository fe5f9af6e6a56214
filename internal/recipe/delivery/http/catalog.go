package http

import (
	"net/http"

	"github.com/tair/foodgram/internal/recipe/usecase/command"
	"github.com/tair/foodgram/internal/recipe/usecase/query"
	"github.com/tair/foodgram/pkg/httpx"
)

type tagRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,max=200"`
	Slug  string `json:"slug" validate:"required,max=50"`
}

type unitRequest struct {
	Name string `json:"name" validate:"required,max=20"`
}

type ingredientRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=20"`
}

// ListTags godoc
// @Summary List tags
// @Tags Tags
// @Produce json
// @Success 200 {object} httpx.Response{data=[]domain.Tag}
// @Router /api/tags [get]
func (h *RecipeHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.queries.ListTags.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, tags)
}

// GetTag godoc
// @Summary Get a tag
// @Tags Tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} httpx.Response{data=domain.Tag}
// @Failure 404 {object} httpx.Response
// @Router /api/tags/{id} [get]
func (h *RecipeHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	tag, err := h.queries.GetTag.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, tag)
}

// CreateTag godoc
// @Summary Create a tag
// @Tags Tags
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body tagRequest true "Tag"
// @Success 201 {object} httpx.Response{data=domain.Tag}
// @Failure 400 {object} httpx.Response
// @Failure 403 {object} httpx.Response
// @Router /api/tags [post]
func (h *RecipeHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	tag, err := h.commands.CreateTag.Handle(r.Context(), command.CreateTagCommand{
		Name:  req.Name,
		Color: req.Color,
		Slug:  req.Slug,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusCreated, tag)
}

// ListUnits godoc
// @Summary List measurement units
// @Tags Units
// @Produce json
// @Success 200 {object} httpx.Response{data=[]domain.MeasurementUnit}
// @Router /api/units [get]
func (h *RecipeHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.queries.ListUnits.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, units)
}

// CreateUnit godoc
// @Summary Create a measurement unit
// @Tags Units
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body unitRequest true "Unit"
// @Success 201 {object} httpx.Response{data=domain.MeasurementUnit}
// @Failure 400 {object} httpx.Response
// @Router /api/units [post]
func (h *RecipeHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	unit, err := h.commands.CreateUnit.Handle(r.Context(), command.CreateUnitCommand{Name: req.Name})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusCreated, unit)
}

// DeleteUnit godoc
// @Summary Delete a measurement unit
// @Description Refused while ingredients use the unit.
// @Tags Units
// @Security BearerAuth
// @Param id path int true "Unit ID"
// @Success 204
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/units/{id} [delete]
func (h *RecipeHandler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.commands.DeleteUnit.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondNoContent(w)
}

// SearchIngredients godoc
// @Summary Search ingredients by name prefix
// @Tags Ingredients
// @Produce json
// @Param name query string false "Case-insensitive prefix"
// @Success 200 {object} httpx.Response{data=[]domain.IngredientView}
// @Router /api/ingredients [get]
func (h *RecipeHandler) SearchIngredients(w http.ResponseWriter, r *http.Request) {
	views, err := h.queries.SearchIngredients.Handle(r.Context(), query.SearchIngredientsQuery{
		Name: r.URL.Query().Get("name"),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, views)
}

// GetIngredient godoc
// @Summary Get an ingredient
// @Tags Ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} httpx.Response{data=domain.IngredientView}
// @Failure 404 {object} httpx.Response
// @Router /api/ingredients/{id} [get]
func (h *RecipeHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	view, err := h.queries.GetIngredient.Handle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusOK, view)
}

// CreateIngredient godoc
// @Summary Create an ingredient
// @Tags Ingredients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ingredientRequest true "Ingredient"
// @Success 201 {object} httpx.Response{data=domain.IngredientView}
// @Failure 400 {object} httpx.Response
// @Router /api/ingredients [post]
func (h *RecipeHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	ingredient, err := h.commands.CreateIngredient.Handle(r.Context(), command.CreateIngredientCommand{
		Name:            req.Name,
		MeasurementUnit: req.MeasurementUnit,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondData(w, http.StatusCreated, ingredient.View())
}

// DeleteIngredient godoc
// @Summary Delete an ingredient
// @Description Refused while recipes use the ingredient.
// @Tags Ingredients
// @Security BearerAuth
// @Param id path int true "Ingredient ID"
// @Success 204
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/ingredients/{id} [delete]
func (h *RecipeHandler) DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.commands.DeleteIngredient.Handle(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondNoContent(w)
}
