package query

import (
	"context"

	"github.com/tair/foodgram/internal/recipe/domain"
)

// ListTagsHandler returns every tag ordered by id
type ListTagsHandler struct {
	repo domain.CatalogRepository
}

func NewListTagsHandler(repo domain.CatalogRepository) *ListTagsHandler {
	return &ListTagsHandler{repo: repo}
}

func (h *ListTagsHandler) Handle(ctx context.Context) ([]domain.Tag, error) {
	tags, err := h.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

// GetTagHandler returns one tag
type GetTagHandler struct {
	repo domain.CatalogRepository
}

func NewGetTagHandler(repo domain.CatalogRepository) *GetTagHandler {
	return &GetTagHandler{repo: repo}
}

func (h *GetTagHandler) Handle(ctx context.Context, id uint) (*domain.Tag, error) {
	return h.repo.FindTag(ctx, id)
}

// ListUnitsHandler returns every measurement unit ordered by name
type ListUnitsHandler struct {
	repo domain.CatalogRepository
}

func NewListUnitsHandler(repo domain.CatalogRepository) *ListUnitsHandler {
	return &ListUnitsHandler{repo: repo}
}

func (h *ListUnitsHandler) Handle(ctx context.Context) ([]domain.MeasurementUnit, error) {
	units, err := h.repo.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	if units == nil {
		units = []domain.MeasurementUnit{}
	}
	return units, nil
}

// SearchIngredientsQuery represents the ingredient search
type SearchIngredientsQuery struct {
	// Name is a case-insensitive prefix. Empty lists everything.
	Name string
}

// SearchIngredientsHandler handles ingredient search
type SearchIngredientsHandler struct {
	repo domain.CatalogRepository
}

func NewSearchIngredientsHandler(repo domain.CatalogRepository) *SearchIngredientsHandler {
	return &SearchIngredientsHandler{repo: repo}
}

func (h *SearchIngredientsHandler) Handle(ctx context.Context, q SearchIngredientsQuery) ([]domain.IngredientView, error) {
	ingredients, err := h.repo.SearchIngredients(ctx, q.Name)
	if err != nil {
		return nil, err
	}
	views := make([]domain.IngredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, ing.View())
	}
	return views, nil
}

// GetIngredientHandler returns one ingredient
type GetIngredientHandler struct {
	repo domain.CatalogRepository
}

func NewGetIngredientHandler(repo domain.CatalogRepository) *GetIngredientHandler {
	return &GetIngredientHandler{repo: repo}
}

func (h *GetIngredientHandler) Handle(ctx context.Context, id uint) (*domain.IngredientView, error) {
	ing, err := h.repo.FindIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	view := ing.View()
	return &view, nil
}
