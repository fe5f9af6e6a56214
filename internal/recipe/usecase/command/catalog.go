package command

import (
	"context"
	"regexp"
	"strings"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/pkg/logger"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CreateTagCommand represents the command to create a tag
type CreateTagCommand struct {
	Name  string
	Color string
	Slug  string
}

// CreateTagHandler handles tag creation command
type CreateTagHandler struct {
	repo domain.CatalogRepository
}

// NewCreateTagHandler creates a new create tag handler
func NewCreateTagHandler(repo domain.CatalogRepository) *CreateTagHandler {
	return &CreateTagHandler{repo: repo}
}

// Handle executes the create tag command
func (h *CreateTagHandler) Handle(ctx context.Context, cmd CreateTagCommand) (*domain.Tag, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperr.Validation("Tag name is required.")
	}
	if !slugPattern.MatchString(cmd.Slug) {
		return nil, apperr.Validation(domain.MsgInvalidSlug)
	}

	tag := &domain.Tag{Name: name, Color: cmd.Color, Slug: cmd.Slug}
	if err := h.repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	logger.Info(ctx).Uint("tag_id", tag.ID).Str("slug", tag.Slug).Msg("Tag created")
	return tag, nil
}

// CreateUnitCommand represents the command to create a measurement unit
type CreateUnitCommand struct {
	Name string
}

// CreateUnitHandler handles measurement unit creation command
type CreateUnitHandler struct {
	repo domain.CatalogRepository
}

// NewCreateUnitHandler creates a new create unit handler
func NewCreateUnitHandler(repo domain.CatalogRepository) *CreateUnitHandler {
	return &CreateUnitHandler{repo: repo}
}

// Handle executes the create unit command
func (h *CreateUnitHandler) Handle(ctx context.Context, cmd CreateUnitCommand) (*domain.MeasurementUnit, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperr.Validation("Measurement unit name is required.")
	}
	unit := &domain.MeasurementUnit{Name: name}
	if err := h.repo.CreateUnit(ctx, unit); err != nil {
		return nil, err
	}
	logger.Info(ctx).Uint("unit_id", unit.ID).Str("name", unit.Name).Msg("Measurement unit created")
	return unit, nil
}

// DeleteUnitHandler handles measurement unit deletion command
type DeleteUnitHandler struct {
	repo domain.CatalogRepository
}

// NewDeleteUnitHandler creates a new delete unit handler
func NewDeleteUnitHandler(repo domain.CatalogRepository) *DeleteUnitHandler {
	return &DeleteUnitHandler{repo: repo}
}

// Handle deletes an unreferenced unit
func (h *DeleteUnitHandler) Handle(ctx context.Context, id uint) error {
	if err := h.repo.DeleteUnit(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx).Uint("unit_id", id).Msg("Measurement unit deleted")
	return nil
}

// CreateIngredientCommand represents the command to create an ingredient
type CreateIngredientCommand struct {
	Name            string
	MeasurementUnit string
}

// CreateIngredientHandler handles ingredient creation command
type CreateIngredientHandler struct {
	repo domain.CatalogRepository
}

// NewCreateIngredientHandler creates a new create ingredient handler
func NewCreateIngredientHandler(repo domain.CatalogRepository) *CreateIngredientHandler {
	return &CreateIngredientHandler{repo: repo}
}

// Handle executes the create ingredient command. The unit is created on first use.
func (h *CreateIngredientHandler) Handle(ctx context.Context, cmd CreateIngredientCommand) (*domain.Ingredient, error) {
	name := strings.TrimSpace(cmd.Name)
	unitName := strings.TrimSpace(cmd.MeasurementUnit)
	if name == "" || unitName == "" {
		return nil, apperr.Validation("Ingredient name and measurement unit are required.")
	}

	unit, err := h.repo.FindOrCreateUnit(ctx, unitName)
	if err != nil {
		return nil, err
	}

	ingredient := &domain.Ingredient{Name: name, MeasurementUnitID: unit.ID, MeasurementUnit: *unit}
	if err := h.repo.CreateIngredient(ctx, ingredient); err != nil {
		return nil, err
	}
	logger.Info(ctx).
		Uint("ingredient_id", ingredient.ID).
		Str("name", ingredient.Name).
		Str("unit", unit.Name).
		Msg("Ingredient created")
	return ingredient, nil
}

// DeleteIngredientHandler handles ingredient deletion command
type DeleteIngredientHandler struct {
	repo domain.CatalogRepository
}

// NewDeleteIngredientHandler creates a new delete ingredient handler
func NewDeleteIngredientHandler(repo domain.CatalogRepository) *DeleteIngredientHandler {
	return &DeleteIngredientHandler{repo: repo}
}

// Handle deletes an ingredient no recipe uses
func (h *DeleteIngredientHandler) Handle(ctx context.Context, id uint) error {
	if err := h.repo.DeleteIngredient(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx).Uint("ingredient_id", id).Msg("Ingredient deleted")
	return nil
}
