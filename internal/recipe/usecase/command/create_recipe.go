package command

import (
	"context"
	"fmt"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/logger"
	"github.com/tair/foodgram/pkg/storage"
)

// ImagePrefix is the storage key prefix of recipe images.
const ImagePrefix = "recipes"

// CreateRecipeCommand represents the command to create a recipe.
// Draft.Image carries the uploaded data URI.
type CreateRecipeCommand struct {
	AuthorID uint
	Draft    domain.RecipeDraft
}

// CreateRecipeHandler handles recipe creation command
type CreateRecipeHandler struct {
	repo   domain.RecipeRepository
	images storage.ImageStore
	events kafka.EventPublisher
}

// NewCreateRecipeHandler creates a new create recipe handler
func NewCreateRecipeHandler(repo domain.RecipeRepository, images storage.ImageStore, events kafka.EventPublisher) *CreateRecipeHandler {
	return &CreateRecipeHandler{repo: repo, images: images, events: events}
}

// storeImage decodes a data URI upload and returns its public URL and storage key.
func storeImage(ctx context.Context, images storage.ImageStore, dataURI string) (string, string, error) {
	img, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		return "", "", apperr.Validation(domain.MsgImageInvalid)
	}
	key := storage.NewKey(ImagePrefix, img)
	url, err := images.Save(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, key, nil
}

// discardImage removes an image whose recipe write was rolled back.
func discardImage(ctx context.Context, images storage.ImageStore, key string) {
	if err := images.Delete(ctx, key); err != nil {
		logger.Warn(ctx).Err(err).Str("key", key).Msg("Failed to remove orphaned recipe image")
	}
}

// Handle executes the create recipe command
func (h *CreateRecipeHandler) Handle(ctx context.Context, cmd CreateRecipeCommand) (*domain.Recipe, error) {
	if cmd.AuthorID == 0 {
		return nil, apperr.Unauthorized("Authentication credentials were not provided.")
	}
	if err := cmd.Draft.Validate(); err != nil {
		return nil, err
	}
	if cmd.Draft.Image == "" {
		return nil, apperr.Validation(domain.MsgImageRequired)
	}

	url, key, err := storeImage(ctx, h.images, cmd.Draft.Image)
	if err != nil {
		return nil, err
	}
	draft := cmd.Draft
	draft.Image = url

	recipe := &domain.Recipe{AuthorID: cmd.AuthorID, Image: url}
	if err := h.repo.Create(ctx, recipe, draft); err != nil {
		discardImage(ctx, h.images, key)
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	logger.Info(ctx).
		Uint("recipe_id", recipe.ID).
		Uint("author_id", cmd.AuthorID).
		Msg("Recipe created")

	publish(ctx, h.events, kafka.Event{
		EventType: kafka.EventTypeRecipeCreated,
		UserID:    cmd.AuthorID,
		RecipeID:  recipe.ID,
	})

	return h.repo.FindByID(ctx, recipe.ID)
}
