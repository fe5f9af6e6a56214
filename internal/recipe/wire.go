//go:build wireinject
// +build wireinject

package recipe

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/foodgram/internal/recipe/delivery/http"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/pagination"
	"github.com/tair/foodgram/pkg/ratelimit"
	"github.com/tair/foodgram/pkg/storage"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	subs domain.SubscriptionChecker,
	cache domain.ShoppingListCache,
	images storage.ImageStore,
	events kafka.EventPublisher,
	limiter ratelimit.Limiter,
	validate *validator.Validate,
	reg prometheus.Registerer,
	limits pagination.Limits,
) (*http.RecipeHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewRecipeHandlerWithDI,
	)
	return nil, nil
}
