//go:build wireinject
// +build wireinject

package user

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/foodgram/internal/user/delivery/http"
	"github.com/tair/foodgram/internal/user/usecase/query"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/pagination"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	recipes query.AuthorRecipes,
	events kafka.EventPublisher,
	validate *validator.Validate,
	reg prometheus.Registerer,
	limits pagination.Limits,
) (*http.UserHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewUserHandlerWithDI,
	)
	return nil, nil
}
