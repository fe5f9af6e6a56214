package repository

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/foodgram/internal/user/domain"
	"github.com/tair/foodgram/pkg/pagination"
)

var tracer = otel.Tracer("user-repository")

// TracedUserRepository wraps a UserRepository with tracing
type TracedUserRepository struct {
	domain.UserRepository
}

// NewTracedUserRepository creates a new repository with tracing
func NewTracedUserRepository(next domain.UserRepository) *TracedUserRepository {
	return &TracedUserRepository{UserRepository: next}
}

// Create with tracing
func (r *TracedUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("user.username", user.Username),
		),
	)
	defer span.End()

	if err := r.UserRepository.Create(ctx, user); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))
	return nil
}

// FindByID with tracing
func (r *TracedUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("user.id", int(id)),
		),
	)
	defer span.End()

	user, err := r.UserRepository.FindByID(ctx, id)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user.username", user.Username))
	return user, nil
}

// FindAll with tracing
func (r *TracedUserRepository) FindAll(ctx context.Context, page pagination.Params) ([]domain.User, int64, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAll",
		trace.WithAttributes(
			attribute.Int("query.page", page.Page),
			attribute.Int("query.limit", page.Limit),
		),
	)
	defer span.End()

	users, total, err := r.UserRepository.FindAll(ctx, page)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, 0, err
	}
	span.SetAttributes(attribute.Int("result.count", len(users)), attribute.Int64("result.total", total))
	return users, total, nil
}

// DeleteReassigningRecipes with tracing
func (r *TracedUserRepository) DeleteReassigningRecipes(ctx context.Context, id uint) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.DeleteReassigningRecipes",
		trace.WithAttributes(
			attribute.Int("user.id", int(id)),
		),
	)
	defer span.End()

	heir, err := r.UserRepository.DeleteReassigningRecipes(ctx, id)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("heir.id", int(heir.ID)))
	return heir, nil
}

// Subscribe with tracing
func (r *TracedUserRepository) Subscribe(ctx context.Context, followerID, followeeID uint) error {
	ctx, span := tracer.Start(ctx, "repository.Subscribe",
		trace.WithAttributes(
			attribute.Int("follower.id", int(followerID)),
			attribute.Int("followee.id", int(followeeID)),
		),
	)
	defer span.End()

	err := r.UserRepository.Subscribe(ctx, followerID, followeeID)
	addDBErrorToSpan(span, err)
	return err
}

// Unsubscribe with tracing
func (r *TracedUserRepository) Unsubscribe(ctx context.Context, followerID, followeeID uint) error {
	ctx, span := tracer.Start(ctx, "repository.Unsubscribe",
		trace.WithAttributes(
			attribute.Int("follower.id", int(followerID)),
			attribute.Int("followee.id", int(followeeID)),
		),
	)
	defer span.End()

	err := r.UserRepository.Unsubscribe(ctx, followerID, followeeID)
	addDBErrorToSpan(span, err)
	return err
}

// Helper function to add database error details to span
func addDBErrorToSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("database error: %v", err))
	}
}
