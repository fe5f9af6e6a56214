package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/membership"
	"github.com/tair/foodgram/internal/user/domain"
	"github.com/tair/foodgram/pkg/database"
	"github.com/tair/foodgram/pkg/pagination"
)

// FollowRelation is the follower → followee subscription table.
var FollowRelation = membership.Relation[domain.Follow]{
	Name:         "follow",
	OwnerColumn:  "follower_id",
	TargetColumn: "followee_id",
	New: func(followerID, followeeID uint) domain.Follow {
		return domain.Follow{FollowerID: followerID, FolloweeID: followeeID}
	},
	AlreadyPresent: domain.MsgAlreadySubscribed,
	NotPresent:     domain.MsgNotSubscribed,
	Missing:        domain.MsgUserNotFound,
}

// GormUserRepository implements UserRepository interface using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// AutoMigrate runs database migrations for user tables
func (r *GormUserRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.User{}, &domain.Follow{})
}

// Create inserts a new user into the database
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("A user with that username or email already exists.")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(domain.MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByID retrieves a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUsername retrieves a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByEmail retrieves a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER(?)", email)
}

// FindAll retrieves one page of users ordered by id
func (r *GormUserRepository) FindAll(ctx context.Context, page pagination.Params) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []domain.User
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find users: %w", err)
	}
	return users, total, nil
}

// sentinel returns the placeholder author, creating it on first use.
func sentinel(tx *gorm.DB) (*domain.User, error) {
	var placeholder domain.User
	err := tx.Where(domain.User{Username: domain.DeletedUsername}).
		Attrs(domain.User{
			Email:     domain.DeletedEmail,
			FirstName: "Deleted",
			LastName:  "User",
			// Not a bcrypt hash, so no password matches it.
			Password: "!",
			Role:     domain.RoleUser,
		}).
		FirstOrCreate(&placeholder).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deleted-author placeholder: %w", err)
	}

	if placeholder.IsActive {
		if err := tx.Model(&placeholder).Update("is_active", false).Error; err != nil {
			return nil, fmt.Errorf("failed to deactivate placeholder: %w", err)
		}
		placeholder.IsActive = false
	}
	return &placeholder, nil
}

// DeleteReassigningRecipes removes the user in one transaction. Their recipes
// move to the placeholder author; their favourites, cart and follow edges in
// both directions are dropped. It returns the placeholder.
func (r *GormUserRepository) DeleteReassigningRecipes(ctx context.Context, id uint) (*domain.User, error) {
	var heir *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(domain.MsgUserNotFound)
			}
			return fmt.Errorf("failed to find user: %w", err)
		}
		if user.IsSentinel() {
			return apperr.Conflict(domain.MsgSentinelUndeletable)
		}

		placeholder, err := sentinel(tx)
		if err != nil {
			return err
		}

		if err := tx.Table("recipes").Where("author_id = ?", id).Update("author_id", placeholder.ID).Error; err != nil {
			return fmt.Errorf("failed to reassign recipes: %w", err)
		}
		for _, table := range []string{"favorites", "shopping_cart"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", id).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).Delete(&domain.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to clear follows: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		heir = placeholder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return heir, nil
}

// Subscribe adds the follower → followee edge
func (r *GormUserRepository) Subscribe(ctx context.Context, followerID, followeeID uint) error {
	return membership.Add(ctx, r.db, FollowRelation, followerID, followeeID)
}

// Unsubscribe removes the follower → followee edge
func (r *GormUserRepository) Unsubscribe(ctx context.Context, followerID, followeeID uint) error {
	return membership.Remove(ctx, r.db, FollowRelation, followerID, followeeID)
}

// SubscribedTo reports which of userIDs the follower follows
func (r *GormUserRepository) SubscribedTo(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error) {
	return membership.TargetsOf(ctx, r.db, FollowRelation, followerID, userIDs)
}

// Followees returns one page of the users followerID follows, ordered by id
func (r *GormUserRepository) Followees(ctx context.Context, followerID uint, page pagination.Params) ([]domain.User, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&domain.User{}).
			Joins("JOIN follows ON follows.followee_id = users.id").
			Where("follows.follower_id = ?", followerID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var users []domain.User
	err := base().
		Order("users.id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find subscriptions: %w", err)
	}
	return users, total, nil
}
