package domain

import (
	"context"
	"strings"
	"time"

	"github.com/tair/foodgram/pkg/pagination"
)

// Role types
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	// DeletedUsername is the sentinel author that inherits recipes of removed accounts.
	DeletedUsername = "deleted"
	DeletedEmail    = "deleted@foodgram.local"

	// ReservedUsername collides with the /users/me route.
	ReservedUsername = "me"
)

// User represents the user entity (domain model)
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username  string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName string    `json:"first_name" gorm:"size:150;not null"`
	LastName  string    `json:"last_name" gorm:"size:150;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      string    `json:"role" gorm:"size:20;not null;default:'user'"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsSentinel reports whether u is the deleted-author placeholder.
func (u *User) IsSentinel() bool {
	return u.Username == DeletedUsername
}

// Profile is the public user representation.
type Profile struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// Profile renders u for a viewer who is (or is not) subscribed to u.
func (u *User) Profile(subscribed bool) Profile {
	return Profile{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// IsReservedUsername reports whether name may not be registered.
func IsReservedUsername(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == ReservedUsername || n == DeletedUsername
}

// Follow is a directed subscription edge.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;uniqueIndex:ux_follows_pair"`
	Follower   *User     `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	FolloweeID uint      `json:"followee_id" gorm:"not null;uniqueIndex:ux_follows_pair;index"`
	Followee   *User     `json:"-" gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name
func (Follow) TableName() string {
	return "follows"
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context, page pagination.Params) ([]User, int64, error)
	// DeleteReassigningRecipes removes a user, handing their recipes to the sentinel author.
	DeleteReassigningRecipes(ctx context.Context, id uint) (*User, error)

	Subscribe(ctx context.Context, followerID, followeeID uint) error
	Unsubscribe(ctx context.Context, followerID, followeeID uint) error
	SubscribedTo(ctx context.Context, followerID uint, userIDs []uint) (map[uint]bool, error)
	Followees(ctx context.Context, followerID uint, page pagination.Params) ([]User, int64, error)
}
