// Package testutil opens throwaway databases with the full schema for package tests.
package testutil

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	recipedomain "github.com/tair/foodgram/internal/recipe/domain"
	userdomain "github.com/tair/foodgram/internal/user/domain"
	"github.com/tair/foodgram/pkg/auth"
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&userdomain.User{},
		&userdomain.Follow{},
		&recipedomain.Tag{},
		&recipedomain.MeasurementUnit{},
		&recipedomain.Ingredient{},
		&recipedomain.Recipe{},
		&recipedomain.RecipeIngredientEntry{},
		&recipedomain.Favorite{},
		&recipedomain.CartItem{},
	}
}

// NewDB returns an in-memory SQLite database with foreign keys enforced.
// The pool is pinned to one connection so every query sees the same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Fixtures seeds rows for tests.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
	n  int
}

// NewFixtures binds a fixture builder to db.
func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) must(err error) {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("fixture: %v", err)
	}
}

// User creates an active user whose password is "password123".
func (f *Fixtures) User(username string) *userdomain.User {
	f.t.Helper()
	hash, err := auth.HashPassword("password123")
	f.must(err)
	u := &userdomain.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Password:  hash,
		Role:      userdomain.RoleUser,
		IsActive:  true,
	}
	f.must(f.db.Create(u).Error)
	return u
}

// Admin creates a user with the admin role.
func (f *Fixtures) Admin(username string) *userdomain.User {
	f.t.Helper()
	u := f.User(username)
	f.must(f.db.Model(u).Update("role", userdomain.RoleAdmin).Error)
	u.Role = userdomain.RoleAdmin
	return u
}

// Tag creates a tag with the given slug.
func (f *Fixtures) Tag(slug string) *recipedomain.Tag {
	f.t.Helper()
	tag := &recipedomain.Tag{Name: slug, Color: "#E26C2D", Slug: slug}
	f.must(f.db.Create(tag).Error)
	return tag
}

// Unit returns the unit with name, creating it when missing.
func (f *Fixtures) Unit(name string) *recipedomain.MeasurementUnit {
	f.t.Helper()
	unit := &recipedomain.MeasurementUnit{}
	f.must(f.db.Where(recipedomain.MeasurementUnit{Name: name}).FirstOrCreate(unit).Error)
	return unit
}

// Ingredient creates an ingredient measured in unit.
func (f *Fixtures) Ingredient(name, unit string) *recipedomain.Ingredient {
	f.t.Helper()
	u := f.Unit(unit)
	ing := &recipedomain.Ingredient{Name: name, MeasurementUnitID: u.ID, MeasurementUnit: *u}
	f.must(f.db.Omit("MeasurementUnit").Create(ing).Error)
	return ing
}

// Line is a (ingredient, amount) pair for Recipe.
type Line struct {
	Ingredient *recipedomain.Ingredient
	Amount     int
}

// Recipe creates a recipe with entries and tags directly, bypassing validation.
func (f *Fixtures) Recipe(author *userdomain.User, name string, tags []*recipedomain.Tag, lines ...Line) *recipedomain.Recipe {
	f.t.Helper()
	f.n++
	r := &recipedomain.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       fmt.Sprintf("http://localhost/media/recipes/%d.png", f.n),
		Text:        "Cook " + name,
		CookingTime: 15,
	}
	f.must(f.db.Omit("Author", "Tags", "Ingredients").Create(r).Error)

	for _, l := range lines {
		entry := &recipedomain.RecipeIngredientEntry{RecipeID: r.ID, IngredientID: l.Ingredient.ID, Amount: l.Amount}
		f.must(f.db.Omit("Ingredient").Create(entry).Error)
	}
	if len(tags) > 0 {
		vals := make([]recipedomain.Tag, len(tags))
		for i, tg := range tags {
			vals[i] = *tg
		}
		f.must(f.db.Model(r).Association("Tags").Append(vals))
	}
	return r
}
