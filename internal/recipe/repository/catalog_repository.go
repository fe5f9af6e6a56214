package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/pkg/database"
)

// GormCatalogRepository implements CatalogRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GORM catalog repository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	if err := r.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (r *GormCatalogRepository) FindTag(ctx context.Context, id uint) (*domain.Tag, error) {
	var tag domain.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(domain.MsgTagNotFound)
		}
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return &tag, nil
}

func (r *GormCatalogRepository) CreateTag(ctx context.Context, tag *domain.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict(domain.MsgTagSlugExists)
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

func (r *GormCatalogRepository) ListUnits(ctx context.Context) ([]domain.MeasurementUnit, error) {
	var units []domain.MeasurementUnit
	if err := r.db.WithContext(ctx).Order("name").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

// FindOrCreateUnit returns the unit called name, inserting it on first use
func (r *GormCatalogRepository) FindOrCreateUnit(ctx context.Context, name string) (*domain.MeasurementUnit, error) {
	var unit domain.MeasurementUnit
	err := r.db.WithContext(ctx).
		Where(domain.MeasurementUnit{Name: name}).
		FirstOrCreate(&unit).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve unit: %w", err)
	}
	return &unit, nil
}

func (r *GormCatalogRepository) CreateUnit(ctx context.Context, unit *domain.MeasurementUnit) error {
	if err := r.db.WithContext(ctx).Create(unit).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict(domain.MsgUnitExists)
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

// DeleteUnit removes a unit no ingredient refers to
func (r *GormCatalogRepository) DeleteUnit(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit domain.MeasurementUnit
		if err := tx.First(&unit, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(domain.MsgUnitNotFound)
			}
			return fmt.Errorf("failed to find unit: %w", err)
		}

		var refs int64
		if err := tx.Model(&domain.Ingredient{}).Where("measurement_unit_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to check unit references: %w", err)
		}
		if refs > 0 {
			return apperr.Conflict(domain.MsgUnitInUse)
		}

		if err := tx.Delete(&unit).Error; err != nil {
			if database.IsForeignKeyViolation(err) {
				return apperr.Conflict(domain.MsgUnitInUse)
			}
			return fmt.Errorf("failed to delete unit: %w", err)
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchIngredients matches ingredients whose name starts with prefix, case-insensitively
func (r *GormCatalogRepository) SearchIngredients(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	q := r.db.WithContext(ctx).Preload("MeasurementUnit")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(prefix)) + "%"
		q = q.Where(`LOWER(ingredients.name) LIKE ? ESCAPE '\'`, pattern)
	}

	var ingredients []domain.Ingredient
	if err := q.Order("ingredients.name").Order("ingredients.id").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return ingredients, nil
}

func (r *GormCatalogRepository) FindIngredient(ctx context.Context, id uint) (*domain.Ingredient, error) {
	var ingredient domain.Ingredient
	if err := r.db.WithContext(ctx).Preload("MeasurementUnit").First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(domain.MsgIngredientNotFound)
		}
		return nil, fmt.Errorf("failed to find ingredient: %w", err)
	}
	return &ingredient, nil
}

// CreateIngredient inserts an ingredient. MeasurementUnitID must be set.
func (r *GormCatalogRepository) CreateIngredient(ctx context.Context, ingredient *domain.Ingredient) error {
	if err := r.db.WithContext(ctx).Omit("MeasurementUnit").Create(ingredient).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict(domain.MsgIngredientExists)
		}
		return fmt.Errorf("failed to create ingredient: %w", err)
	}
	return nil
}

// DeleteIngredient removes an ingredient no recipe uses
func (r *GormCatalogRepository) DeleteIngredient(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient domain.Ingredient
		if err := tx.First(&ingredient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(domain.MsgIngredientNotFound)
			}
			return fmt.Errorf("failed to find ingredient: %w", err)
		}

		var refs int64
		if err := tx.Model(&domain.RecipeIngredientEntry{}).Where("ingredient_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to check ingredient references: %w", err)
		}
		if refs > 0 {
			return apperr.Conflict(domain.MsgIngredientInUse)
		}

		if err := tx.Delete(&ingredient).Error; err != nil {
			if database.IsForeignKeyViolation(err) {
				return apperr.Conflict(domain.MsgIngredientInUse)
			}
			return fmt.Errorf("failed to delete ingredient: %w", err)
		}
		return nil
	})
}
