// Package membership implements the add/remove protocol shared by the
// favorite, shopping cart and follow relations.
//
// Each relation is a join table of (owner, target) pairs backed by a unique
// index and foreign keys to both sides. Add and Remove run their existence
// check and write in one transaction; a unique violation from a concurrent
// Add is reported as the same conflict a sequential double add produces.
package membership

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/pkg/database"
)

// Row is a persisted membership record.
type Row interface {
	TableName() string
}

// Relation describes one membership table.
type Relation[T Row] struct {
	Name         string
	OwnerColumn  string
	TargetColumn string
	New          func(ownerID, targetID uint) T

	// Client messages for rejected transitions.
	AlreadyPresent string
	NotPresent     string
	// Missing is reported when the owner or target row does not exist.
	Missing string
}

func (rel Relation[T]) pair(tx *gorm.DB, ownerID, targetID uint) *gorm.DB {
	return tx.Where(rel.OwnerColumn+" = ? AND "+rel.TargetColumn+" = ?", ownerID, targetID)
}

// Exists reports whether the pair is present.
func Exists[T Row](ctx context.Context, db *gorm.DB, rel Relation[T], ownerID, targetID uint) (bool, error) {
	var count int64
	err := rel.pair(db.WithContext(ctx).Model(new(T)), ownerID, targetID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s membership: %w", rel.Name, err)
	}
	return count > 0, nil
}

// Add moves the pair from absent to present.
func Add[T Row](ctx context.Context, db *gorm.DB, rel Relation[T], ownerID, targetID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := rel.pair(tx.Model(new(T)), ownerID, targetID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s membership: %w", rel.Name, err)
		}
		if count > 0 {
			return apperr.Conflict("%s", rel.AlreadyPresent)
		}

		row := rel.New(ownerID, targetID)
		if err := tx.Create(&row).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict("%s", rel.AlreadyPresent)
			}
			if database.IsForeignKeyViolation(err) {
				return apperr.NotFound("%s", rel.Missing)
			}
			return fmt.Errorf("failed to add %s membership: %w", rel.Name, err)
		}
		return nil
	})
}

// Remove moves the pair from present to absent.
func Remove[T Row](ctx context.Context, db *gorm.DB, rel Relation[T], ownerID, targetID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := rel.pair(tx.Model(new(T)), ownerID, targetID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s membership: %w", rel.Name, err)
		}
		if count == 0 {
			return apperr.Conflict("%s", rel.NotPresent)
		}

		result := rel.pair(tx, ownerID, targetID).Delete(new(T))
		if result.Error != nil {
			return fmt.Errorf("failed to remove %s membership: %w", rel.Name, result.Error)
		}
		// Lost a race with a concurrent remove.
		if result.RowsAffected == 0 {
			return apperr.Conflict("%s", rel.NotPresent)
		}
		return nil
	})
}

// TargetsOf returns which of targetIDs the owner holds. Used to annotate result pages.
func TargetsOf[T Row](ctx context.Context, db *gorm.DB, rel Relation[T], ownerID uint, targetIDs []uint) (map[uint]bool, error) {
	present := make(map[uint]bool, len(targetIDs))
	if ownerID == 0 || len(targetIDs) == 0 {
		return present, nil
	}

	var ids []uint
	err := db.WithContext(ctx).
		Model(new(T)).
		Where(rel.OwnerColumn+" = ? AND "+rel.TargetColumn+" IN ?", ownerID, targetIDs).
		Pluck(rel.TargetColumn, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s memberships: %w", rel.Name, err)
	}
	for _, id := range ids {
		present[id] = true
	}
	return present, nil
}

// OwnersOf returns every owner holding targetID.
func OwnersOf[T Row](ctx context.Context, db *gorm.DB, rel Relation[T], targetID uint) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).
		Model(new(T)).
		Where(rel.TargetColumn+" = ?", targetID).
		Order(rel.OwnerColumn).
		Pluck(rel.OwnerColumn, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s owners: %w", rel.Name, err)
	}
	return ids, nil
}

// CountTargets returns how many owners hold targetID.
func CountTargets[T Row](ctx context.Context, db *gorm.DB, rel Relation[T], targetID uint) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(new(T)).Where(rel.TargetColumn+" = ?", targetID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s memberships: %w", rel.Name, err)
	}
	return count, nil
}
