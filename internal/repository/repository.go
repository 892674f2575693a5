// Package repository persists catalog records through gorm. Cascading
// deletes are done here explicitly inside one transaction, and hand back
// the storage paths they orphaned so the caller can clean up the disk.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

var (
	// ErrNotFound matches every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidPage is returned for out-of-range skip/limit values.
	ErrInvalidPage = errors.New("invalid pagination")
)

// NotFoundError names the entity and id that could not be found.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Page is an offset window over a listing ordered by id descending.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) Validate() error {
	if p.Skip < 0 {
		return fmt.Errorf("%w: skip must be >= 0", ErrInvalidPage)
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidPage, MaxLimit)
	}
	return nil
}

func (p Page) scope(q *gorm.DB) *gorm.DB {
	return q.Order("id desc").Offset(p.Skip).Limit(p.Limit)
}

// Orphans lists storage paths whose records were deleted.
type Orphans struct {
	Images []string // relative to the images root
	Files  []string // relative to the files root
}

func notFound(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}

// mustExist fails with a NotFoundError unless a row of model with id exists.
func mustExist(ctx context.Context, tx *gorm.DB, model any, entity string, id uint) error {
	var n int64
	if err := tx.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("checking %s %d: %w", entity, id, err)
	}
	if n == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
