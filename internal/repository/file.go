package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"catalogadmin/internal/models"
)

type FileFilter struct {
	ProductID *uint
}

func (f FileFilter) scope(q *gorm.DB) *gorm.DB {
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	return q
}

type FilePatch struct {
	Name      *string
	Path      *string
	ProductID *uint
}

func (p FilePatch) columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Path != nil {
		cols["path"] = *p.Path
	}
	if p.ProductID != nil {
		cols["product_id"] = *p.ProductID
	}
	return cols
}

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts f after checking that its product exists.
func (r *FileRepository) Create(ctx context.Context, f *models.File) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(ctx, tx, &models.Product{}, "product", f.ProductID); err != nil {
			return err
		}
		if err := tx.Create(f).Error; err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		return nil
	})
}

func (r *FileRepository) GetByID(ctx context.Context, id uint) (*models.File, error) {
	var f models.File
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, notFound(err, "file", id)
	}
	return &f, nil
}

func (r *FileRepository) List(ctx context.Context, page Page, filter FileFilter) ([]models.File, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.File{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting files: %w", err)
	}
	items := make([]models.File, 0)
	if err := r.db.WithContext(ctx).Scopes(filter.scope, page.scope).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("listing files: %w", err)
	}
	return items, total, nil
}

// Update applies patch to f and reloads it. A new product id must exist.
func (r *FileRepository) Update(ctx context.Context, f *models.File, patch FilePatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if patch.ProductID != nil {
			if err := mustExist(ctx, tx, &models.Product{}, "product", *patch.ProductID); err != nil {
				return err
			}
		}
		if cols := patch.columns(); len(cols) > 0 {
			if err := tx.Model(f).Updates(cols).Error; err != nil {
				return fmt.Errorf("updating file %d: %w", f.ID, err)
			}
		}
		var fresh models.File
		if err := tx.First(&fresh, f.ID).Error; err != nil {
			return notFound(err, "file", f.ID)
		}
		*f = fresh
		return nil
	})
}

// Delete removes the file record.
func (r *FileRepository) Delete(ctx context.Context, id uint) (Orphans, error) {
	var orphans Orphans
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f models.File
		if err := tx.First(&f, id).Error; err != nil {
			return notFound(err, "file", id)
		}
		if err := tx.Delete(&models.File{}, id).Error; err != nil {
			return fmt.Errorf("deleting file %d: %w", id, err)
		}
		if f.Path != "" {
			orphans.Files = append(orphans.Files, f.Path)
		}
		return nil
	})
	if err != nil {
		return Orphans{}, err
	}
	return orphans, nil
}
