package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"catalogadmin/internal/models"
)

type ProductFilter struct {
	CategoryID *uint
	IsActive   *bool
}

func (f ProductFilter) scope(q *gorm.DB) *gorm.DB {
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return q
}

type ProductPatch struct {
	Name        *string
	Description Nullable[string]
	Image       Nullable[string]
	IsActive    *bool
	CategoryID  *uint
}

func (p ProductPatch) columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description.Set {
		cols["description"] = p.Description.column()
	}
	if p.Image.Set {
		cols["image"] = p.Image.column()
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	return cols
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts p after checking that its category exists.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(ctx, tx, &models.Category{}, "category", p.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("creating product: %w", err)
		}
		return nil
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context, page Page, filter ProductFilter) ([]models.Product, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}
	items := make([]models.Product, 0)
	if err := r.db.WithContext(ctx).Scopes(filter.scope, page.scope).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	return items, total, nil
}

// Update applies patch to p and reloads it. A new category id must exist.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product, patch ProductPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if patch.CategoryID != nil {
			if err := mustExist(ctx, tx, &models.Category{}, "category", *patch.CategoryID); err != nil {
				return err
			}
		}
		if cols := patch.columns(); len(cols) > 0 {
			if err := tx.Model(p).Updates(cols).Error; err != nil {
				return fmt.Errorf("updating product %d: %w", p.ID, err)
			}
		}
		var fresh models.Product
		if err := tx.First(&fresh, p.ID).Error; err != nil {
			return notFound(err, "product", p.ID)
		}
		*p = fresh
		return nil
	})
}

// Delete removes the product and its files.
func (r *ProductRepository) Delete(ctx context.Context, id uint) (Orphans, error) {
	var orphans Orphans
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err, "product", id)
		}
		if p.Image != nil && *p.Image != "" {
			orphans.Images = append(orphans.Images, *p.Image)
		}
		if err := tx.Model(&models.File{}).Where("product_id = ?", id).Pluck("path", &orphans.Files).Error; err != nil {
			return fmt.Errorf("loading files of product %d: %w", id, err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.File{}).Error; err != nil {
			return fmt.Errorf("deleting files of product %d: %w", id, err)
		}
		if err := tx.Delete(&models.Product{}, id).Error; err != nil {
			return fmt.Errorf("deleting product %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return Orphans{}, err
	}
	return orphans, nil
}
