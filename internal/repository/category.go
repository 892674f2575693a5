package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"catalogadmin/internal/models"
)

type CategoryPatch struct {
	Name        *string
	Description Nullable[string]
}

func (p CategoryPatch) columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description.Set {
		cols["description"] = p.Description.column()
	}
	return cols
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context, page Page) ([]models.Category, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting categories: %w", err)
	}
	items := make([]models.Category, 0)
	if err := r.db.WithContext(ctx).Scopes(page.scope).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("listing categories: %w", err)
	}
	return items, total, nil
}

// Update applies patch to c and reloads it.
func (r *CategoryRepository) Update(ctx context.Context, c *models.Category, patch CategoryPatch) error {
	if cols := patch.columns(); len(cols) > 0 {
		if err := r.db.WithContext(ctx).Model(c).Updates(cols).Error; err != nil {
			return fmt.Errorf("updating category %d: %w", c.ID, err)
		}
	}
	var fresh models.Category
	if err := r.db.WithContext(ctx).First(&fresh, c.ID).Error; err != nil {
		return notFound(err, "category", c.ID)
	}
	*c = fresh
	return nil
}

// Delete removes the category with its products and their files.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) (Orphans, error) {
	var orphans Orphans
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(ctx, tx, &models.Category{}, "category", id); err != nil {
			return err
		}

		var products []models.Product
		if err := tx.Select("id", "image").Where("category_id = ?", id).Find(&products).Error; err != nil {
			return fmt.Errorf("loading products of category %d: %w", id, err)
		}
		if len(products) > 0 {
			ids := make([]uint, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
				if p.Image != nil && *p.Image != "" {
					orphans.Images = append(orphans.Images, *p.Image)
				}
			}
			if err := tx.Model(&models.File{}).Where("product_id IN ?", ids).Pluck("path", &orphans.Files).Error; err != nil {
				return fmt.Errorf("loading files of category %d: %w", id, err)
			}
			if err := tx.Where("product_id IN ?", ids).Delete(&models.File{}).Error; err != nil {
				return fmt.Errorf("deleting files of category %d: %w", id, err)
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.Product{}).Error; err != nil {
				return fmt.Errorf("deleting products of category %d: %w", id, err)
			}
		}
		if err := tx.Delete(&models.Category{}, id).Error; err != nil {
			return fmt.Errorf("deleting category %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return Orphans{}, err
	}
	return orphans, nil
}
