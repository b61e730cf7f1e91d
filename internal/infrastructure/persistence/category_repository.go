package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create inserts a category
func (r *GormCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	return translate(conn(ctx, r.db).Create(category).Error, "Category")
}

// Update saves every column of a category
func (r *GormCategoryRepository) Update(ctx context.Context, category *catalog.Category) error {
	return translate(conn(ctx, r.db).Save(category).Error, "Category")
}

// Delete soft-deletes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&catalog.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Category")
	}
	return nil
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := conn(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Category")
	}
	return &category, nil
}

// FindBySlug finds a category by its slug
func (r *GormCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	var category catalog.Category
	if err := conn(ctx, r.db).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, "Category")
	}
	return &category, nil
}

// FindAll returns categories ordered by level, sort order and name
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter catalog.CategoryFilter) ([]*catalog.Category, error) {
	query := conn(ctx, r.db).Model(&catalog.Category{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?"+likeEscape, likePattern(filter.Search))
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.RootOnly {
		query = query.Where("parent_id IS NULL")
	}

	var categories []*catalog.Category
	if err := query.Order("level ASC, sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindDescendants returns every category whose path lies under category's path
func (r *GormCategoryRepository) FindDescendants(ctx context.Context, category *catalog.Category) ([]*catalog.Category, error) {
	var categories []*catalog.Category
	err := conn(ctx, r.db).
		Where("path LIKE ?", category.Path+"/%").
		Order("level ASC, sort_order ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ExistsBySlug reports whether the slug is taken, including by deleted categories
func (r *GormCategoryRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Unscoped().Model(&catalog.Category{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasChildren reports whether any live category has id as parent
func (r *GormCategoryRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&catalog.Category{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RewriteSubtreePaths moves every descendant of oldPrefix under newPrefix
func (r *GormCategoryRepository) RewriteSubtreePaths(ctx context.Context, oldPrefix, newPrefix string, levelDelta int) error {
	return conn(ctx, r.db).Model(&catalog.Category{}).
		Where("path LIKE ?", oldPrefix+"/%").
		UpdateColumns(map[string]any{
			"path":  gorm.Expr("? || SUBSTR(path, ?)", newPrefix, len(oldPrefix)+1),
			"level": gorm.Expr("level + ?", levelDelta),
		}).Error
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
