package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts a product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return translate(conn(ctx, r.db).Create(product).Error, "Product")
}

// Update writes a product back, guarded by the version it was loaded at.
// Returns ErrConcurrencyConflict when the row changed in between. Rating
// columns belong to UpdateRating and are left alone.
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	result := conn(ctx, r.db).Model(&catalog.Product{}).
		Where("id = ? AND version = ?", product.ID, product.PersistedVersion()).
		Select("*").Omit("id", "created_at", "rating_avg", "rating_count").
		Updates(product)
	if result.Error != nil {
		return translate(result.Error, "Product")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	product.MarkPersisted()
	return nil
}

// Delete soft-deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Product")
	}
	return nil
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindBySlug finds a product by its slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

// FindBySKU finds a product by its SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return r.findOne(ctx, "sku = ?", catalog.NormalizeSKU(sku))
}

func (r *GormProductRepository) findOne(ctx context.Context, query string, args ...any) (*catalog.Product, error) {
	var product catalog.Product
	if err := conn(ctx, r.db).Where(query, args...).First(&product).Error; err != nil {
		return nil, translate(err, "Product")
	}
	return &product, nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var products []*catalog.Product
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByIDsForUpdate loads products with SELECT ... FOR UPDATE, ordered by
// ID so concurrent checkouts lock rows in the same order
func (r *GormProductRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var products []*catalog.Product
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds products matching the filter and the total before paging
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&catalog.Product{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*catalog.Product
	err := paginate(query.Order(productOrder(filter.Sort)), filter.Page, filter.PageSize).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ExistsBySKU reports whether the SKU is taken, including by deleted products
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "sku = ?", catalog.NormalizeSKU(sku), excludeID)
}

// ExistsBySlug reports whether the slug is taken, including by deleted products
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "slug = ?", slug, excludeID)
}

func (r *GormProductRepository) exists(ctx context.Context, query string, value any, excludeID *uuid.UUID) (bool, error) {
	q := conn(ctx, r.db).Unscoped().Model(&catalog.Product{}).Where(query, value)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCategory counts live products in a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&catalog.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// UpdateRating writes only the rating columns
func (r *GormProductRepository) UpdateRating(ctx context.Context, id uuid.UUID, avg decimal.Decimal, count int) error {
	return conn(ctx, r.db).Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"rating_avg": avg.Round(2), "rating_count": count}).Error
}

// Count counts live products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&catalog.Product{}).Count(&count).Error
	return count, err
}

// CountLowStock counts live products at or below their threshold
func (r *GormProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&catalog.Product{}).
		Where("stock <= low_stock_threshold").
		Where("status <> ?", catalog.ProductStatusArchived).
		Count(&count).Error
	return count, err
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(sku) LIKE ?"+likeEscape+" OR LOWER(description) LIKE ?"+likeEscape+")", p, p, p)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.InStock != nil {
		if *filter.InStock {
			query = query.Where("stock > 0")
		} else {
			query = query.Where("stock = 0")
		}
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.LowStock {
		query = query.Where("stock <= low_stock_threshold")
	}
	if filter.ExcludeID != nil {
		query = query.Where("id <> ?", *filter.ExcludeID)
	}
	return query
}

// productOrder maps a sort key onto an ORDER BY. Unknown keys sort newest first.
func productOrder(sort string) string {
	switch sort {
	case catalog.ProductSortPriceAsc:
		return "price ASC, created_at DESC"
	case catalog.ProductSortPriceDesc:
		return "price DESC, created_at DESC"
	case catalog.ProductSortRating:
		return "rating_avg DESC, rating_count DESC, created_at DESC"
	case catalog.ProductSortName:
		return "name ASC"
	}
	return "created_at DESC"
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
