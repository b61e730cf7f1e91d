package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/bulk"
	"gorm.io/gorm"
)

// GormProductImportRepository implements ProductImportRepository using GORM
type GormProductImportRepository struct {
	db *gorm.DB
}

// NewGormProductImportRepository creates a new GormProductImportRepository
func NewGormProductImportRepository(db *gorm.DB) *GormProductImportRepository {
	return &GormProductImportRepository{db: db}
}

// Create inserts an import record
func (r *GormProductImportRepository) Create(ctx context.Context, record *bulk.ProductImport) error {
	return conn(ctx, r.db).Create(record).Error
}

// Update saves an import record
func (r *GormProductImportRepository) Update(ctx context.Context, record *bulk.ProductImport) error {
	return conn(ctx, r.db).Save(record).Error
}

// FindByID finds an import record by ID
func (r *GormProductImportRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ProductImport, error) {
	var record bulk.ProductImport
	if err := conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Import")
	}
	return &record, nil
}

// FindRecent returns import records, most recent first
func (r *GormProductImportRepository) FindRecent(ctx context.Context, page, pageSize int) ([]*bulk.ProductImport, int64, error) {
	query := conn(ctx, r.db).Model(&bulk.ProductImport{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []*bulk.ProductImport
	if err := paginate(query.Order("started_at DESC"), page, pageSize).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

var _ bulk.ProductImportRepository = (*GormProductImportRepository)(nil)
