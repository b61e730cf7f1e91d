package bulk

import (
	"context"

	"github.com/google/uuid"
)

// ProductImportRepository defines the interface for import record persistence
type ProductImportRepository interface {
	Create(ctx context.Context, record *ProductImport) error
	Update(ctx context.Context, record *ProductImport) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProductImport, error)
	// FindRecent returns the newest records first
	FindRecent(ctx context.Context, page, pageSize int) ([]*ProductImport, int64, error)
}
