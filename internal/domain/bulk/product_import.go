// Package bulk records spreadsheet imports run by admins.
package bulk

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// ImportMode defines how existing SKUs are treated during an import
type ImportMode string

const (
	// ImportModeCreate rejects rows whose SKU already exists
	ImportModeCreate ImportMode = "create"
	// ImportModeUpsert updates rows whose SKU already exists
	ImportModeUpsert ImportMode = "upsert"
)

// IsValid checks if the mode is valid
func (m ImportMode) IsValid() bool {
	return m == ImportModeCreate || m == ImportModeUpsert
}

// ImportStatus represents the status of an import run
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// MaxRecordedErrors caps how many row errors are stored per run
const MaxRecordedErrors = 200

// RowError describes why one spreadsheet row was rejected
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ProductImport is the record of one bulk product upload
type ProductImport struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FileName    string       `gorm:"type:varchar(255);not null" json:"file_name"`
	FileSize    int64        `gorm:"not null" json:"file_size"`
	Mode        ImportMode   `gorm:"type:varchar(10);not null" json:"mode"`
	Status      ImportStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalRows   int          `gorm:"not null;default:0" json:"total_rows"`
	Created     int          `gorm:"column:created_rows;not null;default:0" json:"created"`
	Updated     int          `gorm:"column:updated_rows;not null;default:0" json:"updated"`
	Failed      int          `gorm:"column:failed_rows;not null;default:0" json:"failed"`
	Errors      []RowError   `gorm:"type:jsonb;serializer:json" json:"errors"`
	ImportedBy  uuid.UUID    `gorm:"type:uuid;not null;index" json:"imported_by"`
	StartedAt   time.Time    `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// TableName returns the table name for GORM
func (ProductImport) TableName() string {
	return "product_imports"
}

// NewProductImport starts a new import record
func NewProductImport(fileName string, fileSize int64, mode ImportMode, importedBy uuid.UUID) (*ProductImport, error) {
	if fileName == "" {
		return nil, shared.NewValidationError("File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewValidationError("File size cannot be negative")
	}
	if !mode.IsValid() {
		return nil, shared.NewValidationError("Invalid import mode: %s", mode)
	}
	return &ProductImport{
		ID:         uuid.New(),
		FileName:   fileName,
		FileSize:   fileSize,
		Mode:       mode,
		Status:     ImportStatusProcessing,
		Errors:     make([]RowError, 0),
		ImportedBy: importedBy,
		StartedAt:  time.Now(),
	}, nil
}

// RecordCreated counts a created row
func (p *ProductImport) RecordCreated() {
	p.TotalRows++
	p.Created++
}

// RecordUpdated counts an updated row
func (p *ProductImport) RecordUpdated() {
	p.TotalRows++
	p.Updated++
}

// RecordFailure counts a rejected row and keeps its errors
func (p *ProductImport) RecordFailure(errs ...RowError) {
	p.TotalRows++
	p.Failed++
	for _, e := range errs {
		if len(p.Errors) >= MaxRecordedErrors {
			return
		}
		p.Errors = append(p.Errors, e)
	}
}

// Complete closes the run. A run where every row failed is marked failed.
func (p *ProductImport) Complete() error {
	if p.Status.IsTerminal() {
		return shared.NewInvalidStateError("Import already finished with status %s", p.Status)
	}
	p.Status = ImportStatusCompleted
	if p.Failed > 0 && p.Created == 0 && p.Updated == 0 {
		p.Status = ImportStatusFailed
	}
	now := time.Now()
	p.CompletedAt = &now
	return nil
}

// Fail aborts the run with a file-level error
func (p *ProductImport) Fail(err RowError) error {
	if p.Status.IsTerminal() {
		return shared.NewInvalidStateError("Import already finished with status %s", p.Status)
	}
	p.Status = ImportStatusFailed
	p.Errors = append(p.Errors, err)
	now := time.Now()
	p.CompletedAt = &now
	return nil
}
