package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/bulk"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	csvimport "github.com/shopfront/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImportColumns lists the product spreadsheet columns in template order
var ImportColumns = []string{
	"sku", "name", "price", "stock", "category_slug",
	"description", "compare_at_price", "is_featured", "status",
}

var templateExample = []string{
	"TSHIRT-001", "Classic T-Shirt", "19.99", "100", "apparel",
	"Soft cotton tee", "24.99", "false", "active",
}

// ImportResponse is the outcome of one product import run
type ImportResponse struct {
	ID          uuid.UUID       `json:"id"`
	FileName    string          `json:"file_name"`
	Mode        string          `json:"mode"`
	Status      string          `json:"status"`
	TotalRows   int             `json:"total_rows"`
	Created     int             `json:"created"`
	Updated     int             `json:"updated"`
	Failed      int             `json:"failed"`
	Errors      []bulk.RowError `json:"errors"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ToImportResponse converts an import record
func ToImportResponse(r *bulk.ProductImport) ImportResponse {
	errs := r.Errors
	if errs == nil {
		errs = []bulk.RowError{}
	}
	return ImportResponse{
		ID:          r.ID,
		FileName:    r.FileName,
		Mode:        string(r.Mode),
		Status:      string(r.Status),
		TotalRows:   r.TotalRows,
		Created:     r.Created,
		Updated:     r.Updated,
		Failed:      r.Failed,
		Errors:      errs,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

// ImportService creates and updates products from CSV spreadsheets.
// Every row is saved on its own, so a bad row never blocks the good ones.
type ImportService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	importRepo   bulk.ProductImportRepository
	publisher    shared.EventPublisher
	maxSize      int64
	logger       *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	importRepo bulk.ProductImportRepository,
	limits UploadLimits,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ImportService {
	if publisher == nil {
		publisher = shared.NoopEventPublisher
	}
	return &ImportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		importRepo:   importRepo,
		publisher:    publisher,
		maxSize:      limits.withDefaults().MaxBulkSize,
		logger:       logger,
	}
}

func importValidator() *csvimport.Validator {
	return csvimport.NewValidator(
		csvimport.Field("sku").Required().MaxLength(64).Unique(catalog.NormalizeSKU),
		csvimport.Field("name").Required().MaxLength(200),
		csvimport.Field("price").Required().Decimal().Min(0),
		csvimport.Field("stock").Int().Min(0),
		csvimport.Field("category_slug").MaxLength(120),
		csvimport.Field("compare_at_price").Decimal().Min(0),
		csvimport.Field("is_featured").Bool(),
		csvimport.Field("status").OneOf(string(catalog.ProductStatusDraft), string(catalog.ProductStatusActive), string(catalog.ProductStatusArchived)),
	)
}

// Template writes the header row and one example row
func (s *ImportService) Template(w io.Writer) error {
	return csvimport.WriteTemplate(w, ImportColumns, templateExample)
}

// History lists past imports, newest first
func (s *ImportService) History(ctx context.Context, q ImportHistoryQuery) (*shared.Paginated[ImportResponse], error) {
	page, size := pageDefaults(q.Page, q.PageSize)
	records, total, err := s.importRepo.FindRecent(ctx, page, size)
	if err != nil {
		return nil, err
	}
	items := make([]ImportResponse, len(records))
	for i, r := range records {
		items[i] = ToImportResponse(r)
	}
	result := shared.NewPaginated(items, total, page, size)
	return &result, nil
}

// GetImport returns one import record
func (s *ImportService) GetImport(ctx context.Context, id uuid.UUID) (*ImportResponse, error) {
	record, err := s.importRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToImportResponse(record)
	return &resp, nil
}

// Import processes an uploaded spreadsheet. File-level problems (size,
// encoding, missing columns) reject the whole upload; row problems are
// reported per row in the result.
func (s *ImportService) Import(ctx context.Context, input ImportInput) (*ImportResponse, error) {
	mode := bulk.ImportMode(strings.ToLower(input.Mode))
	if mode == "" {
		mode = bulk.ImportModeUpsert
	}
	if !mode.IsValid() {
		return nil, shared.NewValidationError("Mode must be create or upsert")
	}
	if input.File.Size > s.maxSize {
		return nil, shared.NewDomainError(shared.CodeFileTooLarge,
			fmt.Sprintf("Spreadsheet exceeds the %d MiB limit", s.maxSize>>20))
	}
	if input.File.Body == nil || input.File.Size == 0 {
		return nil, shared.NewValidationError("Spreadsheet file is empty")
	}

	record, err := bulk.NewProductImport(input.File.Name, input.File.Size, mode, input.AdminID)
	if err != nil {
		return nil, err
	}
	if err := s.importRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	body := io.LimitReader(input.File.Body, s.maxSize+1)
	parser, err := csvimport.NewParser(body)
	if err != nil {
		return nil, s.reject(ctx, record, bulk.RowError{Code: csvimport.CodeMalformedRow, Message: err.Error()})
	}
	validator := importValidator()
	if missing := parser.Missing(validator.Required()...); len(missing) > 0 {
		return nil, s.reject(ctx, record, bulk.RowError{
			Row:     1,
			Column:  strings.Join(missing, ","),
			Code:    csvimport.CodeMissingColumn,
			Message: "Missing required columns: " + strings.Join(missing, ", "),
		})
	}

	run := &importRun{
		service:    s,
		record:     record,
		validator:  validator,
		categories: make(map[string]*uuid.UUID),
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			record.RecordFailure(bulk.RowError{Code: csvimport.CodeMalformedRow, Message: err.Error()})
			continue
		}
		if row.IsEmpty() {
			continue
		}
		if err := run.apply(ctx, row); err != nil {
			return nil, err
		}
	}

	if err := record.Complete(); err != nil {
		return nil, err
	}
	if err := s.importRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("Product import finished",
		zap.String("import_id", record.ID.String()),
		zap.String("mode", string(mode)),
		zap.Int("total", record.TotalRows),
		zap.Int("created", record.Created),
		zap.Int("updated", record.Updated),
		zap.Int("failed", record.Failed))
	resp := ToImportResponse(record)
	return &resp, nil
}

// reject closes the record as failed and returns a validation error
// carrying the file-level problem
func (s *ImportService) reject(ctx context.Context, record *bulk.ProductImport, rowErr bulk.RowError) error {
	_ = record.Fail(rowErr)
	if err := s.importRepo.Update(ctx, record); err != nil {
		s.logger.Warn("Failed to save import record", zap.String("import_id", record.ID.String()), zap.Error(err))
	}
	return shared.NewValidationError("%s", rowErr.Message).WithDetails([]bulk.RowError{rowErr})
}

type importRun struct {
	service    *ImportService
	record     *bulk.ProductImport
	validator  *csvimport.Validator
	categories map[string]*uuid.UUID
}

// apply validates and saves one row. Only infrastructure failures are
// returned; anything wrong with the row itself is recorded on it.
func (r *importRun) apply(ctx context.Context, row *csvimport.Row) error {
	if errs := r.validator.Validate(row); len(errs) > 0 {
		r.record.RecordFailure(errs...)
		return nil
	}

	categoryID, rowErr, err := r.category(ctx, row)
	if err != nil {
		return err
	}
	if rowErr != nil {
		r.record.RecordFailure(*rowErr)
		return nil
	}

	sku := catalog.NormalizeSKU(row.Get("sku"))
	existing, err := r.service.productRepo.FindBySKU(ctx, sku)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		existing = nil
	case err != nil:
		return err
	}

	if existing != nil {
		if r.record.Mode == bulk.ImportModeCreate {
			r.record.RecordFailure(bulk.RowError{
				Row: row.Line, Column: "sku", Code: csvimport.CodeDuplicateInDB,
				Message: fmt.Sprintf("Product with SKU %s already exists", sku), Value: sku,
			})
			return nil
		}
		if derr := fill(existing, row, categoryID); derr != nil {
			r.record.RecordFailure(rowError(row, derr))
			return nil
		}
		if err := r.service.productRepo.Update(ctx, existing); err != nil {
			return r.saveFailed(row, err)
		}
		r.service.publish(ctx, existing)
		r.record.RecordUpdated()
		return nil
	}

	price, _ := decimal.NewFromString(row.Get("price"))
	p, derr := catalog.NewProduct(sku, row.Get("name"), price)
	if derr != nil {
		r.record.RecordFailure(rowError(row, derr))
		return nil
	}
	if derr := fill(p, row, categoryID); derr != nil {
		r.record.RecordFailure(rowError(row, derr))
		return nil
	}
	slug, err := uniqueSlug(p.Slug, func(candidate string) (bool, error) {
		return r.service.productRepo.ExistsBySlug(ctx, candidate, nil)
	})
	if err != nil {
		return err
	}
	p.Slug = slug
	p.Version = 1
	if err := r.service.productRepo.Create(ctx, p); err != nil {
		return r.saveFailed(row, err)
	}
	r.service.publish(ctx, p)
	r.record.RecordCreated()
	return nil
}

// saveFailed records a domain rejection from the repository on the row
// and passes other errors through
func (r *importRun) saveFailed(row *csvimport.Row, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		r.record.RecordFailure(rowError(row, de))
		return nil
	}
	return err
}

func (r *importRun) category(ctx context.Context, row *csvimport.Row) (*uuid.UUID, *bulk.RowError, error) {
	slug := strings.ToLower(row.Get("category_slug"))
	if slug == "" {
		return nil, nil, nil
	}
	if id, ok := r.categories[slug]; ok {
		if id == nil {
			return nil, missingCategory(row, slug), nil
		}
		return id, nil, nil
	}
	c, err := r.service.categoryRepo.FindBySlug(ctx, slug)
	if errors.Is(err, shared.ErrNotFound) {
		r.categories[slug] = nil
		return nil, missingCategory(row, slug), nil
	}
	if err != nil {
		return nil, nil, err
	}
	r.categories[slug] = &c.ID
	return &c.ID, nil, nil
}

func missingCategory(row *csvimport.Row, slug string) *bulk.RowError {
	return &bulk.RowError{
		Row: row.Line, Column: "category_slug", Code: csvimport.CodeReferenceNotFound,
		Message: fmt.Sprintf("Category %s does not exist", slug), Value: slug,
	}
}

// fill copies row values onto p. Blank optional cells leave the current
// value untouched.
func fill(p *catalog.Product, row *csvimport.Row, categoryID *uuid.UUID) error {
	if err := p.Rename(row.Get("name")); err != nil {
		return err
	}
	price, _ := decimal.NewFromString(row.Get("price"))
	compareAt := p.CompareAtPrice
	if v := row.Get("compare_at_price"); v != "" {
		d, _ := decimal.NewFromString(v)
		compareAt = &d
		if d.IsZero() {
			compareAt = nil
		}
	}
	if err := p.SetPricing(price, compareAt, p.CostPrice); err != nil {
		return err
	}
	if v := row.Get("stock"); v != "" {
		n, _ := strconv.Atoi(v)
		if err := p.SetStock(n); err != nil {
			return err
		}
	}
	if v := row.Get("description"); v != "" {
		p.SetDescription(v)
	}
	if v := row.Get("is_featured"); v != "" {
		featured, _ := csvimport.ParseBool(v)
		p.SetFeatured(featured)
	}
	if v := row.Get("status"); v != "" {
		if err := p.SetStatus(catalog.ProductStatus(strings.ToLower(v))); err != nil {
			return err
		}
	}
	if categoryID != nil {
		p.SetCategory(categoryID)
	}
	return nil
}

func rowError(row *csvimport.Row, err error) bulk.RowError {
	code := csvimport.CodeInvalidValue
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code == shared.CodeAlreadyExists {
		code = csvimport.CodeDuplicateInDB
	}
	msg := err.Error()
	if de != nil {
		msg = de.Message
	}
	return bulk.RowError{Row: row.Line, Code: code, Message: msg}
}

func (s *ImportService) publish(ctx context.Context, p *catalog.Product) {
	if err := shared.PublishPending(ctx, s.publisher, p); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}
