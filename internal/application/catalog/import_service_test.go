package catalog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/bulk"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	csvimport "github.com/shopfront/backend/internal/infrastructure/import"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type importFixture struct {
	products   *testutil.MockProductRepository
	categories *testutil.MockCategoryRepository
	imports    *testutil.MockImportRepository
	service    *ImportService
}

func newImportFixture(limits UploadLimits) *importFixture {
	f := &importFixture{
		products:   new(testutil.MockProductRepository),
		categories: new(testutil.MockCategoryRepository),
		imports:    new(testutil.MockImportRepository),
	}
	f.imports.On("Create", mock.Anything, mock.AnythingOfType("*bulk.ProductImport")).Return(nil)
	f.imports.On("Update", mock.Anything, mock.AnythingOfType("*bulk.ProductImport")).Return(nil)
	f.service = NewImportService(f.products, f.categories, f.imports, limits, nil, zap.NewNop())
	return f
}

func csvFile(content string) UploadFile {
	return UploadFile{Name: "products.csv", Size: int64(len(content)), Body: strings.NewReader(content)}
}

func TestImportService_Upsert(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture(UploadLimits{})
	apparel, err := catalog.NewCategory("Apparel", "")
	require.NoError(t, err)
	existing := activeProduct(t, "OLD-1", "Old Name")

	f.categories.On("FindBySlug", ctx, "apparel").Return(apparel, nil)
	f.categories.On("FindBySlug", ctx, "nowhere").Return(nil, shared.NewNotFoundError("Category"))
	f.products.On("FindBySKU", ctx, "NEW-1").Return(nil, shared.NewNotFoundError("Product"))
	f.products.On("FindBySKU", ctx, "OLD-1").Return(existing, nil)
	f.products.On("ExistsBySlug", ctx, "fresh-tee", mock.Anything).Return(false, nil)
	f.products.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
	f.products.On("Update", ctx, existing).Return(nil)

	content := "SKU,Name,Price,Stock,Category_Slug,Is_Featured\n" +
		"new-1,Fresh Tee,12.50,4,apparel,yes\n" +
		"OLD-1,New Name,9.00,,,\n" +
		"BAD-1,Broken,abc,1,,\n" +
		"LOST-1,Lost,5,1,nowhere,\n" +
		"new-1,Again,1,1,,\n"

	resp, err := f.service.Import(ctx, ImportInput{File: csvFile(content), AdminID: uuid.New()})

	require.NoError(t, err)
	assert.Equal(t, "upsert", resp.Mode)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 5, resp.TotalRows)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 3, resp.Failed)
	assert.Equal(t, "New Name", existing.Name)

	codes := make(map[string]int)
	for _, e := range resp.Errors {
		codes[e.Code] = e.Row
	}
	assert.Equal(t, 4, codes[csvimport.CodeInvalidType])
	assert.Equal(t, 5, codes[csvimport.CodeReferenceNotFound])
	assert.Equal(t, 6, codes[csvimport.CodeDuplicateInFile])
}

func TestImportService_CreateModeRejectsExistingSKU(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture(UploadLimits{})
	f.products.On("FindBySKU", ctx, "OLD-1").Return(activeProduct(t, "OLD-1", "Old"), nil)

	resp, err := f.service.Import(ctx, ImportInput{
		File: csvFile("sku,name,price\nOLD-1,Old,3\n"),
		Mode: "create",
	})

	require.NoError(t, err)
	assert.Equal(t, "failed", resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, csvimport.CodeDuplicateInDB, resp.Errors[0].Code)
	f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestImportService_FileLevelErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing column", func(t *testing.T) {
		f := newImportFixture(UploadLimits{})
		_, err := f.service.Import(ctx, ImportInput{File: csvFile("sku,name\nA,B\n")})

		assertCode(t, err, shared.CodeValidation)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		details, ok := de.Details.([]bulk.RowError)
		require.True(t, ok)
		assert.Equal(t, csvimport.CodeMissingColumn, details[0].Code)
		f.imports.AssertCalled(t, "Update", mock.Anything, mock.MatchedBy(func(r *bulk.ProductImport) bool {
			return r.Status == bulk.ImportStatusFailed
		}))
	})

	t.Run("too large", func(t *testing.T) {
		f := newImportFixture(UploadLimits{MaxBulkSize: 8})
		_, err := f.service.Import(ctx, ImportInput{File: csvFile("sku,name,price\n")})

		assertCode(t, err, shared.CodeFileTooLarge)
		f.imports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown mode", func(t *testing.T) {
		f := newImportFixture(UploadLimits{})
		_, err := f.service.Import(ctx, ImportInput{File: csvFile("sku\n"), Mode: "replace"})

		assertCode(t, err, shared.CodeValidation)
	})
}

func TestImportService_Template(t *testing.T) {
	f := newImportFixture(UploadLimits{})
	var buf bytes.Buffer

	require.NoError(t, f.service.Template(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(ImportColumns, ","), lines[0])
}
