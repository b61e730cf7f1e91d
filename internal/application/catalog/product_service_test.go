package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStorage keeps uploaded objects in memory
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if f.failPut {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://cdn.test/" + key
	f.objects[url] = data
	return url, nil
}

func (f *fakeStorage) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, url)
	f.deleted = append(f.deleted, url)
	return nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngFile(name string) UploadFile {
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	return UploadFile{Name: name, Size: int64(len(data)), Body: bytes.NewReader(data)}
}

type productFixture struct {
	products   *testutil.MockProductRepository
	categories *testutil.MockCategoryRepository
	carts      *testutil.MockCartRepository
	storage    *fakeStorage
	publisher  *testutil.RecordingPublisher
	service    *ProductService
}

func newProductFixture(limits UploadLimits) *productFixture {
	f := &productFixture{
		products:   new(testutil.MockProductRepository),
		categories: new(testutil.MockCategoryRepository),
		carts:      new(testutil.MockCartRepository),
		storage:    newFakeStorage(),
		publisher:  &testutil.RecordingPublisher{},
	}
	f.service = NewProductService(f.products, f.categories, f.carts, f.storage, limits, f.publisher, zap.NewNop())
	return f
}

func activeProduct(t *testing.T, sku, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, name, decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(catalog.ProductStatusActive))
	p.ClearDomainEvents()
	return p
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate SKU conflicts", func(t *testing.T) {
		f := newProductFixture(UploadLimits{})
		f.products.On("ExistsBySKU", ctx, "TEE-1", mock.Anything).Return(true, nil)

		_, err := f.service.Create(ctx, CreateProductInput{SKU: " tee-1 ", Name: "Tee", Price: decimal.NewFromInt(10)})

		assertCode(t, err, shared.CodeAlreadyExists)
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("generated slug gets a suffix when taken", func(t *testing.T) {
		f := newProductFixture(UploadLimits{})
		f.products.On("ExistsBySKU", ctx, "TEE-2", mock.Anything).Return(false, nil)
		f.products.On("ExistsBySlug", ctx, "classic-tee", mock.Anything).Return(true, nil)
		f.products.On("ExistsBySlug", ctx, "classic-tee-2", mock.Anything).Return(false, nil)
		f.products.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := f.service.Create(ctx, CreateProductInput{
			SKU:    "tee-2",
			Name:   "Classic Tee",
			Price:  decimal.RequireFromString("19.99"),
			Stock:  5,
			Status: "active",
		})

		require.NoError(t, err)
		assert.Equal(t, "classic-tee-2", resp.Slug)
		assert.Equal(t, "TEE-2", resp.SKU)
		assert.True(t, resp.InStock)
		require.NotNil(t, resp.CostPrice)
		assert.Contains(t, f.publisher.Types(), catalog.EventTypeProductCreated)
	})

	t.Run("explicit slug that is taken conflicts", func(t *testing.T) {
		f := newProductFixture(UploadLimits{})
		f.products.On("ExistsBySKU", ctx, "TEE-3", mock.Anything).Return(false, nil)
		f.products.On("ExistsBySlug", ctx, "summer", mock.Anything).Return(true, nil)

		_, err := f.service.Create(ctx, CreateProductInput{SKU: "TEE-3", Name: "Tee", Slug: "Summer", Price: decimal.NewFromInt(1)})

		assertCode(t, err, shared.CodeAlreadyExists)
	})

	t.Run("unknown category is a validation error", func(t *testing.T) {
		f := newProductFixture(UploadLimits{})
		categoryID := uuid.New()
		f.products.On("ExistsBySKU", ctx, "TEE-4", mock.Anything).Return(false, nil)
		f.categories.On("FindByID", ctx, categoryID).Return(nil, shared.NewNotFoundError("Category"))

		_, err := f.service.Create(ctx, CreateProductInput{SKU: "TEE-4", Name: "Tee", Price: decimal.NewFromInt(1), CategoryID: &categoryID})

		assertCode(t, err, shared.CodeValidation)
	})
}

func TestProductService_GetHidesInactiveProducts(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(UploadLimits{})
	draft, err := catalog.NewProduct("D-1", "Draft", decimal.NewFromInt(3))
	require.NoError(t, err)
	f.products.On("FindByID", ctx, draft.ID).Return(draft, nil)

	_, err = f.service.Get(ctx, draft.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	resp, err := f.service.AdminGet(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)
}

func TestProductService_ListExpandsCategoryAndForcesActive(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(UploadLimits{})
	parent, err := catalog.NewCategory("Apparel", "")
	require.NoError(t, err)
	child, err := catalog.NewChildCategory("Shirts", "", parent)
	require.NoError(t, err)

	f.categories.On("FindByID", ctx, parent.ID).Return(parent, nil)
	f.categories.On("FindDescendants", ctx, parent).Return([]*catalog.Category{child}, nil)
	f.products.On("FindAll", ctx, mock.MatchedBy(func(filter catalog.ProductFilter) bool {
		return filter.Status != nil && *filter.Status == catalog.ProductStatusActive &&
			len(filter.CategoryIDs) == 2 && filter.Page == 1 && filter.PageSize == 20
	})).Return([]*catalog.Product{activeProduct(t, "S-1", "Shirt")}, int64(1), nil)

	page, err := f.service.List(ctx, ProductListQuery{CategoryID: parent.ID.String(), Status: "draft"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.Items[0].CostPrice)
}

func TestProductService_ListRejectsInvertedPriceRange(t *testing.T) {
	f := newProductFixture(UploadLimits{})
	lo, hi := 50.0, 10.0

	_, err := f.service.List(context.Background(), ProductListQuery{MinPrice: &lo, MaxPrice: &hi})

	assertCode(t, err, shared.CodeValidation)
}

func TestProductService_DeleteDropsProductFromCarts(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(UploadLimits{})
	id := uuid.New()
	f.products.On("Delete", ctx, id).Return(nil)
	f.carts.On("RemoveProduct", ctx, id).Return(nil)

	require.NoError(t, f.service.Delete(ctx, id))
	f.carts.AssertExpectations(t)
}

func TestProductService_AddImages(t *testing.T) {
	ctx := context.Background()

	t.Run("stores images and appends URLs", func(t *testing.T) {
		f := newProductFixture(UploadLimits{})
		p := activeProduct(t, "IMG-1", "Mug")
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)
		f.products.On("Update", ctx, p).Return(nil)

		resp, err := f.service.AddImages(ctx, p.ID, []UploadFile{pngFile("a.png"), pngFile("b.png")})

		require.NoError(t, err)
		require.Len(t, resp.Images, 2)
		for _, url := range resp.Images {
			assert.True(t, strings.HasSuffix(url, ".png"))
			assert.Contains(t, url, "products/"+p.ID.String()+"/images/")
		}
		assert.Len(t, f.storage.objects, 2)
	})

	t.Run("oversized image is rejected", func(t *testing.T) {
		f := newProductFixture(UploadLimits{MaxImageSize: 16})
		p := activeProduct(t, "IMG-2", "Mug")
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := f.service.AddImages(ctx, p.ID, []UploadFile{pngFile("big.png")})

		assertCode(t, err, shared.CodeFileTooLarge)
		assert.Empty(t, f.storage.objects)
	})

	t.Run("unsupported type discards earlier uploads", func(t *testing.T) {
		f := newProductFixture(UploadLimits{})
		p := activeProduct(t, "IMG-3", "Mug")
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)
		text := []byte("just some plain text, not an image")
		bad := UploadFile{Name: "notes.png", Size: int64(len(text)), Body: bytes.NewReader(text)}

		_, err := f.service.AddImages(ctx, p.ID, []UploadFile{pngFile("ok.png"), bad})

		assertCode(t, err, shared.CodeUnsupportedFileType)
		assert.Empty(t, f.storage.objects)
		assert.Len(t, f.storage.deleted, 1)
		f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("image cap per product", func(t *testing.T) {
		f := newProductFixture(UploadLimits{})
		p := activeProduct(t, "IMG-4", "Mug")
		for i := 0; i < catalog.MaxProductImages; i++ {
			p.Images = append(p.Images, "https://cdn.test/x"+string(rune('a'+i)))
		}
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := f.service.AddImages(ctx, p.ID, []UploadFile{pngFile("one-more.png")})

		assertCode(t, err, shared.CodeValidation)
	})
}

func TestProductService_RemoveVideoWithoutVideo(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(UploadLimits{})
	p := activeProduct(t, "VID-1", "Camera")
	f.products.On("FindByID", ctx, p.ID).Return(p, nil)

	_, err := f.service.RemoveVideo(ctx, p.ID)

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"mug": true, "mug-2": true}
	slug, err := uniqueSlug("mug", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "mug-3", slug)
}
