package handler

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type productFixture struct {
	engine   *gin.Engine
	jwt      *auth.JWTService
	products *testutil.MockProductRepository
}

func newProductFixture() *productFixture {
	products := new(testutil.MockProductRepository)
	categories := new(testutil.MockCategoryRepository)
	imports := new(testutil.MockImportRepository)
	log := zap.NewNop()

	productSvc := catalogapp.NewProductService(products, categories, new(testutil.MockCartRepository), nil, catalogapp.UploadLimits{}, nil, log)
	importSvc := catalogapp.NewImportService(products, categories, imports, catalogapp.UploadLimits{}, nil, log)
	h := NewProductHandler(productSvc, importSvc)

	jwtSvc := newTestJWT()
	r := newEngine()
	admin := r.Group("/admin", middleware.AdminAuth(jwtSvc, auth.NewInMemoryTokenBlacklist(), log))
	admin.POST("/products", middleware.RequirePermission("catalog:write"), h.Create)
	admin.POST("/products/:id/images", middleware.RequirePermission("catalog:write"), h.AddImages)
	admin.GET("/products/bulk/template", middleware.RequirePermission("catalog:write"), h.BulkTemplate)
	r.GET("/products/:id", h.Get)

	return &productFixture{engine: r, jwt: jwtSvc, products: products}
}

func TestProductHandler_Create(t *testing.T) {
	t.Run("creates product", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("ExistsBySKU", mock.Anything, "MUG-1", (*uuid.UUID)(nil)).Return(false, nil)
		f.products.On("ExistsBySlug", mock.Anything, "ceramic-mug", mock.Anything).Return(false, nil)
		f.products.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

		w := testutil.Do(t, f.engine, testutil.Request{
			Method:  http.MethodPost,
			Path:    "/admin/products",
			Headers: bearer(adminToken(t, f.jwt, "catalog:write")),
			Body:    map[string]any{"sku": "mug-1", "name": "Ceramic Mug", "price": "12.50", "stock": 4},
		})

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		got := testutil.DecodeData[catalogapp.ProductResponse](t, w)
		assert.Equal(t, "MUG-1", got.SKU)
		assert.Equal(t, "ceramic-mug", got.Slug)
		assert.Equal(t, "12.5", got.Price.String())
		f.products.AssertExpectations(t)
	})

	t.Run("duplicate SKU", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("ExistsBySKU", mock.Anything, "DUP-1", (*uuid.UUID)(nil)).Return(true, nil)

		w := testutil.Do(t, f.engine, testutil.Request{
			Method:  http.MethodPost,
			Path:    "/admin/products",
			Headers: bearer(adminToken(t, f.jwt, "catalog:write")),
			Body:    map[string]any{"sku": "dup-1", "name": "Mug", "price": "3.00"},
		})

		testutil.AssertErrorResponse(t, w, http.StatusConflict, shared.CodeAlreadyExists)
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing name", func(t *testing.T) {
		f := newProductFixture()

		w := testutil.Do(t, f.engine, testutil.Request{
			Method:  http.MethodPost,
			Path:    "/admin/products",
			Headers: bearer(adminToken(t, f.jwt, "catalog:write")),
			Body:    map[string]any{"sku": "X-1", "price": "3.00"},
		})

		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, shared.CodeValidation)
	})

	t.Run("customer token is rejected", func(t *testing.T) {
		f := newProductFixture()
		token, _ := customerToken(t, f.jwt)

		w := testutil.Do(t, f.engine, testutil.Request{
			Method:  http.MethodPost,
			Path:    "/admin/products",
			Headers: bearer(token),
			Body:    map[string]any{"sku": "X-1", "name": "Mug", "price": "3.00"},
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing permission", func(t *testing.T) {
		f := newProductFixture()

		w := testutil.Do(t, f.engine, testutil.Request{
			Method:  http.MethodPost,
			Path:    "/admin/products",
			Headers: bearer(adminToken(t, f.jwt, "orders:read")),
			Body:    map[string]any{"sku": "X-1", "name": "Mug", "price": "3.00"},
		})

		testutil.AssertErrorResponse(t, w, http.StatusForbidden, shared.CodeForbidden)
	})
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	f := newProductFixture()
	id := uuid.New()
	f.products.On("FindByID", mock.Anything, id).Return(nil, shared.NewNotFoundError("Product"))

	w := testutil.Do(t, f.engine, testutil.Request{Path: "/products/" + id.String()})

	testutil.AssertErrorResponse(t, w, http.StatusNotFound, shared.CodeNotFound)
}

func TestProductHandler_AddImages_RequiresMultipart(t *testing.T) {
	f := newProductFixture()

	w := testutil.Do(t, f.engine, testutil.Request{
		Method:  http.MethodPost,
		Path:    "/admin/products/" + uuid.NewString() + "/images",
		Headers: bearer(adminToken(t, f.jwt, "catalog:write")),
		Body:    map[string]any{"url": "https://example.com/a.png"},
	})

	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, shared.CodeValidation)
}

func TestProductHandler_BulkTemplate(t *testing.T) {
	f := newProductFixture()

	w := testutil.Do(t, f.engine, testutil.Request{
		Path:    "/admin/products/bulk/template",
		Headers: bearer(adminToken(t, f.jwt, "catalog:write")),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products_template.csv")
	header, _, _ := bytes.Cut(w.Body.Bytes(), []byte("\n"))
	assert.Equal(t, strings.Join(catalogapp.ImportColumns, ","), string(header))
}
