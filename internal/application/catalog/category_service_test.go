package catalog

import (
	"context"
	"testing"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCategoryService() (*CategoryService, *testutil.MockCategoryRepository, *testutil.MockProductRepository, *testutil.InlineTxManager) {
	categories := new(testutil.MockCategoryRepository)
	products := new(testutil.MockProductRepository)
	tx := &testutil.InlineTxManager{}
	return NewCategoryService(categories, products, tx, nil, zap.NewNop()), categories, products, tx
}

func mustCategory(t *testing.T, name string, parent *catalog.Category) *catalog.Category {
	t.Helper()
	var (
		c   *catalog.Category
		err error
	)
	if parent == nil {
		c, err = catalog.NewCategory(name, "")
	} else {
		c, err = catalog.NewChildCategory(name, "", parent)
	}
	require.NoError(t, err)
	return c
}

func TestCategoryService_CreateDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	svc, categories, _, _ := newCategoryService()
	categories.On("ExistsBySlug", ctx, "shoes", mock.Anything).Return(true, nil)

	_, err := svc.Create(ctx, CreateCategoryInput{Name: "Shoes"})

	assertCode(t, err, shared.CodeAlreadyExists)
}

func TestCategoryService_CreateChild(t *testing.T) {
	ctx := context.Background()
	svc, categories, _, _ := newCategoryService()
	parent := mustCategory(t, "Apparel", nil)
	categories.On("FindByID", ctx, parent.ID).Return(parent, nil)
	categories.On("ExistsBySlug", ctx, "shirts", mock.Anything).Return(false, nil)
	categories.On("Create", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

	resp, err := svc.Create(ctx, CreateCategoryInput{Name: "Shirts", ParentID: &parent.ID})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Level)
	assert.Equal(t, &parent.ID, resp.ParentID)
}

func TestCategoryService_MoveRewritesSubtree(t *testing.T) {
	ctx := context.Background()
	svc, categories, _, tx := newCategoryService()
	apparel := mustCategory(t, "Apparel", nil)
	sale := mustCategory(t, "Sale", nil)
	shirts := mustCategory(t, "Shirts", apparel)
	polos := mustCategory(t, "Polos", shirts)
	oldPath := shirts.Path

	categories.On("FindByID", ctx, shirts.ID).Return(shirts, nil)
	categories.On("FindByID", ctx, sale.ID).Return(sale, nil)
	categories.On("FindDescendants", ctx, shirts).Return([]*catalog.Category{polos}, nil)
	categories.On("RewriteSubtreePaths", ctx, oldPath, sale.Path+"/"+shirts.ID.String(), 0).Return(nil)
	categories.On("Update", ctx, shirts).Return(nil)

	resp, err := svc.Update(ctx, shirts.ID, UpdateCategoryInput{ParentID: &sale.ID})

	require.NoError(t, err)
	assert.Equal(t, &sale.ID, resp.ParentID)
	assert.Equal(t, 1, tx.Calls)
	categories.AssertExpectations(t)
}

func TestCategoryService_MoveUnderOwnDescendantFails(t *testing.T) {
	ctx := context.Background()
	svc, categories, _, _ := newCategoryService()
	apparel := mustCategory(t, "Apparel", nil)
	shirts := mustCategory(t, "Shirts", apparel)

	categories.On("FindByID", ctx, apparel.ID).Return(apparel, nil)
	categories.On("FindByID", ctx, shirts.ID).Return(shirts, nil)
	categories.On("FindDescendants", ctx, apparel).Return([]*catalog.Category{shirts}, nil)

	_, err := svc.Update(ctx, apparel.ID, UpdateCategoryInput{ParentID: &shirts.ID})

	assertCode(t, err, shared.CodeValidation)
	categories.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("with children conflicts", func(t *testing.T) {
		svc, categories, _, _ := newCategoryService()
		c := mustCategory(t, "Apparel", nil)
		categories.On("FindByID", ctx, c.ID).Return(c, nil)
		categories.On("HasChildren", ctx, c.ID).Return(true, nil)

		assertCode(t, svc.Delete(ctx, c.ID), shared.CodeConflict)
	})

	t.Run("with products conflicts", func(t *testing.T) {
		svc, categories, products, _ := newCategoryService()
		c := mustCategory(t, "Mugs", nil)
		categories.On("FindByID", ctx, c.ID).Return(c, nil)
		categories.On("HasChildren", ctx, c.ID).Return(false, nil)
		products.On("CountByCategory", ctx, c.ID).Return(int64(3), nil)

		assertCode(t, svc.Delete(ctx, c.ID), shared.CodeConflict)
	})

	t.Run("empty category is deleted", func(t *testing.T) {
		svc, categories, products, _ := newCategoryService()
		c := mustCategory(t, "Mugs", nil)
		categories.On("FindByID", ctx, c.ID).Return(c, nil)
		categories.On("HasChildren", ctx, c.ID).Return(false, nil)
		products.On("CountByCategory", ctx, c.ID).Return(int64(0), nil)
		categories.On("Delete", ctx, c.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, c.ID))
	})
}

func TestBuildTree(t *testing.T) {
	apparel := mustCategory(t, "Apparel", nil)
	shirts := mustCategory(t, "Shirts", apparel)
	polos := mustCategory(t, "Polos", shirts)
	hidden := mustCategory(t, "Hidden", nil)
	orphan := mustCategory(t, "Orphan", hidden)

	tree := BuildTree([]*catalog.Category{apparel, shirts, polos, orphan}, true)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Polos", tree[0].Children[0].Children[0].Name)

	promoted := BuildTree([]*catalog.Category{apparel, orphan}, false)
	assert.Len(t, promoted, 2)
}
