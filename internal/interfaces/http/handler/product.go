package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
)

const (
	defaultFeaturedLimit = 8
	defaultRelatedLimit  = 4
)

// ProductHandler handles storefront and back-office product endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	importService  *catalogapp.ImportService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, importService *catalogapp.ImportService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		importService:  importService,
	}
}

// List godoc
// @ID           listProducts
// @Summary      List active products
// @Description  Category filters include every descendant category
// @Tags         products
// @Produce      json
// @Param        search      query string false "Search in name, SKU and description"
// @Param        category_id query string false "Category ID" format(uuid)
// @Param        min_price   query number false "Minimum price"
// @Param        max_price   query number false "Maximum price"
// @Param        featured    query bool   false "Featured only"
// @Param        in_stock    query bool   false "In stock only"
// @Param        sort        query string false "Sort order" Enums(newest, price_asc, price_desc, rating, name)
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var q catalogapp.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.productService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(&h.BaseHandler, c, page)
}

// Featured godoc
// @ID           listFeaturedProducts
// @Summary      Featured products
// @Tags         products
// @Produce      json
// @Param        limit query int false "Maximum number of products" default(8)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Router       /products/featured [get]
func (h *ProductHandler) Featured(c *gin.Context) {
	limit, ok := h.QueryInt(c, "limit", defaultFeaturedLimit)
	if !ok {
		return
	}

	products, err := h.productService.Featured(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// Get godoc
// @ID           getProduct
// @Summary      Get an active product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetBySlug godoc
// @ID           getProductBySlug
// @Summary      Get an active product by slug
// @Tags         products
// @Produce      json
// @Param        slug path string true "Product slug"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/slug/{slug} [get]
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Related godoc
// @ID           listRelatedProducts
// @Summary      Products from the same category
// @Tags         products
// @Produce      json
// @Param        id    path  string true  "Product ID" format(uuid)
// @Param        limit query int    false "Maximum number of products" default(4)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id}/related [get]
func (h *ProductHandler) Related(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	limit, ok := h.QueryInt(c, "limit", defaultRelatedLimit)
	if !ok {
		return
	}

	products, err := h.productService.Related(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// AdminList godoc
// @ID           adminListProducts
// @Summary      List products in any status
// @Tags         admin-products
// @Produce      json
// @Param        search    query string false "Search in name, SKU and description"
// @Param        status    query string false "Status" Enums(draft, active, archived)
// @Param        low_stock query bool   false "Only products at or below their low-stock threshold"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	var q catalogapp.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.productService.AdminList(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(&h.BaseHandler, c, page)
}

// AdminGet godoc
// @ID           adminGetProduct
// @Summary      Get a product in any status
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) AdminGet(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.AdminGet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Create godoc
// @ID           adminCreateProduct
// @Summary      Create a product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductInput true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Duplicate SKU or slug"
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductInput
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Update godoc
// @ID           adminUpdateProduct
// @Summary      Update a product
// @Description  Omitted fields keep their current value
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductInput true "Changes"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductInput
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @ID           adminDeleteProduct
// @Summary      Delete a product
// @Description  Soft delete; the product disappears from carts and wishlists
// @Tags         admin-products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UpdateStock godoc
// @ID           adminUpdateProductStock
// @Summary      Set the stock on hand
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateStockInput true "Stock"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/stock [patch]
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateStockInput
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// AddImages godoc
// @ID           adminAddProductImages
// @Summary      Upload product images
// @Description  JPEG, PNG, WebP or GIF. Types are detected from content, not file names.
// @Tags         admin-products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path     string true "Product ID" format(uuid)
// @Param        images formData file   true "Image files"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [post]
func (h *ProductHandler) AddImages(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	limits := h.productService.Limits()
	headers, ok := h.readMultipart(c, "images", limits.MaxImageSize*int64(limits.MaxImagesPerReq))
	if !ok {
		return
	}
	files, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	product, err := h.productService.AddImages(c.Request.Context(), id, files)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// RemoveImage godoc
// @ID           adminRemoveProductImage
// @Summary      Remove a product image
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Product ID" format(uuid)
// @Param        request body catalogapp.RemoveImageInput true "Image URL"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [delete]
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.RemoveImageInput
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.RemoveImage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// SetVideo godoc
// @ID           adminSetProductVideo
// @Summary      Upload the product video
// @Description  MP4, WebM or QuickTime. Replaces the current video.
// @Tags         admin-products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true "Product ID" format(uuid)
// @Param        video formData file   true "Video file"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/video [post]
func (h *ProductHandler) SetVideo(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	headers, ok := h.readMultipart(c, "video", h.productService.Limits().MaxVideoSize)
	if !ok {
		return
	}
	files, closeAll, err := openUploads(headers[:1])
	defer closeAll()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	product, err := h.productService.SetVideo(c.Request.Context(), id, files[0])
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// RemoveVideo godoc
// @ID           adminRemoveProductVideo
// @Summary      Remove the product video
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/video [delete]
func (h *ProductHandler) RemoveVideo(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.RemoveVideo(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// BulkImport godoc
// @ID           adminBulkImportProducts
// @Summary      Import products from a CSV spreadsheet
// @Description  Row errors are reported per row and do not fail the upload. In create mode existing SKUs are reported as errors.
// @Tags         admin-products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file   true  "CSV file"
// @Param        mode formData string false "Import mode" Enums(create, upsert) default(upsert)
// @Success      200 {object} APIResponse[catalogapp.ImportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/bulk [post]
func (h *ProductHandler) BulkImport(c *gin.Context) {
	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	headers, ok := h.readMultipart(c, "file", h.productService.Limits().MaxBulkSize)
	if !ok {
		return
	}
	files, closeAll, err := openUploads(headers[:1])
	defer closeAll()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.importService.Import(c.Request.Context(), catalogapp.ImportInput{
		File:    files[0],
		Mode:    c.Request.FormValue("mode"),
		AdminID: adminID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// BulkTemplate godoc
// @ID           adminProductImportTemplate
// @Summary      Download the import template
// @Tags         admin-products
// @Produce      text/csv
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /admin/products/bulk/template [get]
func (h *ProductHandler) BulkTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.importService.Template(&buf); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="products_template.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ImportHistory godoc
// @ID           adminListProductImports
// @Summary      Past product imports
// @Tags         admin-products
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]catalogapp.ImportResponse]
// @Security     BearerAuth
// @Router       /admin/imports [get]
func (h *ProductHandler) ImportHistory(c *gin.Context) {
	var q catalogapp.ImportHistoryQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.importService.History(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(&h.BaseHandler, c, page)
}

// GetImport godoc
// @ID           adminGetProductImport
// @Summary      Get one import with its row errors
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Import ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ImportResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/imports/{id} [get]
func (h *ProductHandler) GetImport(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.importService.GetImport(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
