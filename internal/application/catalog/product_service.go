package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/shopping"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	cartRepo     shopping.CartRepository
	storage      MediaStorage
	limits       UploadLimits
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	cartRepo shopping.CartRepository,
	storage MediaStorage,
	limits UploadLimits,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if publisher == nil {
		publisher = shared.NoopEventPublisher
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cartRepo:     cartRepo,
		storage:      storage,
		limits:       limits.withDefaults(),
		publisher:    publisher,
		logger:       logger,
	}
}

// Limits returns the effective upload limits
func (s *ProductService) Limits() UploadLimits {
	return s.limits
}

// List returns active products for the storefront. A category filter
// includes every descendant category.
func (s *ProductService) List(ctx context.Context, q ProductListQuery) (*shared.Paginated[ProductResponse], error) {
	q.Status = string(catalog.ProductStatusActive)
	q.LowStock = false
	return s.list(ctx, q, ToProductResponse)
}

// AdminList returns products of every status
func (s *ProductService) AdminList(ctx context.Context, q ProductListQuery) (*shared.Paginated[ProductResponse], error) {
	return s.list(ctx, q, ToAdminProductResponse)
}

func (s *ProductService) list(ctx context.Context, q ProductListQuery, convert func(*catalog.Product) ProductResponse) (*shared.Paginated[ProductResponse], error) {
	filter, err := s.buildFilter(ctx, q)
	if err != nil {
		return nil, err
	}
	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(toProductResponses(products, convert), total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *ProductService) buildFilter(ctx context.Context, q ProductListQuery) (catalog.ProductFilter, error) {
	filter := catalog.ProductFilter{
		Search:   q.Search,
		Featured: q.Featured,
		InStock:  q.InStock,
		LowStock: q.LowStock,
		Sort:     q.Sort,
	}
	filter.Page, filter.PageSize = pageDefaults(q.Page, q.PageSize)
	if q.MinPrice != nil {
		v := decimal.NewFromFloat(*q.MinPrice)
		filter.MinPrice = &v
	}
	if q.MaxPrice != nil {
		v := decimal.NewFromFloat(*q.MaxPrice)
		filter.MaxPrice = &v
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return filter, shared.NewValidationError("min_price cannot exceed max_price")
	}
	if q.Status != "" {
		status := catalog.ProductStatus(q.Status)
		filter.Status = &status
	}
	if q.CategoryID != "" {
		id, err := uuid.Parse(q.CategoryID)
		if err != nil {
			return filter, shared.NewValidationError("Invalid category_id")
		}
		ids, err := s.categoryTree(ctx, id)
		if err != nil {
			return filter, err
		}
		filter.CategoryIDs = ids
	}
	return filter, nil
}

// categoryTree returns id and the IDs of every category below it
func (s *ProductService) categoryTree(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	descendants, err := s.categoryRepo.FindDescendants(ctx, category)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(descendants)+1)
	ids = append(ids, category.ID)
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// Featured returns up to limit featured active products
func (s *ProductService) Featured(ctx context.Context, limit int) ([]ProductResponse, error) {
	limit = clampLimit(limit, 8, 50)
	featured := true
	status := catalog.ProductStatusActive
	products, _, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		Featured: &featured,
		Status:   &status,
		Sort:     catalog.ProductSortNewest,
		Page:     1,
		PageSize: limit,
	})
	if err != nil {
		return nil, err
	}
	return toProductResponses(products, ToProductResponse), nil
}

// Get returns an active product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != catalog.ProductStatusActive {
		return nil, shared.NewNotFoundError("Product")
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// GetBySlug returns an active product by slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	p, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p.Status != catalog.ProductStatusActive {
		return nil, shared.NewNotFoundError("Product")
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// AdminGet returns a product of any status
func (s *ProductService) AdminGet(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAdminProductResponse(p)
	return &resp, nil
}

// Related returns active products of the same category, best rated first
func (s *ProductService) Related(ctx context.Context, id uuid.UUID, limit int) ([]ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != catalog.ProductStatusActive {
		return nil, shared.NewNotFoundError("Product")
	}
	if p.CategoryID == nil {
		return []ProductResponse{}, nil
	}
	limit = clampLimit(limit, 4, 20)
	status := catalog.ProductStatusActive
	products, _, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		CategoryIDs: []uuid.UUID{*p.CategoryID},
		Status:      &status,
		ExcludeID:   &p.ID,
		Sort:        catalog.ProductSortRating,
		Page:        1,
		PageSize:    limit,
	})
	if err != nil {
		return nil, err
	}
	return toProductResponses(products, ToProductResponse), nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*ProductResponse, error) {
	sku := catalog.NormalizeSKU(input.SKU)
	exists, err := s.productRepo.ExistsBySKU(ctx, sku, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("Product with SKU %s already exists", sku)
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	p, err := catalog.NewProduct(sku, input.Name, input.Price)
	if err != nil {
		return nil, err
	}
	if err := s.assignSlug(ctx, p, input.Slug); err != nil {
		return nil, err
	}

	p.SetDescription(input.Description)
	cost := decimal.Zero
	if input.CostPrice != nil {
		cost = *input.CostPrice
	}
	if err := p.SetPricing(input.Price, input.CompareAtPrice, cost); err != nil {
		return nil, err
	}
	if err := p.SetStock(input.Stock); err != nil {
		return nil, err
	}
	if input.LowStockThreshold != nil {
		if err := p.SetLowStockThreshold(*input.LowStockThreshold); err != nil {
			return nil, err
		}
	}
	if input.Weight != nil {
		if err := p.SetWeight(*input.Weight); err != nil {
			return nil, err
		}
	}
	if input.Status != "" {
		if err := p.SetStatus(catalog.ProductStatus(input.Status)); err != nil {
			return nil, err
		}
	}
	p.SetCategory(input.CategoryID)
	p.SetFeatured(input.IsFeatured)
	// A new product is at version 1 however many setters ran
	p.Version = 1

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)
	s.logger.Info("Product created", zap.String("product_id", p.ID.String()), zap.String("sku", p.SKU))

	resp := ToAdminProductResponse(p)
	return &resp, nil
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil {
		sku := catalog.NormalizeSKU(*input.SKU)
		if sku != p.SKU {
			exists, err := s.productRepo.ExistsBySKU(ctx, sku, &p.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewConflictError("Product with SKU %s already exists", sku)
			}
			if err := p.SetSKU(sku); err != nil {
				return nil, err
			}
		}
	}
	if input.Name != nil {
		if err := p.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Slug != nil && shared.Slugify(*input.Slug) != p.Slug {
		if err := s.assignSlug(ctx, p, *input.Slug); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		p.SetDescription(*input.Description)
	}
	if input.Price != nil || input.CompareAtPrice != nil || input.CostPrice != nil {
		price, compareAt, cost := p.Price, p.CompareAtPrice, p.CostPrice
		if input.Price != nil {
			price = *input.Price
		}
		if input.CompareAtPrice != nil {
			compareAt = input.CompareAtPrice
			if compareAt.IsZero() {
				compareAt = nil
			}
		}
		if input.CostPrice != nil {
			cost = *input.CostPrice
		}
		if err := p.SetPricing(price, compareAt, cost); err != nil {
			return nil, err
		}
	}
	if input.Stock != nil {
		if err := p.SetStock(*input.Stock); err != nil {
			return nil, err
		}
	}
	if input.LowStockThreshold != nil {
		if err := p.SetLowStockThreshold(*input.LowStockThreshold); err != nil {
			return nil, err
		}
	}
	if input.Weight != nil {
		if err := p.SetWeight(*input.Weight); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if err := p.SetStatus(catalog.ProductStatus(*input.Status)); err != nil {
			return nil, err
		}
	}
	if input.IsFeatured != nil {
		p.SetFeatured(*input.IsFeatured)
	}
	switch {
	case input.ClearCategory:
		p.SetCategory(nil)
	case input.CategoryID != nil:
		if err := s.checkCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		p.SetCategory(input.CategoryID)
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)
	resp := ToAdminProductResponse(p)
	return &resp, nil
}

// Delete soft-deletes a product and drops it from every cart
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cartRepo != nil {
		if err := s.cartRepo.RemoveProduct(ctx, id); err != nil {
			s.logger.Warn("Failed to remove deleted product from carts", zap.String("product_id", id.String()), zap.Error(err))
		}
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// UpdateStock replaces the stock on hand
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, input UpdateStockInput) (*ProductResponse, error) {
	if input.Stock == nil {
		return nil, shared.NewValidationError("Stock is required")
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.SetStock(*input.Stock); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)
	resp := ToAdminProductResponse(p)
	return &resp, nil
}

// AddImages uploads images and appends their URLs to the product. Nothing
// is kept when any file is rejected.
func (s *ProductService) AddImages(ctx context.Context, id uuid.UUID, files []UploadFile) (*ProductResponse, error) {
	if len(files) == 0 {
		return nil, shared.NewValidationError("At least one image is required")
	}
	if len(files) > s.limits.MaxImagesPerReq {
		return nil, shared.NewValidationError("At most %d images can be uploaded at once", s.limits.MaxImagesPerReq)
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(p.Images)+len(files) > catalog.MaxProductImages {
		return nil, shared.NewValidationError("A product can have at most %d images", catalog.MaxProductImages)
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		ct, ext, body, err := checkUpload(f, s.limits.MaxImageSize, imageTypes, "Image")
		if err != nil {
			s.discard(ctx, urls)
			return nil, err
		}
		url, err := s.storage.Put(ctx, mediaKey(p.ID, "images", ext), body, f.Size, ct)
		if err != nil {
			s.discard(ctx, urls)
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		urls = append(urls, url)
	}

	if err := p.AddImages(urls...); err != nil {
		s.discard(ctx, urls)
		return nil, err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		s.discard(ctx, urls)
		return nil, err
	}
	s.logger.Info("Product images added", zap.String("product_id", p.ID.String()), zap.Int("count", len(urls)))
	resp := ToAdminProductResponse(p)
	return &resp, nil
}

// RemoveImage detaches an image and deletes the stored object
func (s *ProductService) RemoveImage(ctx context.Context, id uuid.UUID, input RemoveImageInput) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.RemoveImage(input.URL); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.discard(ctx, []string{input.URL})
	resp := ToAdminProductResponse(p)
	return &resp, nil
}

// SetVideo uploads a video and replaces the product's current one
func (s *ProductService) SetVideo(ctx context.Context, id uuid.UUID, file UploadFile) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ct, ext, body, err := checkUpload(file, s.limits.MaxVideoSize, videoTypes, "Video")
	if err != nil {
		return nil, err
	}
	url, err := s.storage.Put(ctx, mediaKey(p.ID, "videos", ext), body, file.Size, ct)
	if err != nil {
		return nil, fmt.Errorf("failed to store video: %w", err)
	}

	old := p.SetVideo(url)
	if err := s.productRepo.Update(ctx, p); err != nil {
		s.discard(ctx, []string{url})
		return nil, err
	}
	if old != "" {
		s.discard(ctx, []string{old})
	}
	resp := ToAdminProductResponse(p)
	return &resp, nil
}

// RemoveVideo clears the product video
func (s *ProductService) RemoveVideo(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.VideoURL == "" {
		return nil, shared.NewNotFoundError("Video")
	}
	old := p.SetVideo("")
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.discard(ctx, []string{old})
	resp := ToAdminProductResponse(p)
	return &resp, nil
}

func (s *ProductService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("Category %s does not exist", id)
		}
		return err
	}
	return nil
}

// assignSlug sets an explicit slug, which must be free, or derives a free
// one from the product name
func (s *ProductService) assignSlug(ctx context.Context, p *catalog.Product, explicit string) error {
	if explicit != "" {
		if err := p.SetSlug(explicit); err != nil {
			return err
		}
		exists, err := s.productRepo.ExistsBySlug(ctx, p.Slug, &p.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("Product with slug %s already exists", p.Slug)
		}
		return nil
	}
	slug, err := uniqueSlug(p.Slug, func(candidate string) (bool, error) {
		return s.productRepo.ExistsBySlug(ctx, candidate, &p.ID)
	})
	if err != nil {
		return err
	}
	p.Slug = slug
	return nil
}

// discard deletes stored media, logging failures
func (s *ProductService) discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.storage.Delete(ctx, url); err != nil {
			s.logger.Warn("Failed to delete media", zap.String("url", url), zap.Error(err))
		}
	}
}

func (s *ProductService) publish(ctx context.Context, p *catalog.Product) {
	if err := shared.PublishPending(ctx, s.publisher, p); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}

// uniqueSlug appends -2, -3, ... to base until taken reports false
func uniqueSlug(base string, taken func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; i < 100; i++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
