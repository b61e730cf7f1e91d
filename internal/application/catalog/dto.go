package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductListQuery contains storefront and admin product filters
type ProductListQuery struct {
	Search     string   `form:"search"`
	CategoryID string   `form:"category_id" binding:"omitempty,uuid"`
	MinPrice   *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice   *float64 `form:"max_price" binding:"omitempty,min=0"`
	Featured   *bool    `form:"featured"`
	InStock    *bool    `form:"in_stock"`
	Sort       string   `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc rating name"`
	Page       int      `form:"page" binding:"omitempty,min=1"`
	PageSize   int      `form:"page_size" binding:"omitempty,min=1,max=100"`

	// Admin only
	Status   string `form:"status" binding:"omitempty,oneof=draft active archived"`
	LowStock bool   `form:"low_stock"`
}

// CreateProductInput contains the fields of a new product
type CreateProductInput struct {
	SKU               string           `json:"sku" binding:"required,max=64"`
	Name              string           `json:"name" binding:"required,max=200"`
	Slug              string           `json:"slug" binding:"omitempty,max=220"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compare_at_price"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	Stock             int              `json:"stock" binding:"min=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" binding:"omitempty,min=0"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	Status            string           `json:"status" binding:"omitempty,oneof=draft active archived"`
	IsFeatured        bool             `json:"is_featured"`
	Weight            *decimal.Decimal `json:"weight"`
}

// UpdateProductInput is a partial product update. Nil fields are unchanged.
type UpdateProductInput struct {
	SKU               *string          `json:"sku" binding:"omitempty,max=64"`
	Name              *string          `json:"name" binding:"omitempty,max=200"`
	Slug              *string          `json:"slug" binding:"omitempty,max=220"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compare_at_price"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	Stock             *int             `json:"stock" binding:"omitempty,min=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" binding:"omitempty,min=0"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	ClearCategory     bool             `json:"clear_category"`
	Status            *string          `json:"status" binding:"omitempty,oneof=draft active archived"`
	IsFeatured        *bool            `json:"is_featured"`
	Weight            *decimal.Decimal `json:"weight"`
}

// UpdateStockInput replaces the stock on hand
type UpdateStockInput struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

// RemoveImageInput names the image to remove
type RemoveImageInput struct {
	URL string `json:"url" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID        `json:"id"`
	SKU               string           `json:"sku"`
	Name              string           `json:"name"`
	Slug              string           `json:"slug"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compare_at_price,omitempty"`
	Stock             int              `json:"stock"`
	InStock           bool             `json:"in_stock"`
	CategoryID        *uuid.UUID       `json:"category_id,omitempty"`
	Images            []string         `json:"images"`
	VideoURL          string           `json:"video_url,omitempty"`
	Status            string           `json:"status"`
	IsFeatured        bool             `json:"is_featured"`
	RatingAvg         decimal.Decimal  `json:"rating_avg"`
	RatingCount       int              `json:"rating_count"`
	Weight            decimal.Decimal  `json:"weight"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
}

// ToProductResponse converts a domain Product for storefront visitors
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Stock:          p.Stock,
		InStock:        p.Stock > 0,
		CategoryID:     p.CategoryID,
		Images:         images,
		VideoURL:       p.VideoURL,
		Status:         string(p.Status),
		IsFeatured:     p.IsFeatured,
		RatingAvg:      p.RatingAvg,
		RatingCount:    p.RatingCount,
		Weight:         p.Weight,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToAdminProductResponse includes the back-office only fields
func ToAdminProductResponse(p *catalog.Product) ProductResponse {
	resp := ToProductResponse(p)
	cost := p.CostPrice
	threshold := p.LowStockThreshold
	resp.CostPrice = &cost
	resp.LowStockThreshold = &threshold
	return resp
}

func toProductResponses(products []*catalog.Product, convert func(*catalog.Product) ProductResponse) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = convert(p)
	}
	return out
}

// CategoryQuery contains category list options
type CategoryQuery struct {
	Search   string `form:"search"`
	Tree     bool   `form:"tree"`
	ParentID string `form:"parent_id" binding:"omitempty,uuid"`
}

// CreateCategoryInput contains the fields of a new category
type CreateCategoryInput struct {
	Name        string     `json:"name" binding:"required,max=100"`
	Slug        string     `json:"slug" binding:"omitempty,max=120"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url" binding:"omitempty,url,max=500"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	IsActive    *bool      `json:"is_active"`
}

// UpdateCategoryInput is a partial category update. Setting ParentID moves
// the category under that parent; MakeRoot moves it to the top level.
type UpdateCategoryInput struct {
	Name        *string    `json:"name" binding:"omitempty,max=100"`
	Slug        *string    `json:"slug" binding:"omitempty,max=120"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url" binding:"omitempty,max=500"`
	ParentID    *uuid.UUID `json:"parent_id"`
	MakeRoot    bool       `json:"make_root"`
	SortOrder   *int       `json:"sort_order"`
	IsActive    *bool      `json:"is_active"`
}

// CategoryResponse represents a category, optionally with its children
type CategoryResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	ImageURL    string              `json:"image_url"`
	ParentID    *uuid.UUID          `json:"parent_id,omitempty"`
	Level       int                 `json:"level"`
	SortOrder   int                 `json:"sort_order"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Children    []*CategoryResponse `json:"children,omitempty"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		ParentID:    c.ParentID,
		Level:       c.Level,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ReviewInput contains the fields of a review
type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=150"`
	Comment string `json:"comment" binding:"required,max=5000"`
}

// ModerateReviewInput sets the moderation status
type ModerateReviewInput struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

// ReviewListQuery contains review list filters
type ReviewListQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	UserID           uuid.UUID `json:"user_id"`
	Rating           int       `json:"rating"`
	Title            string    `json:"title"`
	Comment          string    `json:"comment"`
	Status           string    `json:"status"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToReviewResponse converts a domain Review to ReviewResponse
func ToReviewResponse(r *catalog.Review) ReviewResponse {
	return ReviewResponse{
		ID:               r.ID,
		ProductID:        r.ProductID,
		UserID:           r.UserID,
		Rating:           r.Rating,
		Title:            r.Title,
		Comment:          r.Comment,
		Status:           string(r.Status),
		VerifiedPurchase: r.VerifiedPurchase,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// RatingSummaryResponse is the rating block shown above product reviews
type RatingSummaryResponse struct {
	Average      decimal.Decimal `json:"average"`
	Count        int             `json:"count"`
	Distribution map[int]int     `json:"distribution"`
}

// ImportInput describes an uploaded product spreadsheet
type ImportInput struct {
	File    UploadFile
	Mode    string
	AdminID uuid.UUID
}

// ImportHistoryQuery pages through past imports
type ImportHistoryQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func pageDefaults(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
