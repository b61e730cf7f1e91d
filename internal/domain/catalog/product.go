package catalog

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus represents the publication status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// IsValid reports whether s is a known status
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusArchived:
		return true
	}
	return false
}

// Product limits
const (
	MaxProductImages         = 10
	DefaultLowStockThreshold = 5
)

// Product is a sellable catalog item identified by its SKU
type Product struct {
	shared.BaseAggregateRoot
	SKU               string           `gorm:"column:sku;type:varchar(64);not null;uniqueIndex:idx_products_sku"`
	Name              string           `gorm:"type:varchar(200);not null"`
	Slug              string           `gorm:"type:varchar(220);not null;uniqueIndex:idx_products_slug"`
	Description       string           `gorm:"type:text"`
	Price             decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	CompareAtPrice    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CostPrice         decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Stock             int              `gorm:"not null;default:0"`
	LowStockThreshold int              `gorm:"not null;default:5"`
	CategoryID        *uuid.UUID       `gorm:"type:uuid;index"`
	Images            []string         `gorm:"type:jsonb;serializer:json"`
	VideoURL          string           `gorm:"type:varchar(500)"`
	Status            ProductStatus    `gorm:"type:varchar(20);not null;default:'draft';index"`
	IsFeatured        bool             `gorm:"not null;default:false;index"`
	RatingAvg         decimal.Decimal  `gorm:"type:decimal(3,2);not null;default:0"`
	RatingCount       int              `gorm:"not null;default:0"`
	Weight            decimal.Decimal  `gorm:"type:decimal(10,3);not null;default:0"`
	DeletedAt         gorm.DeletedAt   `gorm:"index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NormalizeSKU trims and upper-cases a SKU
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// NewProduct creates a draft product. The slug defaults to the slugified name.
func NewProduct(sku, name string, price decimal.Decimal) (*Product, error) {
	sku = NormalizeSKU(sku)
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("Price cannot be negative")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Slug:              shared.Slugify(name),
		Price:             price.Round(2),
		LowStockThreshold: DefaultLowStockThreshold,
		Images:            []string{},
		Status:            ProductStatusDraft,
	}
	if p.Slug == "" {
		p.Slug = strings.ToLower(sku)
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Rename changes the display name without touching the slug
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.IncrementVersion()
	return nil
}

// SetSKU changes the SKU
func (p *Product) SetSKU(sku string) error {
	sku = NormalizeSKU(sku)
	if err := validateSKU(sku); err != nil {
		return err
	}
	p.SKU = sku
	p.IncrementVersion()
	return nil
}

// SetSlug sets an explicit slug
func (p *Product) SetSlug(slug string) error {
	slug = shared.Slugify(slug)
	if slug == "" {
		return shared.NewValidationError("Slug cannot be empty")
	}
	p.Slug = slug
	p.IncrementVersion()
	return nil
}

// SetDescription sets the long description
func (p *Product) SetDescription(description string) {
	p.Description = description
	p.IncrementVersion()
}

// SetPricing updates price, compare-at price and cost
func (p *Product) SetPricing(price decimal.Decimal, compareAt *decimal.Decimal, cost decimal.Decimal) error {
	if price.IsNegative() || cost.IsNegative() {
		return shared.NewValidationError("Prices cannot be negative")
	}
	if compareAt != nil {
		if compareAt.IsNegative() {
			return shared.NewValidationError("Compare-at price cannot be negative")
		}
		c := compareAt.Round(2)
		compareAt = &c
	}
	p.Price = price.Round(2)
	p.CompareAtPrice = compareAt
	p.CostPrice = cost.Round(2)
	p.IncrementVersion()
	return nil
}

// SetStock replaces the on-hand quantity
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewValidationError("Stock cannot be negative")
	}
	old := p.Stock
	p.Stock = stock
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	return nil
}

// SetLowStockThreshold sets the alert threshold
func (p *Product) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewValidationError("Low stock threshold cannot be negative")
	}
	p.LowStockThreshold = threshold
	p.IncrementVersion()
	return nil
}

// DecreaseStock removes quantity for a sale
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("Quantity must be positive")
	}
	if p.Stock < quantity {
		return shared.NewDomainError(shared.CodeInsufficientStock, "Insufficient stock for "+p.Name)
	}
	old := p.Stock
	p.Stock -= quantity
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	return nil
}

// IncreaseStock returns quantity, e.g. when an order is cancelled
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("Quantity must be positive")
	}
	old := p.Stock
	p.Stock += quantity
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	return nil
}

// SetCategory assigns or clears the category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.IncrementVersion()
}

// SetStatus changes the publication status
func (p *Product) SetStatus(status ProductStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid product status: %s", status)
	}
	p.Status = status
	p.IncrementVersion()
	return nil
}

// SetFeatured toggles the featured flag
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.IncrementVersion()
}

// SetWeight sets the shipping weight in kilograms
func (p *Product) SetWeight(weight decimal.Decimal) error {
	if weight.IsNegative() {
		return shared.NewValidationError("Weight cannot be negative")
	}
	p.Weight = weight
	p.IncrementVersion()
	return nil
}

// AddImages appends image URLs up to MaxProductImages
func (p *Product) AddImages(urls ...string) error {
	if len(p.Images)+len(urls) > MaxProductImages {
		return shared.NewValidationError("A product can have at most %d images", MaxProductImages)
	}
	p.Images = append(p.Images, urls...)
	p.IncrementVersion()
	return nil
}

// RemoveImage removes one image URL
func (p *Product) RemoveImage(url string) error {
	idx := slices.Index(p.Images, url)
	if idx < 0 {
		return shared.NewNotFoundError("Image")
	}
	p.Images = slices.Delete(p.Images, idx, idx+1)
	p.IncrementVersion()
	return nil
}

// SetVideo sets the product video URL and returns the previous one
func (p *Product) SetVideo(url string) string {
	old := p.VideoURL
	p.VideoURL = url
	p.IncrementVersion()
	return old
}

// ApplyRating stores the aggregated review rating
func (p *Product) ApplyRating(avg decimal.Decimal, count int) {
	p.RatingAvg = avg.Round(2)
	p.RatingCount = count
}

// IsPurchasable reports whether the product can be added to a cart
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive && p.Stock > 0
}

// IsLowStock reports whether stock is at or below the alert threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// PrimaryImage returns the first image or ""
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewValidationError("SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewValidationError("SKU cannot exceed 64 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewValidationError("SKU can only contain letters, numbers, dots, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Product name cannot exceed 200 characters")
	}
	return nil
}
