package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// MaxCategoryDepth is the maximum depth of category hierarchy
const MaxCategoryDepth = 5

// Category groups products. Categories form a tree through ParentID and
// keep a materialized Path of ancestor IDs for subtree queries.
type Category struct {
	shared.BaseAggregateRoot
	Name        string         `gorm:"type:varchar(100);not null"`
	Slug        string         `gorm:"type:varchar(120);not null;uniqueIndex:idx_categories_slug"`
	Description string         `gorm:"type:text"`
	ImageURL    string         `gorm:"type:varchar(500)"`
	ParentID    *uuid.UUID     `gorm:"type:uuid;index"`
	Path        string         `gorm:"type:varchar(500);not null;index"`
	Level       int            `gorm:"not null;default:0"`
	SortOrder   int            `gorm:"not null;default:0"`
	IsActive    bool           `gorm:"not null;default:true"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new root category
func NewCategory(name, slug string) (*Category, error) {
	c, err := newCategory(name, slug)
	if err != nil {
		return nil, err
	}
	c.Path = c.ID.String()
	c.AddDomainEvent(NewCategoryCreatedEvent(c))
	return c, nil
}

// NewChildCategory creates a new child category under a parent
func NewChildCategory(name, slug string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewValidationError("Parent category is required")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return nil, shared.NewValidationError("Category depth cannot exceed %d levels", MaxCategoryDepth)
	}
	c, err := newCategory(name, slug)
	if err != nil {
		return nil, err
	}
	c.ParentID = &parent.ID
	c.Level = parent.Level + 1
	c.Path = parent.Path + "/" + c.ID.String()
	c.AddDomainEvent(NewCategoryCreatedEvent(c))
	return c, nil
}

func newCategory(name, slug string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = name
	}
	slug = shared.Slugify(slug)
	if slug == "" {
		return nil, shared.NewValidationError("Category slug cannot be empty")
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		IsActive:          true,
	}, nil
}

// Update updates the category's descriptive fields
func (c *Category) Update(name, description, imageURL string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = name
	c.Description = description
	c.ImageURL = imageURL
	c.IncrementVersion()
	return nil
}

// SetSlug changes the slug
func (c *Category) SetSlug(slug string) error {
	slug = shared.Slugify(slug)
	if slug == "" {
		return shared.NewValidationError("Category slug cannot be empty")
	}
	c.Slug = slug
	c.IncrementVersion()
	return nil
}

// SetSortOrder sets the display order of the category
func (c *Category) SetSortOrder(order int) {
	c.SortOrder = order
	c.IncrementVersion()
}

// SetActive shows or hides the category on the storefront
func (c *Category) SetActive(active bool) {
	c.IsActive = active
	c.IncrementVersion()
}

// MoveTo re-parents the category. A nil parent makes it a root. It returns
// the old path so callers can rewrite descendant paths, and the level delta.
// subtreeHeight is the number of levels below this category.
func (c *Category) MoveTo(parent *Category, subtreeHeight int) (oldPath string, levelDelta int, err error) {
	oldPath = c.Path
	oldLevel := c.Level
	if parent == nil {
		c.ParentID = nil
		c.Level = 0
		c.Path = c.ID.String()
	} else {
		if parent.ID == c.ID || c.IsAncestorOf(parent) {
			return "", 0, shared.NewValidationError("A category cannot be moved under itself or its descendants")
		}
		if parent.Level+1+subtreeHeight >= MaxCategoryDepth {
			return "", 0, shared.NewValidationError("Category depth cannot exceed %d levels", MaxCategoryDepth)
		}
		c.ParentID = &parent.ID
		c.Level = parent.Level + 1
		c.Path = parent.Path + "/" + c.ID.String()
	}
	c.IncrementVersion()
	return oldPath, c.Level - oldLevel, nil
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// GetAncestorIDs returns the IDs of all ancestor categories, root first
func (c *Category) GetAncestorIDs() []uuid.UUID {
	if c.Path == "" {
		return nil
	}
	parts := strings.Split(c.Path, "/")
	if len(parts) <= 1 {
		return nil
	}
	ancestors := make([]uuid.UUID, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		if id, err := uuid.Parse(part); err == nil {
			ancestors = append(ancestors, id)
		}
	}
	return ancestors
}

// IsAncestorOf returns true if this category is an ancestor of other
func (c *Category) IsAncestorOf(other *Category) bool {
	if other == nil || other.Path == "" {
		return false
	}
	return strings.HasPrefix(other.Path, c.Path+"/")
}

// IsDescendantOf returns true if this category is a descendant of other
func (c *Category) IsDescendantOf(other *Category) bool {
	if other == nil {
		return false
	}
	return other.IsAncestorOf(c)
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewValidationError("Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewValidationError("Category name cannot exceed %d characters", 100)
	}
	return nil
}
