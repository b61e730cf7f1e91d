package catalog

import "github.com/shopfront/backend/internal/domain/shared"

// AggregateTypeCategory is the aggregate type for categories
const AggregateTypeCategory = "Category"

// EventTypeCategoryCreated is published when a category is created
const EventTypeCategoryCreated = "category.created"

// CategoryCreatedEvent is published when a category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewCategoryCreatedEvent creates a new CategoryCreatedEvent
func NewCategoryCreatedEvent(c *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, AggregateTypeCategory, c.ID),
		Name:            c.Name,
		Slug:            c.Slug,
	}
}
