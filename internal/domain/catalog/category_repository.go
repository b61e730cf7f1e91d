package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryFilter contains filter options for querying categories
type CategoryFilter struct {
	Search     string
	ActiveOnly bool
	ParentID   *uuid.UUID
	RootOnly   bool
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	// Delete soft-deletes a category
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	// FindAll returns categories ordered by level, sort order and name
	FindAll(ctx context.Context, filter CategoryFilter) ([]*Category, error)
	// FindDescendants returns every category below the given one
	FindDescendants(ctx context.Context, category *Category) ([]*Category, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	// RewriteSubtreePaths replaces the oldPrefix of every descendant path with
	// newPrefix and shifts their level by levelDelta
	RewriteSubtreePaths(ctx context.Context, oldPrefix, newPrefix string, levelDelta int) error
}
