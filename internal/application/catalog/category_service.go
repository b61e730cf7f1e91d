package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	txManager    shared.TransactionManager
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	txManager shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CategoryService {
	if publisher == nil {
		publisher = shared.NoopEventPublisher
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		txManager:    txManager,
		publisher:    publisher,
		logger:       logger,
	}
}

// List returns categories as a flat list or, with q.Tree, as nested roots.
// activeOnly hides inactive categories and everything below them.
func (s *CategoryService) List(ctx context.Context, q CategoryQuery, activeOnly bool) ([]*CategoryResponse, error) {
	filter := catalog.CategoryFilter{Search: q.Search, ActiveOnly: activeOnly}
	if q.ParentID != "" {
		id, err := uuid.Parse(q.ParentID)
		if err != nil {
			return nil, shared.NewValidationError("Invalid parent_id")
		}
		filter.ParentID = &id
	}
	categories, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if q.Tree {
		return BuildTree(categories, activeOnly), nil
	}
	out := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = ToCategoryResponse(c)
	}
	return out, nil
}

// BuildTree nests categories under their parents. Input must be ordered by
// level. With dropOrphans, categories whose parent is absent are skipped
// instead of being promoted to roots.
func BuildTree(categories []*catalog.Category, dropOrphans bool) []*CategoryResponse {
	nodes := make(map[uuid.UUID]*CategoryResponse, len(categories))
	roots := make([]*CategoryResponse, 0)
	for _, c := range categories {
		node := ToCategoryResponse(c)
		nodes[c.ID] = node
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		switch {
		case ok:
			parent.Children = append(parent.Children, node)
		case !dropOrphans:
			roots = append(roots, node)
		default:
			delete(nodes, c.ID)
		}
	}
	return roots
}

// Get returns a category by ID
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*CategoryResponse, error) {
	c, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activeOnly && !c.IsActive {
		return nil, shared.NewNotFoundError("Category")
	}
	return ToCategoryResponse(c), nil
}

// GetBySlug returns an active category by slug
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*CategoryResponse, error) {
	c, err := s.categoryRepo.FindBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, shared.NewNotFoundError("Category")
	}
	return ToCategoryResponse(c), nil
}

// Create creates a root or child category
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*CategoryResponse, error) {
	var (
		category *catalog.Category
		err      error
	)
	if input.ParentID != nil {
		parent, ferr := s.categoryRepo.FindByID(ctx, *input.ParentID)
		if ferr != nil {
			if errors.Is(ferr, shared.ErrNotFound) {
				return nil, shared.NewValidationError("Parent category does not exist")
			}
			return nil, ferr
		}
		category, err = catalog.NewChildCategory(input.Name, input.Slug, parent)
	} else {
		category, err = catalog.NewCategory(input.Name, input.Slug)
	}
	if err != nil {
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, category.Slug, nil); err != nil {
		return nil, err
	}
	if input.Description != "" || input.ImageURL != "" {
		if err := category.Update(category.Name, input.Description, input.ImageURL); err != nil {
			return nil, err
		}
	}
	category.SetSortOrder(input.SortOrder)
	if input.IsActive != nil {
		category.SetActive(*input.IsActive)
	}
	category.Version = 1

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.publisher, category); err != nil {
		s.logger.Warn("Failed to publish category events", zap.Error(err))
	}
	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("slug", category.Slug))
	return ToCategoryResponse(category), nil
}

// Update applies a partial update. Moving a category rewrites the path and
// level of its whole subtree in one transaction.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryResponse, error) {
	var result *catalog.Category
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		category, err := s.categoryRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		name, description, imageURL := category.Name, category.Description, category.ImageURL
		if input.Name != nil {
			name = *input.Name
		}
		if input.Description != nil {
			description = *input.Description
		}
		if input.ImageURL != nil {
			imageURL = *input.ImageURL
		}
		if err := category.Update(name, description, imageURL); err != nil {
			return err
		}
		if input.Slug != nil {
			if err := category.SetSlug(*input.Slug); err != nil {
				return err
			}
			if err := s.ensureSlugFree(ctx, category.Slug, &category.ID); err != nil {
				return err
			}
		}
		if input.SortOrder != nil {
			category.SetSortOrder(*input.SortOrder)
		}
		if input.IsActive != nil {
			category.SetActive(*input.IsActive)
		}

		if input.MakeRoot || (input.ParentID != nil && !sameParent(category.ParentID, *input.ParentID)) {
			if err := s.move(ctx, category, input); err != nil {
				return err
			}
		}

		if err := s.categoryRepo.Update(ctx, category); err != nil {
			return err
		}
		result = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToCategoryResponse(result), nil
}

func sameParent(current *uuid.UUID, next uuid.UUID) bool {
	return current != nil && *current == next
}

func (s *CategoryService) move(ctx context.Context, category *catalog.Category, input UpdateCategoryInput) error {
	var parent *catalog.Category
	if !input.MakeRoot {
		p, err := s.categoryRepo.FindByID(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewValidationError("Parent category does not exist")
			}
			return err
		}
		parent = p
	} else if category.IsRoot() {
		return nil
	}

	descendants, err := s.categoryRepo.FindDescendants(ctx, category)
	if err != nil {
		return err
	}
	height := 0
	for _, d := range descendants {
		height = max(height, d.Level-category.Level)
	}

	oldPath, delta, err := category.MoveTo(parent, height)
	if err != nil {
		return err
	}
	if len(descendants) > 0 {
		if err := s.categoryRepo.RewriteSubtreePaths(ctx, oldPath, category.Path, delta); err != nil {
			return err
		}
	}
	s.logger.Info("Category moved",
		zap.String("category_id", category.ID.String()),
		zap.String("old_path", oldPath),
		zap.String("new_path", category.Path),
		zap.Int("descendants", len(descendants)))
	return nil
}

// Delete soft-deletes a category without children or products
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}
	hasChildren, err := s.categoryRepo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError(shared.CodeConflict, "Category has child categories")
	}
	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError(shared.CodeConflict, "Category has products assigned")
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

func (s *CategoryService) ensureSlugFree(ctx context.Context, slug string, excludeID *uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewConflictError("Category with slug %s already exists", slug)
	}
	return nil
}
