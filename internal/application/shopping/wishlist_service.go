package shopping

import (
	"context"

	"github.com/google/uuid"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// WishlistService manages saved products
type WishlistService struct {
	wishlistRepo shopping.WishlistRepository
	productRepo  catalog.ProductRepository
	carts        *CartService
	logger       *zap.Logger
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(
	wishlistRepo shopping.WishlistRepository,
	productRepo catalog.ProductRepository,
	carts *CartService,
	logger *zap.Logger,
) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		carts:        carts,
		logger:       logger,
	}
}

// List returns the wishlist, newest first, with product details
func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]WishlistItemResponse, error) {
	items, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]WishlistItemResponse, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, item := range items {
		entry := WishlistItemResponse{ProductID: item.ProductID, AddedAt: item.CreatedAt}
		if p, ok := byID[item.ProductID]; ok {
			resp := catalogapp.ToProductResponse(p)
			entry.Product = &resp
		}
		out = append(out, entry)
	}
	return out, nil
}

// Add saves a product. Saving it twice conflicts.
func (s *WishlistService) Add(ctx context.Context, userID uuid.UUID, input AddWishlistInput) (*WishlistItemResponse, error) {
	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != catalog.ProductStatusActive {
		return nil, shared.NewNotFoundError("Product")
	}
	exists, err := s.wishlistRepo.Exists(ctx, userID, product.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("Product is already in your wishlist")
	}
	item := shopping.NewWishlistItem(userID, product.ID)
	if err := s.wishlistRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	resp := catalogapp.ToProductResponse(product)
	return &WishlistItemResponse{ProductID: product.ID, AddedAt: item.CreatedAt, Product: &resp}, nil
}

// Remove deletes one saved product
func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.wishlistRepo.Delete(ctx, userID, productID)
}

// Clear empties the wishlist
func (s *WishlistService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.wishlistRepo.DeleteAll(ctx, userID)
}

// MoveToCart adds a saved product to the cart and drops it from the
// wishlist. The wishlist entry stays when the cart rejects the product.
func (s *WishlistService) MoveToCart(ctx context.Context, userID, productID uuid.UUID, input MoveToCartInput) (*CartResponse, error) {
	exists, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewNotFoundError("Wishlist item")
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	cart, err := s.carts.AddItem(ctx, userID, AddCartItemInput{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	if err := s.wishlistRepo.Delete(ctx, userID, productID); err != nil {
		s.logger.Warn("Failed to remove moved wishlist item",
			zap.String("user_id", userID.String()),
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
	return cart, nil
}
