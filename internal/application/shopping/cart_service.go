package shopping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// CartService manages customer carts
type CartService struct {
	cartRepo    shopping.CartRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartRepo shopping.CartRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, logger: logger}
}

// Get returns the customer's cart. A customer without a cart gets an
// empty one.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// AddItem adds quantity units of a product, merging with an existing line
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, input AddCartItemInput) (*CartResponse, error) {
	product, err := s.sellable(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := cart.AddItem(product.ID, input.Quantity, product.Price, product.Stock); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	s.logger.Debug("Cart item added",
		zap.String("user_id", userID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", input.Quantity))
	return s.respond(ctx, cart)
}

// UpdateItem sets the quantity of a line and refreshes its price
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, input UpdateCartItemInput) (*CartResponse, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.Item(productID); !ok {
		return nil, shared.NewNotFoundError("Cart item")
	}
	product, err := s.sellable(ctx, productID)
	if err != nil {
		return nil, err
	}
	if _, err := cart.UpdateQuantity(productID, input.Quantity, product.Price, product.Stock); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// RemoveItem removes a line
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveItem(productID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if cart.IsEmpty() {
		return nil
	}
	cart.Clear()
	return s.cartRepo.Save(ctx, cart)
}

func (s *CartService) load(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return shopping.NewCart(userID), nil
	}
	return cart, err
}

// sellable loads an active product; hidden products look missing
func (s *CartService) sellable(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != catalog.ProductStatusActive {
		return nil, shared.NewNotFoundError("Product")
	}
	return product, nil
}

// respond joins cart lines with current product data. Lines whose product
// is gone are left out.
func (s *CartService) respond(ctx context.Context, cart *shopping.Cart) (*CartResponse, error) {
	resp := &CartResponse{
		ID:        cart.ID,
		Items:     make([]CartItemResponse, 0, len(cart.Items)),
		Subtotal:  cart.Subtotal(),
		ItemCount: cart.ItemCount(),
		UpdatedAt: cart.UpdatedAt,
	}
	if cart.IsEmpty() {
		return resp, nil
	}
	products, err := s.productRepo.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, item := range cart.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID:    item.ProductID,
			SKU:          p.SKU,
			Name:         p.Name,
			Slug:         p.Slug,
			Image:        p.PrimaryImage(),
			UnitPrice:    item.UnitPrice,
			CurrentPrice: p.Price,
			Quantity:     item.Quantity,
			LineTotal:    item.LineTotal(),
			Stock:        p.Stock,
			Available:    p.Status == catalog.ProductStatusActive && p.Stock >= item.Quantity,
		})
	}
	return resp, nil
}
