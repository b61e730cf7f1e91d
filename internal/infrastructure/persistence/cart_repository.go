package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shopping"
	"gorm.io/gorm"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser loads the user's cart and its items oldest first
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	var cart shopping.Cart
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, translate(err, "Cart")
	}
	return &cart, nil
}

// Save upserts the cart row and replaces its items
func (r *GormCartRepository) Save(ctx context.Context, cart *shopping.Cart) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(cart).Error; err != nil {
			return translate(err, "Cart")
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&shopping.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
		}
		return tx.Create(&cart.Items).Error
	})
}

// RemoveProduct deletes lines for a product from every cart
func (r *GormCartRepository) RemoveProduct(ctx context.Context, productID uuid.UUID) error {
	return conn(ctx, r.db).Where("product_id = ?", productID).Delete(&shopping.CartItem{}).Error
}

// GormWishlistRepository implements WishlistRepository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GormWishlistRepository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// Create inserts a wishlist item
func (r *GormWishlistRepository) Create(ctx context.Context, item *shopping.WishlistItem) error {
	return translate(conn(ctx, r.db).Create(item).Error, "Wishlist item")
}

// Delete removes one product from the user's wishlist
func (r *GormWishlistRepository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	result := conn(ctx, r.db).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&shopping.WishlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Wishlist item")
	}
	return nil
}

// DeleteAll empties the user's wishlist
func (r *GormWishlistRepository) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	return conn(ctx, r.db).Where("user_id = ?", userID).Delete(&shopping.WishlistItem{}).Error
}

// FindByUser returns the wishlist newest first
func (r *GormWishlistRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*shopping.WishlistItem, error) {
	var items []*shopping.WishlistItem
	if err := conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Exists reports whether the product is on the user's wishlist
func (r *GormWishlistRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&shopping.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

var (
	_ shopping.CartRepository     = (*GormCartRepository)(nil)
	_ shopping.WishlistRepository = (*GormWishlistRepository)(nil)
)
