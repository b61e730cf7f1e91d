package handler

import (
	"github.com/gin-gonic/gin"
	shoppingapp "github.com/shopfront/backend/internal/application/shopping"
)

// WishlistHandler handles the customer's wishlist
type WishlistHandler struct {
	BaseHandler
	wishlistService *shoppingapp.WishlistService
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService *shoppingapp.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// List godoc
// @ID           listWishlist
// @Summary      Saved products
// @Tags         wishlist
// @Produce      json
// @Success      200 {object} APIResponse[[]shoppingapp.WishlistItemResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wishlist [get]
func (h *WishlistHandler) List(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	items, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Add godoc
// @ID           addWishlistItem
// @Summary      Save a product
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        request body shoppingapp.AddWishlistInput true "Product"
// @Success      201 {object} APIResponse[shoppingapp.WishlistItemResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Already saved"
// @Security     BearerAuth
// @Router       /wishlist [post]
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req shoppingapp.AddWishlistInput
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.wishlistService.Add(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// Remove godoc
// @ID           removeWishlistItem
// @Summary      Remove a saved product
// @Tags         wishlist
// @Param        productId path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wishlist/{productId} [delete]
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "productId")
	if !ok {
		return
	}

	if err := h.wishlistService.Remove(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Clear godoc
// @ID           clearWishlist
// @Summary      Remove every saved product
// @Tags         wishlist
// @Success      204
// @Security     BearerAuth
// @Router       /wishlist [delete]
func (h *WishlistHandler) Clear(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	if err := h.wishlistService.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// MoveToCart godoc
// @ID           moveWishlistItemToCart
// @Summary      Move a saved product into the cart
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        productId path string                      true  "Product ID" format(uuid)
// @Param        request   body shoppingapp.MoveToCartInput false "Quantity, 1 when omitted"
// @Success      200 {object} APIResponse[shoppingapp.CartResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Insufficient stock"
// @Security     BearerAuth
// @Router       /wishlist/{productId}/move-to-cart [post]
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "productId")
	if !ok {
		return
	}
	var req shoppingapp.MoveToCartInput
	if !h.BindOptionalJSON(c, &req) {
		return
	}

	cart, err := h.wishlistService.MoveToCart(c.Request.Context(), userID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}
