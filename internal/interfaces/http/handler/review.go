package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
)

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	BaseHandler
	reviewService *catalogapp.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *catalogapp.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ProductReviewsResponse is a page of approved reviews with the product's
// rating summary
type ProductReviewsResponse struct {
	Summary *catalogapp.RatingSummaryResponse `json:"summary"`
	Reviews []catalogapp.ReviewResponse       `json:"reviews"`
}

type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ListForProduct godoc
// @ID           listProductReviews
// @Summary      Approved reviews of a product
// @Tags         reviews
// @Produce      json
// @Param        id        path  string true  "Product ID" format(uuid)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[ProductReviewsResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id}/reviews [get]
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var q pageQuery
	if !h.BindQuery(c, &q) {
		return
	}

	summary, page, err := h.reviewService.ListForProduct(c.Request.Context(), productID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, ProductReviewsResponse{Summary: summary, Reviews: page.Items}, page.Total, page.Page, page.PageSize)
}

// Create godoc
// @ID           createProductReview
// @Summary      Review a product
// @Description  One review per customer and product. New reviews wait for moderation.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Product ID" format(uuid)
// @Param        request body catalogapp.ReviewInput true "Review"
// @Success      201 {object} APIResponse[catalogapp.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ReviewInput
	if !h.BindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), userID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, review)
}

// Update godoc
// @ID           updateReview
// @Summary      Edit your review
// @Description  Editing sends the review back to moderation
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Review ID" format(uuid)
// @Param        request body catalogapp.ReviewInput true "Review"
// @Success      200 {object} APIResponse[catalogapp.ReviewResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id} [put]
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	reviewID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ReviewInput
	if !h.BindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), userID, reviewID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, review)
}

// Delete godoc
// @ID           deleteReview
// @Summary      Delete your review
// @Tags         reviews
// @Param        id path string true "Review ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	reviewID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, reviewID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AdminList godoc
// @ID           adminListReviews
// @Summary      List reviews for moderation
// @Tags         admin-reviews
// @Produce      json
// @Param        status     query string false "Moderation status" Enums(pending, approved, rejected)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]catalogapp.ReviewResponse]
// @Security     BearerAuth
// @Router       /admin/reviews [get]
func (h *ReviewHandler) AdminList(c *gin.Context) {
	var q catalogapp.ReviewListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.reviewService.AdminList(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(&h.BaseHandler, c, page)
}

// Moderate godoc
// @ID           adminModerateReview
// @Summary      Approve or reject a review
// @Tags         admin-reviews
// @Accept       json
// @Produce      json
// @Param        id      path string                         true "Review ID" format(uuid)
// @Param        request body catalogapp.ModerateReviewInput true "Status"
// @Success      200 {object} APIResponse[catalogapp.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/status [patch]
func (h *ReviewHandler) Moderate(c *gin.Context) {
	reviewID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ModerateReviewInput
	if !h.BindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Moderate(c.Request.Context(), reviewID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, review)
}

// AdminDelete godoc
// @ID           adminDeleteReview
// @Summary      Delete any review
// @Tags         admin-reviews
// @Param        id path string true "Review ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reviews/{id} [delete]
func (h *ReviewHandler) AdminDelete(c *gin.Context) {
	reviewID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.AdminDelete(c.Request.Context(), reviewID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
