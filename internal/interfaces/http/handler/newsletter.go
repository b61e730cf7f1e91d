package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	marketingapp "github.com/shopfront/backend/internal/application/marketing"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// NewsletterHandler handles newsletter subscriptions
type NewsletterHandler struct {
	BaseHandler
	newsletterService *marketingapp.NewsletterService
}

// NewNewsletterHandler creates a new NewsletterHandler
func NewNewsletterHandler(newsletterService *marketingapp.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletterService: newsletterService}
}

// Subscribe godoc
// @ID           subscribeNewsletter
// @Summary      Subscribe to the newsletter
// @Description  Returns 201 for a new address and 200 when a previously unsubscribed address is reactivated
// @Tags         newsletter
// @Accept       json
// @Produce      json
// @Param        request body marketingapp.SubscribeInput true "Email address"
// @Success      200 {object} APIResponse[marketingapp.SubscriberResponse]
// @Success      201 {object} APIResponse[marketingapp.SubscriberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Already subscribed"
// @Router       /newsletter/subscribe [post]
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req marketingapp.SubscribeInput
	if !h.BindJSON(c, &req) {
		return
	}

	sub, created, err := h.newsletterService.Subscribe(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if created {
		h.Created(c, sub)
		return
	}
	h.Success(c, sub)
}

// Unsubscribe godoc
// @ID           unsubscribeNewsletter
// @Summary      Unsubscribe from the newsletter
// @Description  Identify the subscription by email or by the token from a newsletter link
// @Tags         newsletter
// @Accept       json
// @Produce      json
// @Param        request body marketingapp.UnsubscribeInput true "Email or token"
// @Success      200 {object} APIResponse[marketingapp.SubscriberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /newsletter/unsubscribe [post]
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req marketingapp.UnsubscribeInput
	if !h.BindJSON(c, &req) {
		return
	}

	sub, err := h.newsletterService.Unsubscribe(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sub)
}

// List godoc
// @ID           adminListSubscribers
// @Summary      List newsletter subscribers
// @Tags         admin-newsletter
// @Produce      json
// @Param        status    query string false "Status" Enums(subscribed, unsubscribed)
// @Param        search    query string false "Email contains"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]marketingapp.SubscriberResponse]
// @Security     BearerAuth
// @Router       /admin/newsletter [get]
func (h *NewsletterHandler) List(c *gin.Context) {
	var q marketingapp.SubscriberListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.newsletterService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(&h.BaseHandler, c, page)
}

// Delete godoc
// @ID           adminDeleteSubscriber
// @Summary      Delete a subscriber
// @Tags         admin-newsletter
// @Param        id path string true "Subscriber ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/newsletter/{id} [delete]
func (h *NewsletterHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.newsletterService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Export godoc
// @ID           adminExportSubscribers
// @Summary      Download subscribers as CSV
// @Description  Accepts the same filters as the list endpoint
// @Tags         admin-newsletter
// @Produce      text/csv
// @Param        status query string false "Status" Enums(subscribed, unsubscribed)
// @Param        search query string false "Email contains"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /admin/newsletter/export [get]
func (h *NewsletterHandler) Export(c *gin.Context) {
	var q marketingapp.SubscriberListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filename := fmt.Sprintf("subscribers_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	// rows are streamed, so a failure can only truncate the download
	n, err := h.newsletterService.ExportCSV(c.Request.Context(), c.Writer, q)
	if err != nil {
		logger.GetGinLogger(c).Error("Subscriber export failed", zap.Int("rows", n), zap.Error(err))
		c.Abort()
		return
	}
	logger.GetGinLogger(c).Info("Subscribers exported", zap.Int("rows", n))
}
