package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/shared"
)

// maxWebhookPayloadSize bounds Stripe event bodies, which are typically a
// few kilobytes
const maxWebhookPayloadSize = 64 << 10

// WebhookHandler receives payment provider callbacks. These endpoints are
// authenticated by signature, not by token.
type WebhookHandler struct {
	BaseHandler
	webhookService *tradeapp.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *tradeapp.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// WebhookAck acknowledges a delivery
type WebhookAck struct {
	Received bool `json:"received" example:"true"`
}

// Stripe godoc
// @ID           handleStripeWebhook
// @Summary      Stripe webhook
// @Description  Applies payment_intent.succeeded and payment_intent.payment_failed to the matching order.
// @Description  Redelivered events are acknowledged without changes.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe webhook signature"
// @Success      200 {object} APIResponse[WebhookAck]
// @Failure      400 {object} ErrorResponse "Invalid signature or payload"
// @Failure      413 {object} ErrorResponse
// @Router       /webhooks/stripe [post]
func (h *WebhookHandler) Stripe(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.Error(c, shared.CodeInvalidInput, "Missing Stripe-Signature header")
		return
	}

	// the raw body is needed for signature verification
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookPayloadSize))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.webhookService.HandleStripe(c.Request.Context(), payload, signature); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, WebhookAck{Received: true})
}
