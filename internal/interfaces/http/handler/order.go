package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
)

// OrderHandler handles checkout and order endpoints
type OrderHandler struct {
	BaseHandler
	checkoutService *tradeapp.CheckoutService
	orderService    *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkoutService *tradeapp.CheckoutService, orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// Checkout godoc
// @ID           checkout
// @Summary      Place an order from the cart
// @Description  Prices, shipping and tax are computed on the server. Card orders return a client_secret
// @Description  for confirming the payment; the order becomes paid once the payment webhook arrives.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CheckoutInput true "Shipping address and payment method"
// @Success      201 {object} APIResponse[tradeapp.CheckoutResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      402 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Empty cart or insufficient stock"
// @Failure      502 {object} ErrorResponse "Payment provider unavailable"
// @Security     BearerAuth
// @Router       /orders/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req tradeapp.CheckoutInput
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListMine godoc
// @ID           listMyOrders
// @Summary      Your orders, newest first
// @Tags         orders
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]tradeapp.OrderResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var q pageQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.orderService.ListMine(c.Request.Context(), userID, tradeapp.OrderListQuery{Page: q.Page, PageSize: q.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(&h.BaseHandler, c, page)
}

// GetMine godoc
// @ID           getMyOrder
// @Summary      One of your orders
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetMine(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetMine(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// CancelMine godoc
// @ID           cancelMyOrder
// @Summary      Cancel one of your orders
// @Description  Only pending and processing orders can be cancelled. Stock is restored.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                    true  "Order ID" format(uuid)
// @Param        request body tradeapp.CancelOrderInput false "Reason"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) CancelMine(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelOrderInput
	if !h.BindOptionalJSON(c, &req) {
		return
	}

	order, err := h.orderService.CancelMine(c.Request.Context(), userID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// AdminList godoc
// @ID           adminListOrders
// @Summary      List orders
// @Tags         admin-orders
// @Produce      json
// @Param        status         query string false "Order status" Enums(pending, processing, shipped, delivered, cancelled, refunded)
// @Param        payment_status query string false "Payment status" Enums(pending, paid, failed, refunded)
// @Param        search         query string false "Order number prefix"
// @Param        from           query string false "Placed on or after (YYYY-MM-DD)"
// @Param        to             query string false "Placed on or before (YYYY-MM-DD)"
// @Param        page           query int    false "Page number" default(1)
// @Param        page_size      query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) AdminList(c *gin.Context) {
	var q tradeapp.OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.orderService.AdminList(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(&h.BaseHandler, c, page)
}

// AdminGet godoc
// @ID           adminGetOrder
// @Summary      Get any order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *OrderHandler) AdminGet(c *gin.Context) {
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.AdminGet(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateStatus godoc
// @ID           adminUpdateOrderStatus
// @Summary      Move an order along its lifecycle
// @Description  Allowed: pending to processing or cancelled, processing to shipped or cancelled,
// @Description  shipped to delivered, delivered to refunded.
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Order ID" format(uuid)
// @Param        request body tradeapp.UpdateOrderStatusInput true "Target status"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Concurrent update"
// @Failure      422 {object} ErrorResponse "Transition not allowed"
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateOrderStatusInput
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
