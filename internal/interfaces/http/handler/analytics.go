package handler

import (
	"github.com/gin-gonic/gin"
	analyticsapp "github.com/shopfront/backend/internal/application/analytics"
)

// AnalyticsHandler serves the admin dashboard figures
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *analyticsapp.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *analyticsapp.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Overview godoc
// @ID           adminAnalyticsOverview
// @Summary      Dashboard overview
// @Description  Revenue counts paid orders only. Defaults to the last 30 days.
// @Tags         admin-analytics
// @Produce      json
// @Param        from query string false "Start date (YYYY-MM-DD)"
// @Param        to   query string false "End date, inclusive (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[analyticsapp.OverviewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	var q analyticsapp.RangeQuery
	if !h.BindQuery(c, &q) {
		return
	}

	overview, err := h.analyticsService.Overview(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, overview)
}

// Sales godoc
// @ID           adminAnalyticsSales
// @Summary      Revenue and orders per time bucket
// @Tags         admin-analytics
// @Produce      json
// @Param        from     query string false "Start date (YYYY-MM-DD)"
// @Param        to       query string false "End date, inclusive (YYYY-MM-DD)"
// @Param        interval query string false "Bucket size" Enums(day, week, month) default(day)
// @Success      200 {object} APIResponse[analyticsapp.SalesResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/analytics/sales [get]
func (h *AnalyticsHandler) Sales(c *gin.Context) {
	var q analyticsapp.SalesQuery
	if !h.BindQuery(c, &q) {
		return
	}

	sales, err := h.analyticsService.Sales(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sales)
}

// TopProducts godoc
// @ID           adminAnalyticsTopProducts
// @Summary      Best-selling products
// @Tags         admin-analytics
// @Produce      json
// @Param        from  query string false "Start date (YYYY-MM-DD)"
// @Param        to    query string false "End date, inclusive (YYYY-MM-DD)"
// @Param        limit query int    false "Number of products" default(10) maximum(50)
// @Success      200 {object} APIResponse[analyticsapp.TopProductsResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/analytics/top-products [get]
func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	var q analyticsapp.TopProductsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	top, err := h.analyticsService.TopProducts(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, top)
}
