package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler of the storefront API
type Handlers struct {
	Auth       *handler.AuthHandler
	AdminAuth  *handler.AdminAuthHandler
	Product    *handler.ProductHandler
	Category   *handler.CategoryHandler
	Review     *handler.ReviewHandler
	Cart       *handler.CartHandler
	Wishlist   *handler.WishlistHandler
	Order      *handler.OrderHandler
	Webhook    *handler.WebhookHandler
	Newsletter *handler.NewsletterHandler
	Contact    *handler.ContactHandler
	Settings   *handler.SettingsHandler
	User       *handler.UserHandler
	Analytics  *handler.AnalyticsHandler
}

// Guards are the middleware that protect route groups. Rate limit guards
// may be nil.
type Guards struct {
	Customer     gin.HandlerFunc
	Admin        gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
	ContactLimit gin.HandlerFunc
}

func (g Guards) limited(limit gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{limit, h}
}

// ShopRoutes builds the route groups of the API. Paths are relative to the
// versioned base path.
func ShopRoutes(h Handlers, g Guards) []RouteRegistrar {
	perm := middleware.RequirePermission

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/register", g.limited(g.AuthLimit, h.Auth.Register)...)
	auth.POST("/login", g.limited(g.AuthLimit, h.Auth.Login)...)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", g.Customer, h.Auth.Logout)
	auth.GET("/me", g.Customer, h.Auth.Me)
	auth.PUT("/me", g.Customer, h.Auth.UpdateProfile)
	auth.PUT("/password", g.Customer, h.Auth.ChangePassword)

	products := NewDomainGroup("products", "/products")
	products.GET("", h.Product.List)
	products.GET("/featured", h.Product.Featured)
	products.GET("/slug/:slug", h.Product.GetBySlug)
	products.GET("/:id", h.Product.Get)
	products.GET("/:id/related", h.Product.Related)
	products.GET("/:id/reviews", h.Review.ListForProduct)
	products.POST("/:id/reviews", g.Customer, h.Review.Create)

	categories := NewDomainGroup("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.GET("/slug/:slug", h.Category.GetBySlug)
	categories.GET("/:id", h.Category.Get)

	reviews := NewDomainGroup("reviews", "/reviews").Use(g.Customer)
	reviews.PUT("/:id", h.Review.Update)
	reviews.DELETE("/:id", h.Review.Delete)

	wishlist := NewDomainGroup("wishlist", "/wishlist").Use(g.Customer)
	wishlist.GET("", h.Wishlist.List)
	wishlist.POST("", h.Wishlist.Add)
	wishlist.DELETE("", h.Wishlist.Clear)
	wishlist.DELETE("/:productId", h.Wishlist.Remove)
	wishlist.POST("/:productId/move-to-cart", h.Wishlist.MoveToCart)

	cart := NewDomainGroup("cart", "/cart").Use(g.Customer)
	cart.GET("", h.Cart.Get)
	cart.DELETE("", h.Cart.Clear)
	cart.POST("/items", h.Cart.AddItem)
	cart.PUT("/items/:productId", h.Cart.UpdateItem)
	cart.DELETE("/items/:productId", h.Cart.RemoveItem)

	orders := NewDomainGroup("orders", "/orders").Use(g.Customer)
	orders.POST("/checkout", h.Order.Checkout)
	orders.GET("", h.Order.ListMine)
	orders.GET("/:id", h.Order.GetMine)
	orders.POST("/:id/cancel", h.Order.CancelMine)

	public := NewDomainGroup("storefront", "")
	public.GET("/settings", h.Settings.Public)
	public.POST("/contact", g.limited(g.ContactLimit, h.Contact.Submit)...)
	public.POST("/newsletter/subscribe", h.Newsletter.Subscribe)
	public.POST("/newsletter/unsubscribe", h.Newsletter.Unsubscribe)
	public.POST("/webhooks/stripe", h.Webhook.Stripe)

	admin := NewDomainGroup("admin", "/admin")

	adminAuth := admin.Group("admin-auth", "/auth")
	adminAuth.POST("/login", g.limited(g.AuthLimit, h.AdminAuth.Login)...)
	adminAuth.POST("/refresh", h.AdminAuth.Refresh)
	adminAuth.POST("/logout", g.Admin, h.AdminAuth.Logout)
	adminAuth.GET("/me", g.Admin, h.AdminAuth.Me)

	// Everything below requires an admin token
	console := admin.Group("console", "").Use(g.Admin)

	console.GET("/products", perm("catalog:read"), h.Product.AdminList)
	console.POST("/products", perm("catalog:write"), h.Product.Create)
	console.POST("/products/bulk", perm("catalog:write"), h.Product.BulkImport)
	console.GET("/products/bulk/template", perm("catalog:read"), h.Product.BulkTemplate)
	console.GET("/products/:id", perm("catalog:read"), h.Product.AdminGet)
	console.PUT("/products/:id", perm("catalog:write"), h.Product.Update)
	console.DELETE("/products/:id", perm("catalog:write"), h.Product.Delete)
	console.PATCH("/products/:id/stock", perm("catalog:write"), h.Product.UpdateStock)
	console.POST("/products/:id/images", perm("catalog:write"), h.Product.AddImages)
	console.DELETE("/products/:id/images", perm("catalog:write"), h.Product.RemoveImage)
	console.POST("/products/:id/video", perm("catalog:write"), h.Product.SetVideo)
	console.DELETE("/products/:id/video", perm("catalog:write"), h.Product.RemoveVideo)
	console.GET("/imports", perm("catalog:read"), h.Product.ImportHistory)
	console.GET("/imports/:id", perm("catalog:read"), h.Product.GetImport)

	console.GET("/categories", perm("catalog:read"), h.Category.AdminList)
	console.POST("/categories", perm("catalog:write"), h.Category.Create)
	console.PUT("/categories/:id", perm("catalog:write"), h.Category.Update)
	console.DELETE("/categories/:id", perm("catalog:write"), h.Category.Delete)

	console.GET("/reviews", perm("catalog:read"), h.Review.AdminList)
	console.PATCH("/reviews/:id/status", perm("catalog:write"), h.Review.Moderate)
	console.DELETE("/reviews/:id", perm("catalog:write"), h.Review.AdminDelete)

	console.GET("/orders", perm("orders:read"), h.Order.AdminList)
	console.GET("/orders/:id", perm("orders:read"), h.Order.AdminGet)
	console.PATCH("/orders/:id/status", perm("orders:write"), h.Order.UpdateStatus)

	console.GET("/users", perm("users:read"), h.User.List)
	console.GET("/users/:id", perm("users:read"), h.User.Get)
	console.PATCH("/users/:id/status", perm("users:write"), h.User.SetStatus)
	console.DELETE("/users/:id", perm("users:write"), h.User.Delete)

	console.GET("/newsletter", perm("newsletter:read"), h.Newsletter.List)
	console.GET("/newsletter/export", perm("newsletter:read"), h.Newsletter.Export)
	console.DELETE("/newsletter/:id", perm("newsletter:write"), h.Newsletter.Delete)

	console.GET("/contacts", perm("contacts:read"), h.Contact.List)
	console.GET("/contacts/:id", perm("contacts:read"), h.Contact.Get)
	console.PATCH("/contacts/:id/status", perm("contacts:write"), h.Contact.SetStatus)
	console.DELETE("/contacts/:id", perm("contacts:write"), h.Contact.Delete)

	console.GET("/settings", perm("settings:read"), h.Settings.Get)
	console.PUT("/settings", perm("settings:write"), h.Settings.Update)

	console.GET("/analytics/overview", perm("analytics:read"), h.Analytics.Overview)
	console.GET("/analytics/sales", perm("analytics:read"), h.Analytics.Sales)
	console.GET("/analytics/top-products", perm("analytics:read"), h.Analytics.TopProducts)

	return []RouteRegistrar{auth, products, categories, reviews, wishlist, cart, orders, public, admin}
}
