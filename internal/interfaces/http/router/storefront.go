package router

import (
	"github.com/brewline/storefront/internal/interfaces/http/handler"
	"github.com/brewline/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers are the endpoint implementations the storefront routes dispatch to
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Admin    *handler.AdminCatalogHandler
	Settings *handler.SettingsHandler
	Cart     *handler.CartHandler
	Auth     *handler.AuthHandler
	Health   *handler.HealthHandler
}

// Guards are the middleware that protect groups of routes.
// Nil limiters disable rate limiting for their group.
type Guards struct {
	// RequireAdmin rejects requests without a valid admin access token
	RequireAdmin gin.HandlerFunc
	// CartLimiter throttles the cart and checkout routes per client IP
	CartLimiter *middleware.RateLimiter
	// AuthLimiter throttles login and refresh attempts per client IP
	AuthLimiter *middleware.RateLimiter
	// BodyLimit caps the JSON bodies of the cart and auth routes
	BodyLimit int64
	// AdminBodyLimit caps admin request bodies, image uploads included, and
	// reports ERR_UPLOAD_TOO_LARGE
	AdminBodyLimit int64
	Swagger        middleware.SwaggerConfig
}

// StorefrontGroups builds the /api/v1 route tree
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	catalog := NewDomainGroup("catalog", "/catalog").
		GET("/products", h.Catalog.ListProducts).
		GET("/products/:id", h.Catalog.GetProduct).
		GET("/categories", h.Catalog.ListCategories)

	site := NewDomainGroup("settings", "/settings").
		GET("", h.Settings.GetSettings)

	shop := NewDomainGroup("cart", "").Use(middleware.CartSession())
	if g.CartLimiter != nil {
		shop.Use(middleware.RateLimit(g.CartLimiter))
	}
	if g.BodyLimit > 0 {
		shop.Use(middleware.BodyLimit(middleware.JSONBodyPolicy(g.BodyLimit)))
	}
	shop.GET("/cart", h.Cart.GetCart).
		DELETE("/cart", h.Cart.ClearCart).
		POST("/cart/items", h.Cart.AddItem).
		PATCH("/cart/items/:line_id", h.Cart.UpdateQuantity).
		DELETE("/cart/items/:line_id", h.Cart.RemoveItem).
		POST("/checkout", h.Cart.Checkout)

	auth := NewDomainGroup("auth", "/auth")
	public := auth.Group("auth", "")
	if g.AuthLimiter != nil {
		public.Use(middleware.RateLimit(g.AuthLimiter))
	}
	if g.BodyLimit > 0 {
		public.Use(middleware.BodyLimit(middleware.JSONBodyPolicy(g.BodyLimit)))
	}
	public.POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken)
	auth.Group("auth", "").Use(g.RequireAdmin).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	admin := NewDomainGroup("admin", "/admin").Use(g.RequireAdmin)
	if g.AdminBodyLimit > 0 {
		admin.Use(middleware.BodyLimit(middleware.UploadBodyPolicy(g.AdminBodyLimit)))
	}
	admin.Group("products", "/products").
		POST("", h.Admin.CreateProduct).
		PUT("/:id", h.Admin.UpdateProduct).
		DELETE("/:id", h.Admin.DeleteProduct).
		POST("/:id/image", h.Admin.UploadProductImage)
	admin.Group("categories", "/categories").
		POST("", h.Admin.CreateCategory).
		PUT("/:id", h.Admin.UpdateCategory).
		DELETE("/:id", h.Admin.DeleteCategory)
	admin.POST("/images", h.Admin.UploadImage).
		PUT("/settings", h.Settings.UpdateSettings)

	return []*DomainGroup{catalog, site, shop, auth, admin}
}

// Setup mounts the probes, the API docs and the versioned storefront API on engine
func Setup(engine *gin.Engine, h Handlers, g Guards) *Router {
	engine.GET("/health", h.Health.Health)
	engine.GET("/ready", h.Health.Ready)

	if g.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(g.Swagger, g.RequireAdmin),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, group := range StorefrontGroups(h, g) {
		r.Register(group)
	}
	r.Setup()
	return r
}
