package routes

import (
	"net/http"
	"time"

	"tienda-backend/firebase"
	"tienda-backend/handlers"
	"tienda-backend/middleware"
	"tienda-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, storage firebase.StorageClient) {
	catalogService := &services.CatalogService{DB: db, Storage: storage}
	cartService := &services.CartService{DB: db}
	orderService := &services.OrderService{DB: db}

	authHandler := &handlers.AuthHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db, Catalog: catalogService}
	subcategoryHandler := &handlers.SubcategoryHandler{DB: db, Catalog: catalogService}
	productHandler := &handlers.ProductHandler{DB: db, Catalog: catalogService, Storage: storage}
	cartHandler := &handlers.CartHandler{Cart: cartService}
	orderHandler := &handlers.OrderHandler{DB: db, Orders: orderService}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Login attempts are rate limited per client IP.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), authHandler.Register)
		auth.POST("/login", authLimiter.Middleware(), authHandler.Login)
		auth.GET("/profile", middleware.AuthMiddleware(), authHandler.GetProfile)
	}

	// Public catalog reads. Clients pass ?active=true for the storefront
	// view.
	public := api.Group("")
	{
		public.GET("/categories", categoryHandler.GetCategories)
		public.GET("/categories/:id", categoryHandler.GetCategory)
		public.GET("/subcategories", subcategoryHandler.GetSubcategories)
		public.GET("/subcategories/:id", subcategoryHandler.GetSubcategory)
		public.GET("/products", productHandler.GetProducts)
		public.GET("/products/:id", productHandler.GetProduct)
	}

	// Authenticated customer routes.
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/cart", cartHandler.GetCart)
		protected.POST("/cart", cartHandler.AddToCart)
		protected.PUT("/cart/:productId", cartHandler.UpdateCartItem)
		protected.DELETE("/cart/:productId", cartHandler.RemoveFromCart)
		protected.DELETE("/cart", cartHandler.ClearCart)

		protected.POST("/orders", orderHandler.CreateOrder)
		protected.GET("/orders", orderHandler.GetOrders)
		protected.GET("/orders/:id", orderHandler.GetOrder)
		protected.POST("/orders/:id/cancel", orderHandler.CancelOrder)
		protected.DELETE("/orders/:id", orderHandler.DeleteOrder)
	}

	// Admin catalog and fulfillment management.
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.PATCH("/categories/:id/active", categoryHandler.SetCategoryActive)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		admin.POST("/subcategories", subcategoryHandler.CreateSubcategory)
		admin.PUT("/subcategories/:id", subcategoryHandler.UpdateSubcategory)
		admin.PATCH("/subcategories/:id/active", subcategoryHandler.SetSubcategoryActive)
		admin.DELETE("/subcategories/:id", subcategoryHandler.DeleteSubcategory)

		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.PATCH("/products/:id/active", productHandler.SetProductActive)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)

		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
	}
}
