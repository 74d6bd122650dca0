// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Dependencies are the services the routes dispatch to.
type Dependencies struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Sessions   *auth.SessionManager
	Users      *user.Service
	Products   *product.Service
	Categories *product.CategoryService
	Ratings    *product.RatingService
	Cart       *cart.Service
	Wishlist   *wishlist.Service
	PDF        *pdf.Service
}

// NewDependencies wires every service over one database handle.
func NewDependencies(db *gorm.DB, cfg *config.Config, store auth.SessionStore, mailer user.Mailer, logger *logrus.Logger, m *metrics.Metrics) *Dependencies {
	sessions := auth.NewSessionManager(store, auth.NewJWTManager(cfg))
	cartService := cart.NewService(db, cart.WithMetrics(m))

	return &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Sessions: sessions,
		Users: user.NewService(db, cfg, sessions, mailer,
			user.WithLogger(logger),
			user.WithMetrics(m),
		),
		Products:   product.NewService(db),
		Categories: product.NewCategoryService(db),
		Ratings:    product.NewRatingService(db),
		Cart:       cartService,
		Wishlist:   wishlist.NewService(db, cartService, wishlist.WithMetrics(m)),
		PDF:        pdf.NewService(cfg),
	}
}

// SetupRoutes mounts every API group under rg.
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	requireAuth := middleware.AuthMiddleware(deps.Sessions, deps.Logger)

	SetupAuthRoutes(rg, deps, requireAuth)
	SetupUserRoutes(rg, deps)
	SetupCatalogRoutes(rg, deps, requireAuth)
	SetupCartRoutes(rg, deps, requireAuth)
	SetupWishlistRoutes(rg, deps, requireAuth)

	if deps.Config.Security.LegacyRoutesEnabled {
		SetupLegacyRoutes(rg, deps)
	}
}

// SetupAuthRoutes sets up account lifecycle routes
func SetupAuthRoutes(rg *gin.RouterGroup, deps *Dependencies, requireAuth gin.HandlerFunc) {
	authHandler := handlers.NewAuthHandler(deps.Users)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.GET("/activate", authHandler.Activate)
		authGroup.POST("/activate", authHandler.Activate)
		authGroup.POST("/resend-activation", authHandler.ResendActivation)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/username-exists", authHandler.UsernameExists)
		authGroup.POST("/email-exists", authHandler.EmailExists)

		if deps.Config.Security.PasswordResetEnabled {
			authGroup.POST("/reset-password", authHandler.ResetPassword)
		}

		protected := authGroup.Group("")
		protected.Use(requireAuth)
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/me", authHandler.Me)
		}
	}
}

// SetupUserRoutes sets up public user lookups
func SetupUserRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	userHandler := handlers.NewUserHandler(deps.Users)

	rg.GET("/users/:id", userHandler.GetUser)
}

// SetupCatalogRoutes sets up category, product and rating routes
func SetupCatalogRoutes(rg *gin.RouterGroup, deps *Dependencies, requireAuth gin.HandlerFunc) {
	categoryHandler := handlers.NewCategoryHandler(deps.Categories, deps.Products)
	productHandler := handlers.NewProductHandler(deps.Products)
	ratingHandler := handlers.NewRatingHandler(deps.Ratings)

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
		categories.GET("/:id/subcategories", categoryHandler.GetSubCategories)
		categories.GET("/:id/products", categoryHandler.GetCategoryProducts)
	}
	rg.GET("/subcategories/:id/products", categoryHandler.GetSubCategoryProducts)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/ratings", ratingHandler.GetRatings)
		products.POST("/:id/ratings", requireAuth, ratingHandler.CreateRating)
	}

	rg.GET("/variants/:id", productHandler.GetVariant)
	rg.GET("/sizes/:id", productHandler.GetSize)
}

// SetupCartRoutes sets up cart routes for the authenticated caller
func SetupCartRoutes(rg *gin.RouterGroup, deps *Dependencies, requireAuth gin.HandlerFunc) {
	cartHandler := handlers.NewCartHandler(deps.Cart, deps.PDF)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(requireAuth)
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.EmptyCart)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items", cartHandler.UpdateCart)
		cartGroup.DELETE("/items", cartHandler.RemoveFromCart)
		cartGroup.GET("/quote.pdf", cartHandler.GetQuote)
	}
}

// SetupWishlistRoutes sets up wishlist routes for the authenticated caller
func SetupWishlistRoutes(rg *gin.RouterGroup, deps *Dependencies, requireAuth gin.HandlerFunc) {
	wishlistHandler := handlers.NewWishlistHandler(deps.Wishlist)

	wishlistGroup := rg.Group("/wishlist")
	wishlistGroup.Use(requireAuth)
	{
		wishlistGroup.GET("", wishlistHandler.GetWishlist)
		wishlistGroup.DELETE("", wishlistHandler.EmptyWishlist)
		wishlistGroup.GET("/check", wishlistHandler.CheckWishlist)
		wishlistGroup.POST("/items", wishlistHandler.AddToWishlist)
		wishlistGroup.DELETE("/items", wishlistHandler.RemoveFromWishlist)
		wishlistGroup.POST("/move-to-cart", wishlistHandler.MoveToCart)
	}
}

// SetupLegacyRoutes sets up the unauthenticated cart routes
func SetupLegacyRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	legacyHandler := handlers.NewLegacyCartHandler(deps.Cart)

	legacy := rg.Group("/legacy/cart")
	{
		legacy.GET("/:user_id", legacyHandler.GetCart)
		legacy.GET("/:user_id/empty", legacyHandler.EmptyCart)
		legacy.POST("/add", legacyHandler.AddToCart)
		legacy.POST("/update", legacyHandler.UpdateCart)
		legacy.POST("/remove", legacyHandler.RemoveFromCart)
	}
}
