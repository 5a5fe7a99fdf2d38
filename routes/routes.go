package routes

import (
	"net/http"

	"pricely/config"
	"pricely/controllers"
	"pricely/middleware"
	"pricely/services/visits"
	"pricely/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the shared services handed to the controllers.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
	Mailer utils.Mailer
}

// SetupRouter creates the gin.Engine and registers every route.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	if err := utils.RegisterValidators(); err != nil {
		utils.LogError(err, "register validators")
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		utils.LogError(err, "trusted proxies")
	}
	r.Use(middleware.RecoveryMiddleware(), middleware.RequestLogger(), middleware.Metrics())
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{cfg.SiteURL}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	tracker := visits.NewTracker(deps.Redis, deps.DB, cfg.VisitTrackingTTL)
	auth := middleware.JWTAuthMiddleware(deps.Redis, cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(deps.Redis, cfg.JWTSecret)

	productController := controllers.NewProductController(deps.DB, tracker, cfg)
	storeController := controllers.NewStoreController(deps.DB, tracker, cfg)
	comparisonController := controllers.NewComparisonController(deps.DB, cfg)
	userController := controllers.NewUserController(deps.DB, deps.Redis, cfg, deps.Mailer)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"result": gin.H{"status": "ok"}, "success": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	products := r.Group("/products", optionalAuth)
	{
		products.GET("/", productController.ProductTypeList)
		products.GET("/search/", productController.SearchRedirect)
		products.GET("/search/products/", productController.ProductSearch)
		products.GET("/search/categories/", productController.ProductTypeSearch)
		products.GET("/categories/:slug/", productController.ProductList)
		products.GET("/items/:id/", productController.ProductDetail)
		products.GET("/items/:id/history/", productController.PriceHistory)
		products.POST("/items/:id/comments/", auth, productController.CreateComment)
	}

	stores := r.Group("/stores", optionalAuth)
	{
		stores.GET("/", storeController.List)
		stores.GET("/:slug/", storeController.Detail)
		stores.POST("/:slug/comments/", auth, storeController.CreateComment)
	}

	comparisons := r.Group("/comparisons", auth)
	{
		comparisons.GET("/", comparisonController.ProductTypeList)
		comparisons.GET("/:slug/", comparisonController.ProductList)
		comparisons.POST("/", comparisonController.Add)
		comparisons.DELETE("/:product_id/", comparisonController.Remove)
	}

	users := r.Group("/users")
	{
		users.POST("/registration/", userController.Register)
		users.POST("/login/", userController.Login)
		users.POST("/logout/", auth, userController.Logout)
		users.GET("/google/", userController.GoogleLogin)
		users.GET("/google/callback/", userController.GoogleCallback)
		users.POST("/verification/send/:email/", auth, userController.SendVerificationEmail)
		users.GET("/verify/:email/:code/", userController.VerifyEmail)

		users.GET("/:slug/", auth, userController.Profile)
		users.PUT("/:slug/", auth, userController.UpdateProfile)
		users.POST("/:slug/password", auth, userController.ChangePassword)
		users.POST("/:slug/email", auth, userController.ChangeEmail)
	}

	return r
}
