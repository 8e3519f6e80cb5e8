package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge/foodbridge/config"
	"github.com/foodbridge/foodbridge/controllers"
	"github.com/foodbridge/foodbridge/middleware"
	"github.com/foodbridge/foodbridge/models"
	"github.com/foodbridge/foodbridge/realtime"
	"github.com/foodbridge/foodbridge/services"
	"github.com/foodbridge/foodbridge/utils"
)

// SetupRouter wires routes, middlewares, and controllers. The services
// are constructed by the caller so the handlers and the background
// sweeper share one instance.
func SetupRouter(db *gorm.DB, hub *realtime.Hub, foodSvc *services.FoodService, wasteSvc *services.WasteFoodService) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Uploaded food images
	r.Static("/uploads/food-images", cfg.UploadDir)

	r.GET("/api/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	foodController := controllers.NewFoodController(db, foodSvc, hub)
	wasteController := controllers.NewWasteFoodController(db, wasteSvc, hub)
	adminController := controllers.NewAdminController(db, foodSvc, wasteSvc)

	// Realtime: every connected client receives every event.
	r.GET("/ws", hub.ServeWS)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	foodGroup := api.Group("/food")
	foodGroup.Use(middleware.AuthRequired())
	foodGroup.POST("/create", middleware.RoleRequired(models.RoleDonor), foodController.Create)
	foodGroup.GET("/my-posts", middleware.RoleRequired(models.RoleDonor), foodController.MyPosts)
	foodGroup.GET("/available", middleware.RoleRequired(models.RoleVolunteer), foodController.Available)
	foodGroup.GET("/my-claims", middleware.RoleRequired(models.RoleVolunteer), foodController.MyClaims)
	foodGroup.POST("/claim/:id", middleware.RoleRequired(models.RoleVolunteer), foodController.Claim)
	foodGroup.POST("/verify-otp/:id", middleware.RoleRequired(models.RoleDonor), foodController.VerifyOTP)

	wasteGroup := api.Group("/waste-food")
	wasteGroup.Use(middleware.AuthRequired())
	wasteGroup.POST("/create", wasteController.Create)
	wasteGroup.GET("/available", wasteController.Available)
	wasteGroup.GET("/my-listings", wasteController.MyListings)
	wasteGroup.GET("/my-purchases", wasteController.MyPurchases)
	wasteGroup.POST("/buy/:id", wasteController.Buy)
	wasteGroup.POST("/complete/:id", wasteController.Complete)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	adminGroup.GET("/users", adminController.ListUsers)
	adminGroup.DELETE("/users/:id", adminController.DeleteUser)
	adminGroup.GET("/food-posts", adminController.ListFoodPosts)
	adminGroup.DELETE("/food-posts/:id", adminController.DeleteFoodPost)
	adminGroup.GET("/waste-food-posts", adminController.ListWasteFoodPosts)
	adminGroup.DELETE("/waste-food-posts/:id", adminController.DeleteWasteFoodPost)
	adminGroup.GET("/stats", adminController.Stats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
