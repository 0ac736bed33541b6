package api

import (
	"context"
	"fmt"
	"time"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/ai/cache"
	aiService "meal-planner/internal/core/ai/service"
	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/curation"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/session"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/core/user"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 請求超時
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// SetupRouter 組裝服務並設置路由
func SetupRouter(cfg *config.Config) (*gin.Engine, error) {
	common.LogInfo("開始設置路由",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// 初始化服務
	cacheStore, err := cache.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion cache: %w", err)
	}
	completer := aiService.NewService(cfg, cacheStore)

	userStore, err := user.NewStore(cfg.Users.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}

	sessionStore := session.NewMemoryStore()
	catalogClient := catalog.NewClient(cfg)
	searchPlanner := planner.NewPlanner(completer)
	selector := curation.NewSelector(completer)
	classifier := curation.NewIntentClassifier(completer)

	curationSvc := curation.NewService(userStore, searchPlanner, catalogClient,
		selector, classifier, sessionStore, cfg.Catalog.MaxResults)
	shoppingSvc := shopping.NewService(userStore, sessionStore, shopping.NewParser(completer))

	healthHandler := handlers.NewHealthHandler(cfg)
	recipeHandler := handlers.NewRecipeHandler(curationSvc)
	shoppingHandler := handlers.NewShoppingHandler(shoppingSvc)
	userHandler := handlers.NewUserHandler(userStore)

	// 健康檢查
	router.GET("/health", healthHandler.Check)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/live", healthHandler.Live)

	api := router.Group("/api")
	{
		recipes := api.Group("/recipes")
		{
			recipes.POST("/search", recipeHandler.Search)
			recipes.GET("/all/:session_id", recipeHandler.AllRecipes)
		}

		api.POST("/agent/chat", recipeHandler.Chat)

		shoppingGroup := api.Group("/shopping/:user_id")
		{
			shoppingGroup.GET("", shoppingHandler.Get)
			shoppingGroup.POST("/recipes", shoppingHandler.AddRecipe)
			shoppingGroup.DELETE("/recipes", shoppingHandler.RemoveRecipe)
			shoppingGroup.POST("/items", shoppingHandler.AddItem)
			shoppingGroup.DELETE("/items/:name", shoppingHandler.DeleteItem)
			shoppingGroup.POST("/items/:name/toggle", shoppingHandler.ToggleItem)
			shoppingGroup.POST("/clear", shoppingHandler.Clear)
			shoppingGroup.POST("/move-to-pantry", shoppingHandler.MoveToPantry)
		}

		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.GET("/:user_id", userHandler.Get)
			users.PUT("/:user_id", userHandler.Update)
			users.GET("/:user_id/family", userHandler.GetFamily)
			users.POST("/:user_id/family", userHandler.AddFamily)
			users.DELETE("/:user_id/family/:member_id", userHandler.RemoveFamily)
			users.GET("/:user_id/fridge", userHandler.GetFridge)
			users.PUT("/:user_id/fridge", userHandler.UpdateFridge)
		}
	}

	common.LogInfo("路由設置完成",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.Int("max_results", cfg.Catalog.MaxResults),
		zap.Duration("timeout", timeoutDuration),
	)

	return router, nil
}
