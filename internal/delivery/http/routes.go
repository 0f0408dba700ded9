package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nutricoach/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(LoggerMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/targets/calculate", handler.CalculateTargets)

		users := v1.Group("/users/:userID")
		{
			users.GET("/profile", handler.GetProfile)
			users.PATCH("/profile", handler.PatchProfile)
			users.GET("/goal", handler.GetGoal)
			users.PATCH("/goal", handler.PatchGoal)
			users.GET("/targets", handler.GetTargets)

			users.GET("/meals", handler.ListMeals)
			users.POST("/meals", handler.CreateMeal)
			users.POST("/meals/extract", handler.ExtractMeal)
			users.DELETE("/meals/:mealID", handler.DeleteMeal)

			users.GET("/daily", handler.GetDaily)
			users.GET("/recap", handler.GetRecap)
			users.GET("/recap/latest", handler.GetLatestRecap)
		}
	}

	return router
}
