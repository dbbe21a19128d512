package router

import (
	"github.com/gin-gonic/gin"

	"github.com/avolkov/plateful/backend/internal/api"
	"github.com/avolkov/plateful/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	allowedOrigins []string,
	healthHandler *api.HealthHandler,
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	userHandler *api.UserHandler,
	catalogHandler *api.CatalogHandler,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	healthHandler.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1)
	catalogHandler.RegisterRoutes(v1)

	return router
}
