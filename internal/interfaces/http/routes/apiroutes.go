package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zevix-io/zevix/internal/interfaces/http/handlers"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

// APIRouteConfig holds dependencies for the public marketing routes.
type APIRouteConfig struct {
	ROIHandler     *handlers.ROIHandler
	MandateHandler *handlers.MandateHandler
}

// SetupAPIRoutes configures the public marketing and health routes.
func SetupAPIRoutes(engine *gin.Engine, cfg *APIRouteConfig) {
	api := engine.Group("/api")
	{
		api.POST("/calculate-roi", cfg.ROIHandler.Calculate)
		if cfg.MandateHandler != nil {
			api.POST("/mandate", cfg.MandateHandler.Submit)
		}
		api.GET("/health", func(c *gin.Context) {
			utils.SuccessResponse(c, http.StatusOK, "ok", gin.H{"status": "healthy"})
		})
	}
}
