package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/landmark-scout/api-go/controllers"
)

func SetupRoutes(r *gin.Engine, landmarkController *controllers.LandmarkController) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		SetupLandmarkRoutes(api, landmarkController)
		SetupCacheRoutes(api, landmarkController)
	}
}
