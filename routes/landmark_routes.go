package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/landmark-scout/api-go/controllers"
)

func SetupLandmarkRoutes(api *gin.RouterGroup, landmarkController *controllers.LandmarkController) {
	landmarks := api.Group("/landmarks")
	{
		landmarks.GET("/nearby", landmarkController.GetNearbyLandmarks)
		landmarks.GET("/status", landmarkController.GetUpdateStatus)
		landmarks.POST("/curate", landmarkController.TriggerCuration)
		landmarks.DELETE("/refresh", landmarkController.DismissRefresh)
		landmarks.GET("/search", landmarkController.SearchLocation)
		landmarks.GET("/image", landmarkController.GetLandmarkImage)
	}
}

func SetupCacheRoutes(api *gin.RouterGroup, landmarkController *controllers.LandmarkController) {
	cache := api.Group("/cache")
	{
		cache.GET("/stats", landmarkController.GetCacheStats)
		cache.DELETE("", landmarkController.ClearCache)
	}
}
