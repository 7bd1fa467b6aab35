package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/services"
	"github.com/landmark-scout/api-go/types"
	"github.com/landmark-scout/api-go/utils"
)

type LandmarkController struct {
	Service  *services.LandmarkService
	Session  *services.TextQuerySession
	Resolver *services.ImageResolver
	Cache    *services.ProximityCache
	Refresh  *services.RefreshCoordinator
	Log      *zap.Logger
}

func NewLandmarkController(service *services.LandmarkService, session *services.TextQuerySession,
	resolver *services.ImageResolver, cache *services.ProximityCache,
	refresh *services.RefreshCoordinator, log *zap.Logger) *LandmarkController {
	return &LandmarkController{
		Service:  service,
		Session:  session,
		Resolver: resolver,
		Cache:    cache,
		Refresh:  refresh,
		Log:      log,
	}
}

type NearbyLandmarksQuery struct {
	Latitude  *float64 `form:"latitude" binding:"required"`
	Longitude *float64 `form:"longitude" binding:"required"`
	Radius    float64  `form:"radius,default=15"`
	Shown     string   `form:"shown"`
	SkipCache bool     `form:"skipCache"`
}

type UpdateStatusQuery struct {
	Latitude        *float64 `form:"latitude"`
	Longitude       *float64 `form:"longitude"`
	IssuedLatitude  *float64 `form:"issuedLatitude"`
	IssuedLongitude *float64 `form:"issuedLongitude"`
}

type LocationSearchQuery struct {
	Query      string  `form:"query" binding:"required"`
	Latitude   float64 `form:"latitude"`
	Longitude  float64 `form:"longitude"`
	Generative bool    `form:"generative"`
}

// GetNearbyLandmarks godoc
// @Summary Get landmarks near a point, cache-first with provider fallback
// @Tags landmarks
// @Produce json
// @Param latitude query number true "Query latitude"
// @Param longitude query number true "Query longitude"
// @Param radius query number false "Search radius in kilometers"
// @Param shown query string false "Comma-separated names the client currently shows"
// @Param skipCache query boolean false "Bypass the cache for this request"
// @Success 200 {object} StandardResponse
// @Router /landmarks/nearby [get]
func (lc *LandmarkController) GetNearbyLandmarks(c *gin.Context) {
	var query NearbyLandmarksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		// Some clients wrap the arguments in a params object, which arrives
		// as params[latitude]=... style query keys.
		latRaw := c.Query("params[latitude]")
		lonRaw := c.Query("params[longitude]")
		if latRaw == "" || lonRaw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lat := utils.ParseFloat(latRaw)
		lon := utils.ParseFloat(lonRaw)
		query.Latitude = &lat
		query.Longitude = &lon
		query.Radius = utils.ParseFloat(c.Query("params[radius]"))
		if query.Radius == 0 {
			query.Radius = 15
		}
		query.Shown = c.Query("params[shown]")
		query.SkipCache = utils.ParseBool(c.Query("params[skipCache]"))
	}

	q := types.GeoQuery{
		Latitude:  *query.Latitude,
		Longitude: *query.Longitude,
		RadiusKm:  query.Radius,
		SkipCache: query.SkipCache,
	}

	result, err := lc.Service.GetLandmarkData(c.Request.Context(), q, shownSet(query.Shown))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, types.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if result.SourceType == types.SourceNearbyPlaces {
		// Curation runs in the background; the status endpoint reports when
		// the upgraded set lands in the cache.
		requestID := uuid.New().String()
		lc.Refresh.Show(requestID)
		go func() {
			if !lc.Service.RunCuration(context.Background()) {
				lc.Refresh.Hide(requestID)
			}
		}()
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    result,
	})
}

// GetUpdateStatus godoc
// @Summary Poll whether a curated landmark set replaced the one on screen
// @Tags landmarks
// @Produce json
// @Param latitude query number false "Current view center latitude"
// @Param longitude query number false "Current view center longitude"
// @Param issuedLatitude query number false "View center latitude when the shown set was loaded"
// @Param issuedLongitude query number false "View center longitude when the shown set was loaded"
// @Success 200 {object} StandardResponse
// @Router /landmarks/status [get]
func (lc *LandmarkController) GetUpdateStatus(c *gin.Context) {
	var query UpdateStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pending, at := lc.Refresh.Peek()
	if !pending {
		c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{"updated": false}})
		return
	}

	if query.Latitude != nil && query.Longitude != nil &&
		query.IssuedLatitude != nil && query.IssuedLongitude != nil {
		issued := types.Coordinates{*query.IssuedLatitude, *query.IssuedLongitude}
		current := types.Coordinates{*query.Latitude, *query.Longitude}
		if lc.Service.ViewMoved(issued, current) {
			// The view left the area; hold the event for a poll from a
			// stationary view.
			c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{"updated": false, "deferred": true}})
			return
		}
	}

	lc.Refresh.Consume()
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"updated": true, "timestamp": at.UnixMilli()},
	})
}

// TriggerCuration godoc
// @Summary Run deferred curation on the held places result
// @Tags landmarks
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /landmarks/curate [post]
func (lc *LandmarkController) TriggerCuration(c *gin.Context) {
	updated := lc.Service.RunCuration(c.Request.Context())
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{"updated": updated}})
}

// DismissRefresh godoc
// @Summary Dismiss the refresh indicator and stop update polling
// @Tags landmarks
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /landmarks/refresh [delete]
func (lc *LandmarkController) DismissRefresh(c *gin.Context) {
	lc.Refresh.Dismiss()
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Refresh indicator dismissed"})
}

// SearchLocation godoc
// @Summary Resolve a free-text location query
// @Tags landmarks
// @Produce json
// @Param query query string true "Location text"
// @Param latitude query number false "View center latitude used as search bias"
// @Param longitude query number false "View center longitude used as search bias"
// @Param generative query boolean false "Ask the generative model directly"
// @Success 200 {object} StandardResponse
// @Router /landmarks/search [get]
func (lc *LandmarkController) SearchLocation(c *gin.Context) {
	var query LocationSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bias := types.Coordinates{query.Latitude, query.Longitude}
	answer, err := lc.Session.QueryLocation(c.Request.Context(), query.Query, bias, query.Generative)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, types.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: answer})
}

// GetLandmarkImage godoc
// @Summary Resolve a display image for a landmark name
// @Tags landmarks
// @Produce json
// @Param name query string true "Landmark name"
// @Success 200 {object} StandardResponse
// @Router /landmarks/image [get]
func (lc *LandmarkController) GetLandmarkImage(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	url, err := lc.Resolver.Resolve(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image lookup failed, try again later"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"name": name, "url": url, "found": url != ""},
	})
}

// GetCacheStats godoc
// @Summary Purge expired cache entries and report cache statistics
// @Tags cache
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /cache/stats [get]
func (lc *LandmarkController) GetCacheStats(c *gin.Context) {
	stats := lc.Cache.PurgeExpired(c.Request.Context())
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: stats})
}

// ClearCache godoc
// @Summary Remove every cached landmark set
// @Tags cache
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /cache [delete]
func (lc *LandmarkController) ClearCache(c *gin.Context) {
	if err := lc.Cache.Clear(c.Request.Context()); err != nil {
		lc.Log.Error("cache clear failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cache"})
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Cache cleared"})
}

// shownSet rebuilds the caller's displayed set from a comma-separated name
// list so the pipeline can exclude an identical answer.
func shownSet(raw string) *types.LandmarkResultSet {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	landmarks := make([]types.Landmark, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			landmarks = append(landmarks, types.Landmark{Name: name})
		}
	}
	if len(landmarks) == 0 {
		return nil
	}
	return &types.LandmarkResultSet{Landmarks: landmarks}
}
