package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/config"
	"github.com/landmark-scout/api-go/controllers"
	"github.com/landmark-scout/api-go/middleware"
	"github.com/landmark-scout/api-go/providers"
	"github.com/landmark-scout/api-go/routes"
	"github.com/landmark-scout/api-go/services"
	"github.com/landmark-scout/api-go/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg := config.Load()
	logger := config.NewLogger()
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	kv := newStore(cfg)
	cache := services.NewProximityCache(kv, cfg.CacheTTLHours, logger)

	placesProvider := providers.NewGooglePlacesProvider(cfg.GooglePlacesAPIKey, cfg.Language, logger)
	geoProvider := providers.NewNominatimProvider(cfg.NominatimBaseURL, logger)
	imageProvider := providers.NewWikimediaProvider(logger)

	var genProvider providers.GenerativeModelProvider = providers.DisabledGenerativeProvider{}
	if cfg.GeminiAPIKey != "" {
		gp, err := providers.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Fatal("gemini client init failed", zap.Error(err))
		}
		genProvider = gp
	}

	var mirror *services.ImageMirror
	if r2 := config.GetR2Config(); r2.Enabled() {
		mirror = services.NewImageMirror(r2, logger)
		logger.Info("image mirror enabled", zap.String("bucket", r2.BucketName))
	}

	service := services.NewLandmarkService(cfg, logger, cache, placesProvider, genProvider, geoProvider)
	session := services.NewTextQuerySession(placesProvider, genProvider, geoProvider, logger)
	resolver := services.NewImageResolver(imageProvider, mirror, cfg.ImageThrottle, logger)
	refresh := services.NewRefreshCoordinator(service, cfg.ShowTimeout, cfg.PollInterval, logger)

	landmarkController := controllers.NewLandmarkController(service, session, resolver, cache, refresh, logger)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	routes.SetupRoutes(r, landmarkController)

	logger.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("cacheBackend", cfg.CacheBackend),
		zap.Bool("testMode", cfg.TestMode))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// newStore picks the cache backend. Postgres is the default; redis suits
// shared deployments and memory suits local development.
func newStore(cfg *config.AppConfig) store.KeyValueStore {
	switch cfg.CacheBackend {
	case "redis":
		return store.NewRedisStore(config.NewRedisClient())
	case "memory":
		return store.NewMemoryStore()
	default:
		return store.NewGormStore(config.InitDB())
	}
}
