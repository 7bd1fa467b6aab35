package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// AppConfig carries every runtime knob of the service. Each field has a
// working default; env vars override.
type AppConfig struct {
	Port string

	// Cache
	CacheBackend  string // postgres | redis | memory
	CacheTTLHours float64
	SkipCache     bool

	// Aggregation
	TestMode              bool
	MaxNearbyResults      int
	MinAcceptLandmarks    int
	OverlapLimit          int
	CurationPickCount     int
	CurationGenerateCount int

	// Refresh coordination
	ShowTimeout       time.Duration
	PollInterval      time.Duration
	ViewMoveTolerance float64

	// Images
	ImageThrottle time.Duration

	// Providers
	GooglePlacesAPIKey string
	Language           string
	GeminiAPIKey       string
	GeminiModel        string
	NominatimBaseURL   string
}

func Load() *AppConfig {
	return &AppConfig{
		Port: envStr("PORT", "8080"),

		CacheBackend:  envStr("CACHE_BACKEND", "postgres"),
		CacheTTLHours: envFloat("CACHE_TTL_HOURS", 48),
		SkipCache:     envBool("SKIP_CACHE", false),

		TestMode:              envBool("TEST_MODE", false),
		MaxNearbyResults:      envInt("MAX_NEARBY_RESULTS", 10),
		MinAcceptLandmarks:    envInt("MIN_ACCEPT_LANDMARKS", 3),
		OverlapLimit:          envInt("OVERLAP_LIMIT", 4),
		CurationPickCount:     envInt("CURATION_PICK_COUNT", 3),
		CurationGenerateCount: envInt("CURATION_GENERATE_COUNT", 3),

		ShowTimeout:       envDuration("REFRESH_SHOW_TIMEOUT", 30*time.Second),
		PollInterval:      envDuration("REFRESH_POLL_INTERVAL", 3*time.Second),
		ViewMoveTolerance: envFloat("VIEW_MOVE_TOLERANCE", 0.1),

		ImageThrottle: envDuration("IMAGE_THROTTLE", 100*time.Millisecond),

		GooglePlacesAPIKey: os.Getenv("GOOGLE_PLACES_API_KEY"),
		Language:           envStr("PLACES_LANGUAGE", "en"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        envStr("GEMINI_MODEL", "gemini-2.0-flash"),
		NominatimBaseURL:   envStr("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
	}
}

// Validate rejects a config that cannot serve live traffic. Test mode runs
// without provider credentials.
func (c *AppConfig) Validate() error {
	if c.TestMode {
		return nil
	}
	if c.GooglePlacesAPIKey == "" {
		return errors.New("GOOGLE_PLACES_API_KEY is not set")
	}
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is not set")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
