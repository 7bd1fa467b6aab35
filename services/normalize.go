package services

import (
	"math"
	"strconv"

	"github.com/landmark-scout/api-go/types"
)

// CacheKeyPrefix namespaces every proximity-cache row.
const CacheKeyPrefix = "landmarkCache_"

// RoundCoord rounds a coordinate to 4 decimal places, half away from zero.
// This is the precision used for provider calls and plausibility checks.
func RoundCoord(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// NormalizeQuery returns q with business-precision coordinates.
func NormalizeQuery(q types.GeoQuery) types.GeoQuery {
	q.Latitude = RoundCoord(q.Latitude)
	q.Longitude = RoundCoord(q.Longitude)
	return q
}

// ValidateQuery rejects non-finite or out-of-range queries before any
// provider or storage work happens.
func ValidateQuery(q types.GeoQuery) error {
	for _, v := range []float64{q.Latitude, q.Longitude, q.RadiusKm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.ErrInvalidInput
		}
	}
	if q.Latitude < -90 || q.Latitude > 90 {
		return types.ErrInvalidInput
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return types.ErrInvalidInput
	}
	if q.RadiusKm <= 0 {
		return types.ErrInvalidInput
	}
	return nil
}

// CacheKey derives the proximity bucket for a query: coordinates at one
// decimal place and the radius at the nearest integer, so queries within
// the same ~11 km cell share an entry. Equal queries always produce
// byte-equal keys.
func CacheKey(q types.GeoQuery) string {
	lat := math.Round(q.Latitude*10) / 10
	lon := math.Round(q.Longitude*10) / 10
	// Round can return negative zero, which would print as -0.0.
	if lat == 0 {
		lat = 0
	}
	if lon == 0 {
		lon = 0
	}
	return CacheKeyPrefix +
		strconv.FormatFloat(lat, 'f', 1, 64) + "_" +
		strconv.FormatFloat(lon, 'f', 1, 64) + "_" +
		strconv.Itoa(int(math.Round(q.RadiusKm)))
}
