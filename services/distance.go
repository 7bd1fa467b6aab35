package services

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/landmark-scout/api-go/types"
)

// earthRadiusKm converts s2 angles to surface kilometers.
const earthRadiusKm = 6371.01

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b types.Coordinates) float64 {
	pa := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	pb := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return pa.Distance(pb).Radians() * earthRadiusKm
}

// SameIntegerDegrees reports whether the truncated integer degrees of the
// two points agree on at least one axis.
func SameIntegerDegrees(a, b types.Coordinates) bool {
	return math.Trunc(a.Lat()) == math.Trunc(b.Lat()) ||
		math.Trunc(a.Lon()) == math.Trunc(b.Lon())
}

// MovedMaterially reports whether a view center drifted beyond tol degrees
// on either axis. Clients use it to discard an update issued for a view
// they have since left.
func MovedMaterially(a, b types.Coordinates, tol float64) bool {
	return math.Abs(a.Lat()-b.Lat()) > tol || math.Abs(a.Lon()-b.Lon()) > tol
}
