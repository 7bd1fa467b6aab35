package services

import (
	"errors"
	"math"
	"testing"

	"github.com/landmark-scout/api-go/types"
)

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name string
		q    types.GeoQuery
		want string
	}{
		{
			name: "city coordinates",
			q:    types.GeoQuery{Latitude: 37.7749, Longitude: -122.4194, RadiusKm: 15},
			want: "landmarkCache_37.7_-122.4_15",
		},
		{
			name: "half rounds away from zero",
			q:    types.GeoQuery{Latitude: 37.75, Longitude: -122.25, RadiusKm: 15},
			want: "landmarkCache_37.8_-122.3_15",
		},
		{
			name: "near the origin never prints negative zero",
			q:    types.GeoQuery{Latitude: -0.04, Longitude: 0.04, RadiusKm: 15},
			want: "landmarkCache_0.0_0.0_15",
		},
		{
			name: "fractional radius rounds to nearest",
			q:    types.GeoQuery{Latitude: 51.5072, Longitude: -0.1276, RadiusKm: 20.9},
			want: "landmarkCache_51.5_-0.1_21",
		},
		{
			name: "integer coordinates keep one decimal",
			q:    types.GeoQuery{Latitude: 10, Longitude: 20, RadiusKm: 1},
			want: "landmarkCache_10.0_20.0_1",
		},
		{
			name: "southern hemisphere",
			q:    types.GeoQuery{Latitude: -33.8688, Longitude: 151.2093, RadiusKm: 15},
			want: "landmarkCache_-33.9_151.2_15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheKey(tt.q); got != tt.want {
				t.Errorf("CacheKey(%+v) = %q, want %q", tt.q, got, tt.want)
			}
		})
	}
}

func TestCacheKeyBuckets(t *testing.T) {
	a := types.GeoQuery{Latitude: 37.71, Longitude: -122.44, RadiusKm: 15}
	b := types.GeoQuery{Latitude: 37.74, Longitude: -122.36, RadiusKm: 15}
	if CacheKey(a) != CacheKey(b) {
		t.Errorf("queries in the same cell have different keys: %q vs %q", CacheKey(a), CacheKey(b))
	}

	c := types.GeoQuery{Latitude: 37.86, Longitude: -122.44, RadiusKm: 15}
	if CacheKey(a) == CacheKey(c) {
		t.Errorf("queries in different cells share key %q", CacheKey(a))
	}

	d := types.GeoQuery{Latitude: 37.71, Longitude: -122.44, RadiusKm: 16}
	if CacheKey(a) == CacheKey(d) {
		t.Errorf("different radii share key %q", CacheKey(a))
	}
}

func TestRoundCoord(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.23456, 1.2346},
		{1.23454, 1.2345},
		{-1.23456, -1.2346},
		{-1.23454, -1.2345},
		{7, 7},
		{0, 0},
		{37.77490001, 37.7749},
	}

	for _, tt := range tests {
		if got := RoundCoord(tt.in); got != tt.want {
			t.Errorf("RoundCoord(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	q := types.GeoQuery{Latitude: 37.774912, Longitude: -122.419416, RadiusKm: 15.5, SkipCache: true}
	got := NormalizeQuery(q)
	if got.Latitude != 37.7749 || got.Longitude != -122.4194 {
		t.Errorf("NormalizeQuery coordinates = %v, %v, want 37.7749, -122.4194", got.Latitude, got.Longitude)
	}
	if got.RadiusKm != 15.5 {
		t.Errorf("NormalizeQuery changed radius to %v", got.RadiusKm)
	}
	if !got.SkipCache {
		t.Error("NormalizeQuery dropped SkipCache")
	}
}

func TestValidateQuery(t *testing.T) {
	valid := types.GeoQuery{Latitude: 37.7749, Longitude: -122.4194, RadiusKm: 15}

	tests := []struct {
		name    string
		mutate  func(*types.GeoQuery)
		wantErr bool
	}{
		{"valid", func(q *types.GeoQuery) {}, false},
		{"latitude at north pole", func(q *types.GeoQuery) { q.Latitude = 90 }, false},
		{"latitude at south pole", func(q *types.GeoQuery) { q.Latitude = -90 }, false},
		{"longitude at antimeridian", func(q *types.GeoQuery) { q.Longitude = 180 }, false},
		{"latitude above range", func(q *types.GeoQuery) { q.Latitude = 90.1 }, true},
		{"latitude below range", func(q *types.GeoQuery) { q.Latitude = -90.1 }, true},
		{"longitude above range", func(q *types.GeoQuery) { q.Longitude = 180.1 }, true},
		{"longitude below range", func(q *types.GeoQuery) { q.Longitude = -180.1 }, true},
		{"latitude NaN", func(q *types.GeoQuery) { q.Latitude = math.NaN() }, true},
		{"longitude infinite", func(q *types.GeoQuery) { q.Longitude = math.Inf(1) }, true},
		{"radius NaN", func(q *types.GeoQuery) { q.RadiusKm = math.NaN() }, true},
		{"radius zero", func(q *types.GeoQuery) { q.RadiusKm = 0 }, true},
		{"radius negative", func(q *types.GeoQuery) { q.RadiusKm = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			err := ValidateQuery(q)
			if tt.wantErr && !errors.Is(err, types.ErrInvalidInput) {
				t.Errorf("ValidateQuery(%+v) = %v, want ErrInvalidInput", q, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateQuery(%+v) = %v, want nil", q, err)
			}
		})
	}
}
