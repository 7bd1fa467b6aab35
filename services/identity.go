package services

import (
	"strings"

	"github.com/landmark-scout/api-go/types"
)

// NoOverlapLimit selects strict identity in SameLandmarks.
const NoOverlapLimit = -1

// normalizeName keys landmarks for identity comparison: case-insensitive,
// surrounding whitespace ignored.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameLandmarks reports whether two result sets show the caller the same
// landmarks. With NoOverlapLimit every member of a must be name-matched in
// b; with a non-negative limit the sets count as the same once the number
// of matches strictly exceeds it.
func SameLandmarks(a, b *types.LandmarkResultSet, limit int) bool {
	if a == nil || b == nil {
		return false
	}
	names := make(map[string]struct{}, len(b.Landmarks))
	for _, lm := range b.Landmarks {
		names[normalizeName(lm.Name)] = struct{}{}
	}
	matches := 0
	for _, lm := range a.Landmarks {
		if _, ok := names[normalizeName(lm.Name)]; ok {
			matches++
		}
	}
	if limit < 0 {
		return matches == len(a.Landmarks)
	}
	return matches > limit
}
