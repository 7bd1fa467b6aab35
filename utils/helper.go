package utils

import "strconv"

// Lenient query-parameter parsing for the nested-params request format.
// Bad input degrades to the zero value; callers validate presence
// themselves.

func ParseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val
}

func ParseBool(s string) bool {
	if s == "" {
		return false
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return val
}
