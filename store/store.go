package store

import (
	"context"
	"errors"
)

// ErrQuotaExceeded classifies a write rejected for capacity reasons. The
// cache layer recovers from it (log and continue); it never surfaces to API
// callers.
var ErrQuotaExceeded = errors.New("store: quota exceeded")

// KeyValueStore is the persistence contract behind the proximity cache:
// string keys, opaque string values, prefix enumeration. Get reports
// presence explicitly so an absent key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
