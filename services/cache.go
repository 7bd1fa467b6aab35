package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/store"
	"github.com/landmark-scout/api-go/types"
)

// cacheEntry is the stored wire form: the payload plus its write time in
// epoch milliseconds.
type cacheEntry struct {
	Timestamp int64                   `json:"timestamp"`
	Data      types.LandmarkResultSet `json:"data"`
}

// ProximityCache stores landmark result sets behind proximity-bucketed keys
// and keeps an in-memory location-name index for exact-name lookups. The
// index is rebuilt lazily from the full cache on first use. Storage
// failures never surface to callers: reads degrade to misses, writes are
// logged and skipped.
type ProximityCache struct {
	kv  store.KeyValueStore
	ttl time.Duration
	log *zap.Logger
	now func() time.Time

	mu         sync.Mutex
	index      map[string]map[string]struct{}
	indexReady bool
}

func NewProximityCache(kv store.KeyValueStore, ttlHours float64, log *zap.Logger) *ProximityCache {
	return &ProximityCache{
		kv:    kv,
		ttl:   time.Duration(ttlHours * float64(time.Hour)),
		log:   log,
		now:   time.Now,
		index: make(map[string]map[string]struct{}),
	}
}

// Get returns the cached set for the query's bucket, unless it is missing,
// expired, corrupt, bypassed, or identical to exclude.
func (c *ProximityCache) Get(ctx context.Context, q types.GeoQuery, exclude *types.LandmarkResultSet) (*types.LandmarkResultSet, bool) {
	if q.SkipCache {
		return nil, false
	}
	entry, ok := c.load(ctx, CacheKey(q))
	if !ok {
		return nil, false
	}
	if exclude != nil && SameLandmarks(&entry.Data, exclude, NoOverlapLimit) {
		return nil, false
	}
	return &entry.Data, true
}

// Set stores data under the query's bucket and records it in the location
// index. A failed write degrades to a miss later; the result still flows
// to the caller now.
func (c *ProximityCache) Set(ctx context.Context, q types.GeoQuery, data *types.LandmarkResultSet) {
	key := CacheKey(q)
	raw, err := json.Marshal(cacheEntry{Timestamp: c.now().UnixMilli(), Data: *data})
	if err != nil {
		c.log.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.kv.Set(ctx, key, string(raw)); err != nil {
		c.log.Warn("cache write skipped", zap.String("key", key), zap.Error(err))
		return
	}
	c.indexAdd(data.LocationName, key)
}

// FindByLocationName returns a cached set recorded under the exact location
// name whose coordinates fall within the query radius and which is not
// identical to exclude. Expired entries encountered on the way are purged.
func (c *ProximityCache) FindByLocationName(ctx context.Context, name string, q types.GeoQuery, exclude *types.LandmarkResultSet) (*types.LandmarkResultSet, bool) {
	if q.SkipCache || name == "" {
		return nil, false
	}
	c.ensureIndex(ctx)

	c.mu.Lock()
	keys := make([]string, 0, len(c.index[normalizeName(name)]))
	for k := range c.index[normalizeName(name)] {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	sort.Strings(keys)

	for _, key := range keys {
		entry, ok := c.load(ctx, key)
		if !ok {
			continue
		}
		if DistanceKm(entry.Data.Coordinates, q.Point()) > q.RadiusKm {
			continue
		}
		if exclude != nil && SameLandmarks(&entry.Data, exclude, NoOverlapLimit) {
			continue
		}
		return &entry.Data, true
	}
	return nil, false
}

// PurgeExpired walks every cache row, drops expired and corrupt ones, and
// rebuilds the location index from the survivors.
func (c *ProximityCache) PurgeExpired(ctx context.Context) types.CacheStats {
	stats := types.CacheStats{TTLHours: c.ttl.Hours()}

	keys, err := c.kv.Keys(ctx, CacheKeyPrefix)
	if err != nil {
		c.log.Warn("cache enumeration failed", zap.Error(err))
		return stats
	}

	index := make(map[string]map[string]struct{})
	for _, key := range keys {
		raw, ok, err := c.kv.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		var entry cacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			c.log.Warn("corrupt cache entry dropped", zap.String("key", key), zap.Error(err))
			c.deleteQuiet(ctx, key)
			stats.ExpiredRemoved++
			continue
		}
		if c.expired(entry.Timestamp) {
			c.deleteQuiet(ctx, key)
			stats.ExpiredRemoved++
			continue
		}
		stats.Entries++
		stats.TotalBytes += int64(len(raw))
		if n := normalizeName(entry.Data.LocationName); n != "" {
			if index[n] == nil {
				index[n] = make(map[string]struct{})
			}
			index[n][key] = struct{}{}
		}
	}
	stats.Locations = len(index)

	c.mu.Lock()
	c.index = index
	c.indexReady = true
	c.mu.Unlock()

	c.log.Info("cache purge",
		zap.Int("entries", stats.Entries),
		zap.Int("locations", stats.Locations),
		zap.Int("expiredRemoved", stats.ExpiredRemoved),
		zap.Int64("totalBytes", stats.TotalBytes))
	return stats
}

// Clear removes every cache row and resets the index.
func (c *ProximityCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys(ctx, CacheKeyPrefix)
	if err != nil {
		return errors.Wrap(err, "cache enumeration")
	}
	for _, key := range keys {
		if err := c.kv.Delete(ctx, key); err != nil {
			return errors.Wrap(err, "cache delete")
		}
	}
	c.mu.Lock()
	c.index = make(map[string]map[string]struct{})
	c.indexReady = true
	c.mu.Unlock()
	return nil
}

func (c *ProximityCache) load(ctx context.Context, key string) (*cacheEntry, bool) {
	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.log.Warn("corrupt cache entry dropped", zap.String("key", key), zap.Error(err))
		c.removeKey(ctx, key)
		return nil, false
	}
	if c.expired(entry.Timestamp) {
		c.removeKey(ctx, key)
		return nil, false
	}
	return &entry, true
}

func (c *ProximityCache) expired(ts int64) bool {
	return c.now().Sub(time.UnixMilli(ts)) > c.ttl
}

// removeKey deletes a row and unlinks it from the index.
func (c *ProximityCache) removeKey(ctx context.Context, key string) {
	c.deleteQuiet(ctx, key)
	c.mu.Lock()
	for name, keys := range c.index {
		if _, ok := keys[key]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.index, name)
			}
		}
	}
	c.mu.Unlock()
}

func (c *ProximityCache) deleteQuiet(ctx context.Context, key string) {
	if err := c.kv.Delete(ctx, key); err != nil {
		c.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *ProximityCache) indexAdd(name, key string) {
	n := normalizeName(name)
	if n == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.indexReady {
		// The lazy rebuild will pick this entry up.
		return
	}
	if c.index[n] == nil {
		c.index[n] = make(map[string]struct{})
	}
	c.index[n][key] = struct{}{}
}

func (c *ProximityCache) ensureIndex(ctx context.Context) {
	c.mu.Lock()
	ready := c.indexReady
	c.mu.Unlock()
	if !ready {
		c.PurgeExpired(ctx)
	}
}
