package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/config"
	"github.com/landmark-scout/api-go/providers"
	"github.com/landmark-scout/api-go/types"
)

// LandmarkService runs the multi-source aggregation pipeline: cache first,
// then places search with an acceptance test, then generative escalation.
// An accepted places result is held in memory for deferred curation; only
// curated and test sets are written back to the cache.
type LandmarkService struct {
	cfg    *config.AppConfig
	log    *zap.Logger
	cache  *ProximityCache
	places providers.PlacesSearchProvider
	gen    providers.GenerativeModelProvider
	geo    providers.GeocodingProvider

	curating atomic.Bool

	mu        sync.Mutex
	held      *heldResult
	updated   bool
	updatedAt time.Time

	now func() time.Time
}

// heldResult is an accepted places set parked for deferred curation.
type heldResult struct {
	query types.GeoQuery
	loc   types.LocationInfo
	set   types.LandmarkResultSet
}

func NewLandmarkService(cfg *config.AppConfig, log *zap.Logger, cache *ProximityCache,
	places providers.PlacesSearchProvider, gen providers.GenerativeModelProvider,
	geo providers.GeocodingProvider) *LandmarkService {
	return &LandmarkService{
		cfg:    cfg,
		log:    log,
		cache:  cache,
		places: places,
		gen:    gen,
		geo:    geo,
		now:    time.Now,
	}
}

// GetLandmarkData resolves landmarks for a query, preferring cached curated
// sets, then a places search, then generative discovery. last is the set
// the caller is already showing; an identical answer is never returned
// from the cache, and a places result that merely repeats it fails
// acceptance.
func (s *LandmarkService) GetLandmarkData(ctx context.Context, q types.GeoQuery, last *types.LandmarkResultSet) (*types.LandmarkResultSet, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}
	q = NormalizeQuery(q)
	if s.cfg.SkipCache {
		q.SkipCache = true
	}

	if set, ok := s.cache.Get(ctx, q, last); ok {
		s.log.Debug("cache hit", zap.String("key", CacheKey(q)))
		return set, nil
	}

	loc, err := s.geo.Reverse(ctx, q.Point())
	if err != nil {
		// Recoverable: the pipeline runs without a location name.
		s.log.Warn("reverse geocode failed", zap.Error(err))
		loc = types.LocationInfo{}
	}

	if set, ok := s.cache.FindByLocationName(ctx, loc.Name, q, last); ok {
		s.log.Debug("cache hit by location name", zap.String("location", loc.Name))
		return set, nil
	}

	if s.cfg.TestMode {
		set := s.testResult(q, loc)
		s.cache.Set(ctx, q, set)
		return set, nil
	}

	// Places pass.
	var fallback *types.LandmarkResultSet
	landmarks, placesErr := s.places.Nearby(ctx, q, s.cfg.MaxNearbyResults)
	if placesErr != nil {
		s.log.Warn("places search failed", zap.Error(placesErr))
	} else if len(landmarks) > 0 {
		set := s.newResultSet(q, loc, landmarks, types.SourceNearbyPlaces)
		if s.accept(set, last) {
			s.hold(q, loc, set)
			return set, nil
		}
		s.log.Debug("places result failed acceptance",
			zap.Int("landmarks", len(landmarks)),
			zap.Bool("hasLast", last != nil))
		fallback = set
	}

	// Generative escalation.
	curated, genErr := s.discoverPass(ctx, q, loc)
	if genErr == nil && len(curated.Landmarks) > 0 {
		s.cache.Set(ctx, q, curated)
		return curated, nil
	}
	if genErr != nil {
		s.log.Warn("generative discovery failed", zap.Error(genErr))
	}

	if fallback != nil {
		// A repeat of what the caller already sees beats nothing at all.
		return fallback, nil
	}
	if genErr == nil {
		return curated, nil
	}
	if placesErr != nil {
		return nil, placesErr
	}
	return nil, genErr
}

// RunCuration upgrades the held places result into a curated set: the model
// picks the best names and generates fresh additions. At most one run is in
// flight; a concurrent trigger returns false without touching the model.
func (s *LandmarkService) RunCuration(ctx context.Context) bool {
	if !s.curating.CompareAndSwap(false, true) {
		return false
	}
	defer s.curating.Store(false)

	s.mu.Lock()
	held := s.held
	s.mu.Unlock()
	if held == nil {
		return false
	}

	names := make([]string, 0, len(held.set.Landmarks))
	byName := make(map[string]types.Landmark, len(held.set.Landmarks))
	for _, lm := range held.set.Landmarks {
		names = append(names, lm.Name)
		byName[normalizeName(lm.Name)] = lm
	}

	curation, err := s.gen.CurateLandmarks(ctx, held.query, held.loc, names,
		s.cfg.CurationPickCount, s.cfg.CurationGenerateCount)
	if err != nil {
		// The uncurated places set stays final for this query.
		s.log.Warn("curation failed, keeping places result", zap.Error(err))
		s.dropHeld()
		return false
	}

	target := s.cfg.CurationPickCount + s.cfg.CurationGenerateCount
	merged := make([]types.Landmark, 0, target)
	for _, name := range curation.Picked {
		if lm, ok := byName[normalizeName(name)]; ok {
			merged = append(merged, lm)
		}
		if len(merged) == s.cfg.CurationPickCount {
			break
		}
	}
	for _, lm := range s.plausible(ctx, held.query, held.loc, curation.Generated) {
		if len(merged) == target {
			break
		}
		merged = append(merged, lm)
	}
	if len(merged) == 0 {
		s.log.Warn("curation produced nothing usable, keeping places result")
		s.dropHeld()
		return false
	}

	set := s.newResultSet(held.query, held.loc, merged, types.SourceGPTSelect)
	s.cache.Set(ctx, held.query, set)

	s.mu.Lock()
	s.held = nil
	s.updated = true
	s.updatedAt = s.now()
	s.mu.Unlock()

	s.log.Info("curation complete",
		zap.String("location", held.loc.Name),
		zap.Int("landmarks", len(merged)))
	return true
}

// UpdateStatus reports, exactly once per completion, that a curation run
// finished and a fresher set is cached.
func (s *LandmarkService) UpdateStatus() (bool, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.updated {
		return false, time.Time{}
	}
	s.updated = false
	return true, s.updatedAt
}

// ViewMoved reports whether a view center drifted beyond the configured
// tolerance, in which case a pending update should not be applied to it.
func (s *LandmarkService) ViewMoved(a, b types.Coordinates) bool {
	return MovedMaterially(a, b, s.cfg.ViewMoveTolerance)
}

// accept applies the places acceptance test: enough landmarks, and not the
// same set the caller is already showing.
func (s *LandmarkService) accept(set, last *types.LandmarkResultSet) bool {
	if len(set.Landmarks) < s.cfg.MinAcceptLandmarks {
		return false
	}
	return !SameLandmarks(set, last, s.cfg.OverlapLimit)
}

func (s *LandmarkService) discoverPass(ctx context.Context, q types.GeoQuery, loc types.LocationInfo) (*types.LandmarkResultSet, error) {
	count := s.cfg.CurationPickCount + s.cfg.CurationGenerateCount
	items, err := s.gen.DiscoverLandmarks(ctx, q, loc, count)
	if err != nil {
		return nil, err
	}
	return s.newResultSet(q, loc, s.plausible(ctx, q, loc, items), types.SourceWithGPT), nil
}

// plausible keeps items whose coordinates could really be near the query.
func (s *LandmarkService) plausible(ctx context.Context, q types.GeoQuery, loc types.LocationInfo, items []types.Landmark) []types.Landmark {
	kept := make([]types.Landmark, 0, len(items))
	for _, lm := range items {
		if s.plausibleCoordinate(ctx, q, loc, lm) {
			kept = append(kept, lm)
		} else {
			s.log.Debug("implausible landmark dropped",
				zap.String("name", lm.Name),
				zap.Float64("lat", lm.Latitude),
				zap.Float64("lon", lm.Longitude))
		}
	}
	return kept
}

// plausibleCoordinate accepts a landmark whose integer degrees agree with
// the query on either axis or whose distance fits the radius. Otherwise
// the name is forward-geocoded once as a rescue; integer-degree agreement
// of the geocoded point also passes.
func (s *LandmarkService) plausibleCoordinate(ctx context.Context, q types.GeoQuery, loc types.LocationInfo, lm types.Landmark) bool {
	if SameIntegerDegrees(lm.Point(), q.Point()) {
		return true
	}
	if DistanceKm(lm.Point(), q.Point()) <= q.RadiusKm {
		return true
	}
	text := lm.Name
	if loc.Country != "" {
		text += ", " + loc.Country
	}
	point, _, ok, err := s.geo.Forward(ctx, text)
	if err != nil || !ok {
		return false
	}
	return SameIntegerDegrees(point, q.Point())
}

func (s *LandmarkService) newResultSet(q types.GeoQuery, loc types.LocationInfo, landmarks []types.Landmark, source types.SourceType) *types.LandmarkResultSet {
	return &types.LandmarkResultSet{
		LocationName: loc.Name,
		Coordinates:  q.Point(),
		Landmarks:    landmarks,
		SourceType:   source,
		Timestamp:    s.now().UnixMilli(),
	}
}

func (s *LandmarkService) hold(q types.GeoQuery, loc types.LocationInfo, set *types.LandmarkResultSet) {
	s.mu.Lock()
	s.held = &heldResult{query: q, loc: loc, set: *set}
	s.mu.Unlock()
}

func (s *LandmarkService) dropHeld() {
	s.mu.Lock()
	s.held = nil
	s.mu.Unlock()
}

// testResult fabricates a deterministic set around the query point so the
// full pipeline can run without provider credentials.
func (s *LandmarkService) testResult(q types.GeoQuery, loc types.LocationInfo) *types.LandmarkResultSet {
	count := s.cfg.CurationPickCount + s.cfg.CurationGenerateCount
	landmarks := make([]types.Landmark, 0, count)
	for i := 0; i < count; i++ {
		landmarks = append(landmarks, types.Landmark{
			Name:        fmt.Sprintf("Test Landmark %d", i+1),
			Latitude:    RoundCoord(q.Latitude + float64(i+1)*0.001),
			Longitude:   RoundCoord(q.Longitude - float64(i+1)*0.001),
			Description: "Fixture landmark for test mode.",
		})
	}
	return s.newResultSet(q, loc, landmarks, types.SourceTest)
}
