package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/config"
	"github.com/landmark-scout/api-go/providers"
	"github.com/landmark-scout/api-go/types"
)

// Shared provider fakes for the service tests. Each fake serves canned data
// and counts calls so tests can assert which pipeline passes actually ran.

type fakePlaces struct {
	mu          sync.Mutex
	nearby      []types.Landmark
	nearbyErr   error
	nearbyCalls int

	text      []types.Landmark
	textErr   error
	textCalls int
}

func (f *fakePlaces) Nearby(_ context.Context, _ types.GeoQuery, limit int) ([]types.Landmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nearbyCalls++
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	out := f.nearby
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePlaces) TextSearch(_ context.Context, _ string, _ types.Coordinates) ([]types.Landmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls++
	if f.textErr != nil {
		return nil, f.textErr
	}
	return f.text, nil
}

type fakeGen struct {
	mu            sync.Mutex
	discovered    []types.Landmark
	discoverErr   error
	discoverCalls int

	curation    *providers.Curation
	curateErr   error
	curateCalls int
	// When set, CurateLandmarks signals curateEnter and then blocks until
	// curateBlock is closed. Used to pin a curation run in flight.
	curateEnter chan struct{}
	curateBlock chan struct{}

	resolved     types.Landmark
	resolveErr   error
	resolveCalls int
	lastHint     string
}

func (f *fakeGen) DiscoverLandmarks(_ context.Context, _ types.GeoQuery, _ types.LocationInfo, _ int) ([]types.Landmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discoverCalls++
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	return f.discovered, nil
}

func (f *fakeGen) CurateLandmarks(_ context.Context, _ types.GeoQuery, _ types.LocationInfo, _ []string, _, _ int) (*providers.Curation, error) {
	f.mu.Lock()
	f.curateCalls++
	enter, block := f.curateEnter, f.curateBlock
	cur, err := f.curation, f.curateErr
	f.mu.Unlock()

	if enter != nil {
		enter <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (f *fakeGen) ResolveLocation(_ context.Context, _, hint string) (types.Landmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	f.lastHint = hint
	if f.resolveErr != nil {
		return types.Landmark{}, f.resolveErr
	}
	return f.resolved, nil
}

type fakeGeo struct {
	mu           sync.Mutex
	loc          types.LocationInfo
	reverseErr   error
	reverseCalls int

	forward      map[string]types.Coordinates
	forwardName  map[string]string
	forwardErr   error
	forwardCalls int
}

func (f *fakeGeo) Reverse(_ context.Context, _ types.Coordinates) (types.LocationInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reverseCalls++
	if f.reverseErr != nil {
		return types.LocationInfo{}, f.reverseErr
	}
	return f.loc, nil
}

func (f *fakeGeo) Forward(_ context.Context, text string) (types.Coordinates, string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwardCalls++
	if f.forwardErr != nil {
		return types.Coordinates{}, "", false, f.forwardErr
	}
	c, ok := f.forward[text]
	if !ok {
		return types.Coordinates{}, "", false, nil
	}
	return c, f.forwardName[text], true, nil
}

type fakeImages struct {
	mu          sync.Mutex
	pageID      int64
	found       bool
	searchErr   error
	searchCalls int

	thumb      string
	thumbErr   error
	thumbCalls int

	titles    []string
	listErr   error
	listCalls int

	infos     map[string]providers.ImageMeta
	infoErr   error
	infoCalls int
}

func (f *fakeImages) SearchPage(_ context.Context, _ string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return 0, false, f.searchErr
	}
	return f.pageID, f.found, nil
}

func (f *fakeImages) Thumbnail(_ context.Context, _ int64, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thumbCalls++
	if f.thumbErr != nil {
		return "", f.thumbErr
	}
	return f.thumb, nil
}

func (f *fakeImages) ListImages(_ context.Context, _ int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.titles, nil
}

func (f *fakeImages) ImageInfo(_ context.Context, title string) (providers.ImageMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	if f.infoErr != nil {
		return providers.ImageMeta{}, f.infoErr
	}
	return f.infos[title], nil
}

// fakePoller hands out one completion event per Complete call, the way the
// aggregator's UpdateStatus does.
type fakePoller struct {
	mu    sync.Mutex
	ready bool
	at    time.Time
}

func (f *fakePoller) UpdateStatus() (bool, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return false, time.Time{}
	}
	f.ready = false
	return true, f.at
}

func (f *fakePoller) Complete(at time.Time) {
	f.mu.Lock()
	f.ready = true
	f.at = at
	f.mu.Unlock()
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		CacheTTLHours:         48,
		MaxNearbyResults:      10,
		MinAcceptLandmarks:    3,
		OverlapLimit:          4,
		CurationPickCount:     3,
		CurationGenerateCount: 3,
		ViewMoveTolerance:     0.1,
	}
}

// mkLandmarks builds named landmarks scattered just off the base point.
func mkLandmarks(base types.Coordinates, names ...string) []types.Landmark {
	out := make([]types.Landmark, 0, len(names))
	for i, name := range names {
		out = append(out, types.Landmark{
			Name:      name,
			Latitude:  base.Lat() + float64(i+1)*0.001,
			Longitude: base.Lon() - float64(i+1)*0.001,
		})
	}
	return out
}

func landmarkNames(set *types.LandmarkResultSet) []string {
	names := make([]string, 0, len(set.Landmarks))
	for _, lm := range set.Landmarks {
		names = append(names, lm.Name)
	}
	return names
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
