// Package providers holds the clients for every external collaborator of the
// aggregation pipeline. Each client decodes wire payloads into domain types
// and reports failures as types.ProviderError; callers never see raw
// responses.
package providers

import (
	"context"

	"github.com/landmark-scout/api-go/types"
)

// PlacesSearchProvider finds points of interest through a places API.
type PlacesSearchProvider interface {
	// Nearby returns up to limit landmarks around the query point.
	Nearby(ctx context.Context, q types.GeoQuery, limit int) ([]types.Landmark, error)
	// TextSearch resolves free text to landmarks, biased toward the given
	// coordinates.
	TextSearch(ctx context.Context, text string, bias types.Coordinates) ([]types.Landmark, error)
}

// Curation is the generative model's answer to a pick-and-extend request:
// names chosen from the offered set plus newly generated nearby landmarks.
type Curation struct {
	Picked    []string
	Generated []types.Landmark
}

// GenerativeModelProvider answers landmark questions with a generative model.
type GenerativeModelProvider interface {
	// DiscoverLandmarks asks for count landmarks around the query point.
	DiscoverLandmarks(ctx context.Context, q types.GeoQuery, loc types.LocationInfo, count int) ([]types.Landmark, error)
	// CurateLandmarks asks the model to pick the best names from the offered
	// set and to generate additional nearby landmarks.
	CurateLandmarks(ctx context.Context, q types.GeoQuery, loc types.LocationInfo, names []string, pick, generate int) (*Curation, error)
	// ResolveLocation turns free text (plus an optional context hint) into a
	// named point.
	ResolveLocation(ctx context.Context, text, hint string) (types.Landmark, error)
}

// GeocodingProvider converts between coordinates and place names.
type GeocodingProvider interface {
	Reverse(ctx context.Context, c types.Coordinates) (types.LocationInfo, error)
	// Forward geocodes free text. ok is false when the text resolves to
	// nothing; that is a normal outcome, not an error.
	Forward(ctx context.Context, text string) (c types.Coordinates, name string, ok bool, err error)
}

// ImageMeta describes one candidate image file.
type ImageMeta struct {
	URL    string
	Width  int
	Height int
	Mime   string
}

// ImageProvider exposes the page-then-files lookup shape of a wiki image
// source.
type ImageProvider interface {
	// SearchPage finds the page for a landmark name. found is false when
	// nothing matches.
	SearchPage(ctx context.Context, title string) (pageID int64, found bool, err error)
	// Thumbnail returns the page's lead image URL, or "" when the page has
	// none.
	Thumbnail(ctx context.Context, pageID int64, size int) (string, error)
	// ListImages returns the file titles embedded in the page.
	ListImages(ctx context.Context, pageID int64) ([]string, error)
	// ImageInfo fetches URL and dimensions for one file title.
	ImageInfo(ctx context.Context, fileTitle string) (ImageMeta, error)
}

// DisabledGenerativeProvider rejects every request. It stands in when no
// model credentials are configured, which only test-mode deployments allow.
type DisabledGenerativeProvider struct{}

var _ GenerativeModelProvider = DisabledGenerativeProvider{}

func (DisabledGenerativeProvider) DiscoverLandmarks(context.Context, types.GeoQuery, types.LocationInfo, int) ([]types.Landmark, error) {
	return nil, types.NewProviderError("gemini", "not configured", nil)
}

func (DisabledGenerativeProvider) CurateLandmarks(context.Context, types.GeoQuery, types.LocationInfo, []string, int, int) (*Curation, error) {
	return nil, types.NewProviderError("gemini", "not configured", nil)
}

func (DisabledGenerativeProvider) ResolveLocation(context.Context, string, string) (types.Landmark, error) {
	return types.Landmark{}, types.NewProviderError("gemini", "not configured", nil)
}
