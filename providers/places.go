package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/types"
)

const placesBaseURL = "https://maps.googleapis.com/maps/api/place"

// GooglePlacesProvider implements PlacesSearchProvider against the Google
// Places REST API.
type GooglePlacesProvider struct {
	apiKey   string
	language string
	baseURL  string
	client   *http.Client
	log      *zap.Logger
}

var _ PlacesSearchProvider = (*GooglePlacesProvider)(nil)

func NewGooglePlacesProvider(apiKey, language string, log *zap.Logger) *GooglePlacesProvider {
	return &GooglePlacesProvider{
		apiKey:   apiKey,
		language: language,
		baseURL:  placesBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

func (p *GooglePlacesProvider) Nearby(ctx context.Context, q types.GeoQuery, limit int) ([]types.Landmark, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", q.Latitude, q.Longitude))
	params.Set("radius", fmt.Sprintf("%d", int(q.RadiusKm*1000)))
	params.Set("type", "tourist_attraction")
	params.Set("language", p.language)
	params.Set("key", p.apiKey)

	decoded, err := p.get(ctx, "/nearbysearch/json", params)
	if err != nil {
		return nil, err
	}
	landmarks := mapPlaceResults(decoded.Results, limit)
	p.log.Debug("places nearby search",
		zap.Float64("lat", q.Latitude),
		zap.Float64("lon", q.Longitude),
		zap.Int("results", len(landmarks)))
	return landmarks, nil
}

func (p *GooglePlacesProvider) TextSearch(ctx context.Context, text string, bias types.Coordinates) ([]types.Landmark, error) {
	params := url.Values{}
	params.Set("query", text)
	params.Set("location", fmt.Sprintf("%f,%f", bias.Lat(), bias.Lon()))
	params.Set("radius", "50000")
	params.Set("language", p.language)
	params.Set("key", p.apiKey)

	decoded, err := p.get(ctx, "/textsearch/json", params)
	if err != nil {
		return nil, err
	}
	landmarks := mapPlaceResults(decoded.Results, 0)
	p.log.Debug("places text search",
		zap.String("query", text),
		zap.Int("results", len(landmarks)))
	return landmarks, nil
}

func (p *GooglePlacesProvider) get(ctx context.Context, path string, params url.Values) (*types.GooglePlacesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, types.NewProviderError("places", "build request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, types.NewProviderError("places", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewProviderError("places", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var decoded types.GooglePlacesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, types.NewProviderError("places", "decode response", err)
	}

	switch decoded.Status {
	case "OK", "ZERO_RESULTS":
	default:
		reason := decoded.Status
		if decoded.ErrorMessage != "" {
			reason += ": " + decoded.ErrorMessage
		}
		return nil, types.NewProviderError("places", reason, nil)
	}
	return &decoded, nil
}

func mapPlaceResults(results []types.PlaceResult, limit int) []types.Landmark {
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	landmarks := make([]types.Landmark, 0, len(results))
	for _, r := range results {
		lm := types.Landmark{
			Name:      r.Name,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		}
		if r.Vicinity != nil {
			lm.Address = *r.Vicinity
		} else if r.FormattedAddress != "" {
			lm.Address = r.FormattedAddress
		}
		if r.Rating != nil {
			lm.Rating = *r.Rating
		}
		if len(r.Types) > 0 {
			lm.Type = r.Types[0]
		}
		if len(r.Photos) > 0 {
			lm.PhotoRef = r.Photos[0].PhotoReference
		}
		landmarks = append(landmarks, lm)
	}
	return landmarks
}
