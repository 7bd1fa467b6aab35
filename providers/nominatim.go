package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/types"
)

// Nominatim's usage policy requires an identifying User-Agent.
const nominatimUserAgent = "landmark-scout/1.0 (+https://github.com/landmark-scout/api-go)"

// NominatimProvider implements GeocodingProvider against a Nominatim
// instance.
type NominatimProvider struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

var _ GeocodingProvider = (*NominatimProvider)(nil)

func NewNominatimProvider(baseURL string, log *zap.Logger) *NominatimProvider {
	return &NominatimProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func (p *NominatimProvider) Reverse(ctx context.Context, c types.Coordinates) (types.LocationInfo, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(c.Lat(), 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(c.Lon(), 'f', -1, 64))
	params.Set("format", "json")
	params.Set("zoom", "10")

	var result types.NominatimResult
	if err := p.get(ctx, "/reverse", params, &result); err != nil {
		return types.LocationInfo{}, err
	}

	name := result.Address.Locality()
	if name == "" {
		name = result.Name
	}
	if name == "" && result.DisplayName != "" {
		name = strings.TrimSpace(strings.SplitN(result.DisplayName, ",", 2)[0])
	}
	if name == "" {
		return types.LocationInfo{}, types.NewProviderError("nominatim", "empty reverse result", nil)
	}

	return types.LocationInfo{
		Name:        name,
		Country:     result.Address.Country,
		CountryCode: result.Address.CountryCode,
	}, nil
}

func (p *NominatimProvider) Forward(ctx context.Context, text string) (types.Coordinates, string, bool, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("format", "json")
	params.Set("limit", "1")

	var results []types.NominatimResult
	if err := p.get(ctx, "/search", params, &results); err != nil {
		return types.Coordinates{}, "", false, err
	}
	if len(results) == 0 {
		return types.Coordinates{}, "", false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return types.Coordinates{}, "", false, types.NewProviderError("nominatim", "parse latitude", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return types.Coordinates{}, "", false, types.NewProviderError("nominatim", "parse longitude", err)
	}

	name := results[0].Name
	if name == "" && results[0].DisplayName != "" {
		name = strings.TrimSpace(strings.SplitN(results[0].DisplayName, ",", 2)[0])
	}
	p.log.Debug("forward geocode", zap.String("query", text), zap.String("name", name))
	return types.Coordinates{lat, lon}, name, true, nil
}

func (p *NominatimProvider) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return types.NewProviderError("nominatim", "build request", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return types.NewProviderError("nominatim", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewProviderError("nominatim", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewProviderError("nominatim", "decode response", err)
	}
	return nil
}
