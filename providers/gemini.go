package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/landmark-scout/api-go/types"
)

const discoverPrompt = `List %d notable landmarks, monuments or points of interest within about %.0f km of latitude %.4f, longitude %.4f (%s).
Respond with a JSON array only, no prose. Each element: {"name": string, "local": string (name in the local language, omit if identical), "altName": string (alternate or historical name, omit if none), "latitude": number, "longitude": number, "description": string (one sentence)}.
Use real places with accurate coordinates.`

const curatePrompt = `From this list of places near %s: %s
1. Pick the %d most interesting for a traveler. Return their names exactly as given.
2. Add %d additional real landmarks within about %.0f km of latitude %.4f, longitude %.4f that are NOT in the list.
Respond with a JSON object only, no prose: {"picked": [string], "generated": [{"name": string, "local": string (name in the local language, omit if identical), "latitude": number, "longitude": number, "description": string}]}.`

const resolvePrompt = `Identify the real-world location described by: "%s"%s
Respond with a JSON object only, no prose: {"name": string, "latitude": number, "longitude": number}.`

// GeminiProvider implements GenerativeModelProvider on the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

var _ GenerativeModelProvider = (*GeminiProvider)(nil)

func NewGeminiProvider(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, types.NewProviderError("gemini", "client init", err)
	}
	return &GeminiProvider{client: client, model: model, log: log}, nil
}

type geminiLandmark struct {
	Name        string  `json:"name"`
	Local       string  `json:"local"`
	AltName     string  `json:"altName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
}

func (p *GeminiProvider) DiscoverLandmarks(ctx context.Context, q types.GeoQuery, loc types.LocationInfo, count int) ([]types.Landmark, error) {
	area := loc.Name
	if loc.Country != "" {
		area += ", " + loc.Country
	}
	if area == "" {
		area = "this area"
	}
	prompt := fmt.Sprintf(discoverPrompt, count, q.RadiusKm, q.Latitude, q.Longitude, area)

	raw, err := p.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var items []geminiLandmark
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &items); err != nil {
		return nil, types.NewProviderError("gemini", "parse discovery response", err)
	}
	return mapGeminiLandmarks(items), nil
}

func (p *GeminiProvider) CurateLandmarks(ctx context.Context, q types.GeoQuery, loc types.LocationInfo, names []string, pick, generate int) (*Curation, error) {
	area := loc.Name
	if area == "" {
		area = fmt.Sprintf("%.4f, %.4f", q.Latitude, q.Longitude)
	}
	prompt := fmt.Sprintf(curatePrompt, area, strings.Join(names, "; "), pick, generate, q.RadiusKm, q.Latitude, q.Longitude)

	raw, err := p.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var answer struct {
		Picked    []string         `json:"picked"`
		Generated []geminiLandmark `json:"generated"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &answer); err != nil {
		return nil, types.NewProviderError("gemini", "parse curation response", err)
	}
	return &Curation{
		Picked:    answer.Picked,
		Generated: mapGeminiLandmarks(answer.Generated),
	}, nil
}

func (p *GeminiProvider) ResolveLocation(ctx context.Context, text, hint string) (types.Landmark, error) {
	hintPart := ""
	if hint != "" {
		hintPart = fmt.Sprintf("\nA related place search suggested: %s.", hint)
	}
	prompt := fmt.Sprintf(resolvePrompt, text, hintPart)

	raw, err := p.generate(ctx, prompt)
	if err != nil {
		return types.Landmark{}, err
	}

	var item geminiLandmark
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &item); err != nil {
		return types.Landmark{}, types.NewProviderError("gemini", "parse location response", err)
	}
	if item.Name == "" {
		return types.Landmark{}, types.NewProviderError("gemini", "empty location answer", nil)
	}
	return types.Landmark{Name: item.Name, Latitude: item.Latitude, Longitude: item.Longitude}, nil
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.7),
		ResponseMIMEType: "application/json",
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", types.NewProviderError("gemini", "generate content", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", types.NewProviderError("gemini", "empty response", nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	if usage := resp.UsageMetadata; usage != nil {
		p.log.Debug("gemini usage",
			zap.Int32("promptTokens", usage.PromptTokenCount),
			zap.Int32("candidateTokens", usage.CandidatesTokenCount),
			zap.Int32("totalTokens", usage.TotalTokenCount))
	}
	return sb.String(), nil
}

func mapGeminiLandmarks(items []geminiLandmark) []types.Landmark {
	landmarks := make([]types.Landmark, 0, len(items))
	for _, it := range items {
		if it.Name == "" {
			continue
		}
		landmarks = append(landmarks, types.Landmark{
			Name:        it.Name,
			Local:       it.Local,
			AltName:     it.AltName,
			Latitude:    it.Latitude,
			Longitude:   it.Longitude,
			Description: it.Description,
		})
	}
	return landmarks
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around JSON output.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
