package services

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/providers"
	"github.com/landmark-scout/api-go/types"
)

// TextQuerySession resolves free-text location queries in three passes:
// plain geocoding, a places text search, then generative resolution with
// the places answer as context. A pass that finds nothing falls through to
// the next within the same call; repeating the identical query string
// advances past the previous pass instead of restarting, so a caller can
// push past a wrong first answer. Any new query resets the session state.
type TextQuerySession struct {
	log    *zap.Logger
	places providers.PlacesSearchProvider
	gen    providers.GenerativeModelProvider
	geo    providers.GeocodingProvider

	mu        sync.Mutex
	lastQuery string
	lastPlace *types.Landmark
	lastCoord *types.Coordinates
}

func NewTextQuerySession(places providers.PlacesSearchProvider, gen providers.GenerativeModelProvider,
	geo providers.GeocodingProvider, log *zap.Logger) *TextQuerySession {
	return &TextQuerySession{
		log:    log,
		places: places,
		gen:    gen,
		geo:    geo,
	}
}

// QueryLocation answers a text query. bias is the caller's current view
// center; preferGenerative jumps straight to the generative pass.
func (s *TextQuerySession) QueryLocation(ctx context.Context, text string, bias types.Coordinates, preferGenerative bool) (*types.LocationAnswer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, types.ErrInvalidInput
	}

	s.mu.Lock()
	repeat := text == s.lastQuery
	if !repeat {
		s.lastQuery = text
		s.lastPlace = nil
		s.lastCoord = nil
	}
	hadPlace := s.lastPlace != nil
	hadCoord := s.lastCoord != nil
	s.mu.Unlock()

	if preferGenerative {
		return s.generativePass(ctx, text)
	}

	startPass := 1
	switch {
	case repeat && hadPlace:
		startPass = 3
	case repeat && hadCoord:
		startPass = 2
	}

	if startPass <= 1 {
		if answer, ok := s.geocodePass(ctx, text); ok {
			return answer, nil
		}
	}
	if startPass <= 2 {
		if answer, ok := s.placesPass(ctx, text, bias); ok {
			return answer, nil
		}
	}
	return s.generativePass(ctx, text)
}

func (s *TextQuerySession) geocodePass(ctx context.Context, text string) (*types.LocationAnswer, bool) {
	point, name, ok, err := s.geo.Forward(ctx, text)
	if err != nil {
		s.log.Warn("text geocode failed", zap.String("query", text), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if name == "" {
		name = text
	}
	s.mu.Lock()
	s.lastCoord = &point
	s.mu.Unlock()
	return &types.LocationAnswer{Query: text, Name: name, Coordinates: point, Pass: 1}, true
}

func (s *TextQuerySession) placesPass(ctx context.Context, text string, bias types.Coordinates) (*types.LocationAnswer, bool) {
	results, err := s.places.TextSearch(ctx, text, bias)
	if err != nil {
		s.log.Warn("places text search failed", zap.String("query", text), zap.Error(err))
		return nil, false
	}
	if len(results) == 0 {
		return nil, false
	}
	top := results[0]
	s.mu.Lock()
	s.lastPlace = &top
	s.mu.Unlock()
	return &types.LocationAnswer{Query: text, Name: top.Name, Coordinates: top.Point(), Pass: 2}, true
}

func (s *TextQuerySession) generativePass(ctx context.Context, text string) (*types.LocationAnswer, error) {
	s.mu.Lock()
	hint := ""
	if s.lastPlace != nil {
		hint = s.lastPlace.Name
		if s.lastPlace.Address != "" {
			hint += " (" + s.lastPlace.Address + ")"
		}
	}
	s.mu.Unlock()

	lm, err := s.gen.ResolveLocation(ctx, text, hint)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastPlace = &lm
	s.mu.Unlock()

	s.log.Debug("generative location answer",
		zap.String("query", text),
		zap.String("name", lm.Name))
	return &types.LocationAnswer{Query: text, Name: lm.Name, Coordinates: lm.Point(), Pass: 3}, nil
}
