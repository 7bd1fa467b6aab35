package types

// SourceType identifies which pipeline pass produced a result set.
type SourceType string

const (
	// SourceTest marks fixture data returned when test mode is enabled.
	SourceTest SourceType = "test"
	// SourceGPTSelect marks a curated set: picked from a places result plus
	// freshly generated additions.
	SourceGPTSelect SourceType = "gpt_select"
	// SourceWithGPT marks a set produced entirely by generative discovery.
	SourceWithGPT SourceType = "with_gpt"
	// SourceNearbyPlaces marks a raw places search result awaiting curation.
	SourceNearbyPlaces SourceType = "nearby_places"
)

// Curated reports whether the set was produced or refined by the generative
// model. Only curated and test sets are written to the cache by the search
// path.
func (s SourceType) Curated() bool {
	return s == SourceGPTSelect || s == SourceWithGPT
}

// Coordinates is a [latitude, longitude] pair. The array form matches the
// wire shape used in cache entries and API responses.
type Coordinates [2]float64

func (c Coordinates) Lat() float64 { return c[0] }
func (c Coordinates) Lon() float64 { return c[1] }

// GeoQuery is a normalized landmark request: a point plus a search radius
// in kilometers. SkipCache forces a cache bypass for this request only.
type GeoQuery struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius"`
	SkipCache bool    `json:"-"`
}

func (q GeoQuery) Point() Coordinates {
	return Coordinates{q.Latitude, q.Longitude}
}

// Landmark is a single point of interest. Name and coordinates are always
// present; the remaining fields depend on which source produced the item.
// Local carries the name in the local language when it differs from Name.
type Landmark struct {
	Name        string  `json:"name"`
	Local       string  `json:"local,omitempty"`
	AltName     string  `json:"altName,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description,omitempty"`
	Address     string  `json:"address,omitempty"`
	Type        string  `json:"type,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	PhotoRef    string  `json:"photoReference,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

func (l Landmark) Point() Coordinates {
	return Coordinates{l.Latitude, l.Longitude}
}

// LandmarkResultSet is the unit of aggregation and of caching: the landmarks
// found for one location, tagged with the source that produced them.
// Timestamp is epoch milliseconds at production time.
type LandmarkResultSet struct {
	LocationName string      `json:"locationName"`
	Coordinates  Coordinates `json:"coordinates"`
	Landmarks    []Landmark  `json:"landmarks"`
	SourceType   SourceType  `json:"sourceType"`
	Timestamp    int64       `json:"timestamp"`
}

// LocationInfo is the useful part of a reverse-geocode answer.
type LocationInfo struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}

// LocationAnswer is the outcome of a text query: the resolved place and the
// pass (1 = geocode, 2 = places text search, 3 = generative) that found it.
type LocationAnswer struct {
	Query       string      `json:"query"`
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Pass        int         `json:"pass"`
}

// CacheStats summarizes one purge enumeration of the proximity cache.
type CacheStats struct {
	Entries        int     `json:"entries"`
	Locations      int     `json:"locations"`
	TTLHours       float64 `json:"ttlHours"`
	ExpiredRemoved int     `json:"expiredRemoved"`
	TotalBytes     int64   `json:"totalBytes"`
}
