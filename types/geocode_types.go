package types

// Wire shapes for the Nominatim search and reverse endpoints. Nominatim
// returns coordinates as strings.

type NominatimResult struct {
	PlaceID     int64            `json:"place_id"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Importance  float64          `json:"importance"`
	Address     NominatimAddress `json:"address"`
}

type NominatimAddress struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	County      string `json:"county"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// Locality picks the most specific populated-place name available.
func (a NominatimAddress) Locality() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	case a.Village != "":
		return a.Village
	case a.County != "":
		return a.County
	}
	return a.State
}
