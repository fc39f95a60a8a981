// Package codes maps destination labels, airports and carriers to IATA codes
// and display names.
package codes

import (
	"regexp"
	"strings"
)

type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PresetAirports are the home airports offered by the web form.
var PresetAirports = []Airport{
	{Code: "SFO", Name: "San Francisco (SFO)"},
	{Code: "LAX", Name: "Los Angeles (LAX)"},
	{Code: "JFK", Name: "New York JFK (JFK)"},
	{Code: "ORD", Name: "Chicago O'Hare (ORD)"},
	{Code: "DFW", Name: "Dallas/Fort Worth (DFW)"},
	{Code: "SEA", Name: "Seattle (SEA)"},
	{Code: "MIA", Name: "Miami (MIA)"},
	{Code: "DEN", Name: "Denver (DEN)"},
	{Code: "ATL", Name: "Atlanta (ATL)"},
	{Code: "BOS", Name: "Boston (BOS)"},
}

type destination struct {
	label   string
	airport string
	city    string
}

var destinations = []destination{
	{"New York City", "JFK", "NYC"},
	{"Miami", "MIA", "MIA"},
	{"Los Angeles", "LAX", "LAX"},
	{"Orlando", "MCO", "ORL"},
	{"San Francisco", "SFO", "SFO"},
	{"Las Vegas", "LAS", "LAS"},
	{"Washington D.C.", "IAD", "WAS"},
	{"Chicago", "ORD", "CHI"},
	{"Honolulu", "HNL", "HNL"},
	{"Boston", "BOS", "BOS"},
	{"Vancouver", "YVR", "YVR"},
	{"Toronto", "YYZ", "YTO"},
	{"Montreal", "YUL", "YMQ"},
	{"San Diego", "SAN", "SAN"},
	{"Seattle", "SEA", "SEA"},
	{"New Orleans", "MSY", "MSY"},
	{"Austin", "AUS", "AUS"},
	{"Nashville", "BNA", "BNA"},
	{"Savannah", "SAV", "SAV"},
	{"Philadelphia", "PHL", "PHL"},
	{"San Antonio", "SAT", "SAT"},
	{"Denver", "DEN", "DEN"},
	{"Charleston", "CHS", "CHS"},
	{"Atlanta", "ATL", "ATL"},
	{"Houston", "IAH", "HOU"},
	{"Dallas", "DFW", "DFW"},
}

var airportToCity = map[string]string{
	"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
	"ORD": "CHI", "MDW": "CHI",
	"DCA": "WAS", "IAD": "WAS", "BWI": "WAS",
	"SFO": "SFO", "OAK": "SFO", "SJC": "SFO",
	"DFW": "DFW", "DAL": "DFW",
	"IAH": "HOU", "HOU": "HOU",
	"MIA": "MIA", "FLL": "MIA", "PBI": "MIA",
	"MCO": "ORL", "SFB": "ORL",
	"YYZ": "YTO", "YUL": "YMQ",
}

var airlines = map[string]string{
	"UA": "United Airlines",
	"F9": "Frontier Airlines",
	"AA": "American Airlines",
	"DL": "Delta Air Lines",
	"WN": "Southwest Airlines",
	"AS": "Alaska Airlines",
	"B6": "JetBlue",
	"AC": "Air Canada",
	"WS": "WestJet",
	"AY": "Finnair",
	"NK": "Spirit Airlines",
	"HA": "Hawaiian Airlines",
}

var iataPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Destinations lists the labels offered by the web form.
func Destinations() []string {
	out := make([]string, 0, len(destinations))
	for _, d := range destinations {
		out = append(out, d.label)
	}
	return out
}

func lookup(label string) (destination, bool) {
	for _, d := range destinations {
		if strings.EqualFold(d.label, label) {
			return d, true
		}
	}
	return destination{}, false
}

// IsCode reports whether s looks like a three-letter IATA code.
func IsCode(s string) bool {
	return iataPattern.MatchString(strings.TrimSpace(s))
}

// ResolveAirport resolves a destination label or code to the airport used for
// flight searches. ok is false when s is neither a known label nor a code.
func ResolveAirport(s string) (code string, ok bool) {
	s = strings.TrimSpace(s)
	if d, found := lookup(s); found {
		return d.airport, true
	}
	if IsCode(s) {
		return strings.ToUpper(s), true
	}
	return "", false
}

// ResolveCity resolves a destination label, airport code or city code to the
// IATA city code used for hotel searches.
func ResolveCity(s string) (code string, ok bool) {
	s = strings.TrimSpace(s)
	if d, found := lookup(s); found {
		return d.city, true
	}
	if !IsCode(s) {
		return "", false
	}
	c := strings.ToUpper(s)
	if city, found := airportToCity[c]; found {
		return city, true
	}
	return c, true
}

// CityOfAirport maps an airport to its city code, or returns the airport itself.
func CityOfAirport(airport string) string {
	a := strings.ToUpper(strings.TrimSpace(airport))
	if c, ok := airportToCity[a]; ok {
		return c
	}
	return a
}

func AirlineName(code string) string {
	if n, ok := airlines[strings.ToUpper(code)]; ok {
		return n
	}
	if code == "" {
		return "Unknown Carrier"
	}
	return code
}
