// Package fixtures serves flight and hotel offers from a YAML file. The same
// file format feeds the Postgres inventory.
package fixtures

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/trip-planner/internal/domain/trip"
	"github.com/example/trip-planner/internal/infrastructure/codes"
)

// Offer is one priced flight leg or hotel stay.
type Offer struct {
	ID string `yaml:"id"`

	// Flights: airports. Hotels: City only.
	Origin      string `yaml:"origin,omitempty"`
	Destination string `yaml:"destination,omitempty"`
	City        string `yaml:"city,omitempty"`

	// Date is the departure or check-in date (YYYY-MM-DD). Empty matches any date.
	Date string `yaml:"date,omitempty"`

	Cost       float64           `yaml:"cost"`
	Details    map[string]string `yaml:"details,omitempty"`
	ValidUntil *time.Time        `yaml:"valid_until,omitempty"`
}

type File struct {
	Flights []Offer `yaml:"flights"`
	Hotels  []Offer `yaml:"hotels"`
}

func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("fixtures: %w", err)
	}
	return f, f.Validate()
}

func (f File) Validate() error {
	seen := map[string]bool{}
	check := func(kind string, o Offer) error {
		if o.ID == "" {
			return fmt.Errorf("fixtures: %s offer without id", kind)
		}
		if seen[o.ID] {
			return fmt.Errorf("fixtures: duplicate offer id %q", o.ID)
		}
		seen[o.ID] = true
		if o.Cost < 0 {
			return fmt.Errorf("fixtures: offer %q has negative cost", o.ID)
		}
		if o.Date != "" {
			if _, err := time.Parse(trip.DateLayout, o.Date); err != nil {
				return fmt.Errorf("fixtures: offer %q date %q must be YYYY-MM-DD", o.ID, o.Date)
			}
		}
		return nil
	}
	for _, o := range f.Flights {
		if o.Origin == "" || o.Destination == "" {
			return fmt.Errorf("fixtures: flight %q needs origin and destination", o.ID)
		}
		if err := check("flight", o); err != nil {
			return err
		}
	}
	for _, o := range f.Hotels {
		if o.City == "" {
			return fmt.Errorf("fixtures: hotel %q needs city", o.ID)
		}
		if err := check("hotel", o); err != nil {
			return err
		}
	}
	return nil
}

// Provider answers searches from an in-memory File.
type Provider struct {
	file File
	now  func() time.Time
}

func NewProvider(f File) *Provider {
	return &Provider{file: f, now: time.Now}
}

func (p *Provider) Name() string                   { return "fixtures" }
func (p *Provider) Ping(ctx context.Context) error { return nil }

func (p *Provider) SearchFlights(ctx context.Context, q trip.FlightQuery) ([]trip.Candidate, error) {
	origin := strings.ToUpper(strings.TrimSpace(q.Origin))
	dest := AirportOf(q.Destination)
	var out []trip.Candidate
	for _, o := range p.file.Flights {
		if !p.live(o) || !within(o.Cost, q.MaxBudget) {
			continue
		}
		switch {
		case strings.EqualFold(o.Origin, origin) && strings.EqualFold(o.Destination, dest) && onDate(o.Date, q.DepartureDate):
			out = append(out, o.candidate(trip.DirectionOutbound))
		case !q.ReturnDate.IsZero() && strings.EqualFold(o.Origin, dest) && strings.EqualFold(o.Destination, origin) && onDate(o.Date, q.ReturnDate):
			out = append(out, o.candidate(trip.DirectionReturn))
		}
	}
	trip.SortFlights(out, q.PreferRedEyes)
	return out, nil
}

func (p *Provider) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.Candidate, error) {
	city := CityOf(q.Destination)
	var out []trip.Candidate
	for _, o := range p.file.Hotels {
		if !p.live(o) || !within(o.Cost, q.MaxBudget) {
			continue
		}
		if strings.EqualFold(o.City, city) && onDate(o.Date, q.CheckIn) {
			out = append(out, o.candidate(""))
		}
	}
	return sorted(out), nil
}

func (p *Provider) live(o Offer) bool {
	return o.ValidUntil == nil || o.ValidUntil.After(p.now())
}

func (o Offer) candidate(direction string) trip.Candidate {
	details := make(map[string]string, len(o.Details)+1)
	for k, v := range o.Details {
		details[k] = v
	}
	if direction != "" {
		details["direction"] = direction
		details["from"] = o.Origin
		details["to"] = o.Destination
	}
	return trip.Candidate{Cost: o.Cost, ProviderID: o.ID, Details: details}
}

// AirportOf resolves a destination label or code to an airport code, falling
// back to the upper-cased input.
func AirportOf(dest string) string {
	if c, ok := codes.ResolveAirport(dest); ok {
		return c
	}
	return strings.ToUpper(strings.TrimSpace(dest))
}

// CityOf resolves a destination label or code to a city code, falling back
// to the upper-cased input.
func CityOf(dest string) string {
	if c, ok := codes.ResolveCity(dest); ok {
		return c
	}
	return strings.ToUpper(strings.TrimSpace(dest))
}

func onDate(date string, want time.Time) bool {
	return date == "" || date == want.Format(trip.DateLayout)
}

func within(cost float64, ceiling *float64) bool {
	return ceiling == nil || cost <= *ceiling
}

func sorted(cs []trip.Candidate) []trip.Candidate {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Cost < cs[j].Cost })
	return cs
}
