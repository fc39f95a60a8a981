package trip

import (
	"math"
	"sort"
	"time"
)

type Component string

const (
	ComponentFlights Component = "flights"
	ComponentHotels  Component = "hotels"
)

func (c Component) Other() Component {
	if c == ComponentFlights {
		return ComponentHotels
	}
	return ComponentFlights
}

// Candidate is one priced option returned by a provider. Details holds display
// fields (airline, hotel name, times). Planning reads only a flight's
// "direction" and "departure".
type Candidate struct {
	Cost       float64           `json:"cost" yaml:"cost"`
	ProviderID string            `json:"provider_id" yaml:"id"`
	Details    map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Pool is a cost-ascending list of candidates for one component.
type Pool []Candidate

// NewPool copies cs and sorts the copy by cost. Equal costs keep provider order.
func NewPool(cs []Candidate) Pool {
	p := make(Pool, len(cs))
	copy(p, cs)
	sort.SliceStable(p, func(i, j int) bool { return p[i].Cost < p[j].Cost })
	return p
}

// Within returns the prefix of p whose costs do not exceed ceiling.
func (p Pool) Within(ceiling float64) Pool {
	n := sort.Search(len(p), func(i int) bool { return p[i].Cost > ceiling })
	return p[:n]
}

type Selection struct {
	Flights []Candidate `json:"flights"`
	Hotel   *Candidate  `json:"hotel"`
}

func (s Selection) FlightCost() float64 {
	return roundCents(s.flightSum())
}

func (s Selection) flightSum() float64 {
	var t float64
	for _, f := range s.Flights {
		t += f.Cost
	}
	return t
}

func (s Selection) HotelCost() float64 {
	if s.Hotel == nil {
		return 0
	}
	return s.Hotel.Cost
}

// Request is the structured input of one planning session.
type Request struct {
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departure_date"`
	ReturnDate    time.Time `json:"return_date"`
	TotalBudget   float64   `json:"total_budget"`
	Strategy      Strategy  `json:"strategy"`
	Adults        int       `json:"adults"`
	PreferRedEyes bool      `json:"prefer_red_eyes"`
}

// CheckOut is the hotel check-out date: the return date, or DefaultNights
// after departure for one-way requests.
func (r Request) CheckOut() time.Time {
	if r.ReturnDate.IsZero() {
		return r.DepartureDate.AddDate(0, 0, DefaultNights)
	}
	return r.ReturnDate
}

const DefaultNights = 2

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
