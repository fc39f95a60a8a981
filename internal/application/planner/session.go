package planner

import (
	"github.com/example/trip-planner/internal/domain/trip"
)

type State string

const (
	StateInit          State = "init"
	StateSearchFlights State = "search_flights"
	StateSearchHotels  State = "search_hotels"
	StateEvaluate      State = "evaluate"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

func searchState(c trip.Component) State {
	if c == trip.ComponentFlights {
		return StateSearchFlights
	}
	return StateSearchHotels
}

// Step is one entry of a session's history.
type Step struct {
	Turn      int              `json:"turn"`
	Round     int              `json:"round,omitempty"`
	State     State            `json:"state"`
	Component trip.Component   `json:"component,omitempty"`
	Ceiling   *float64         `json:"ceiling,omitempty"`
	Results   int              `json:"results"`
	Outcome   trip.OutcomeKind `json:"outcome,omitempty"`
}

// Session is everything one planning run knows. It is owned by a single
// goroutine and never shared.
type Session struct {
	ID      string
	Request trip.Request
	Split   trip.BudgetSplit

	Flights trip.Pool
	Hotels  trip.Pool

	PinnedFlights []trip.Candidate
	PinnedHotel   *trip.Candidate

	FlightsBounded bool
	HotelsBounded  bool

	Turns  int
	Rounds int
	State  State

	Outcome trip.Outcome
	History []Step

	searched map[trip.Component]bool
}

// NewSession normalizes req and seeds the split from its strategy.
func NewSession(id string, req trip.Request) (*Session, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	split, err := req.Strategy.Split()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:       id,
		Request:  req,
		Split:    split,
		State:    StateInit,
		searched: map[trip.Component]bool{},
	}, nil
}

// ceiling is the component's sub-budget. Only the first flight search runs
// without one.
func (s *Session) ceiling(c trip.Component) *float64 {
	if c == trip.ComponentFlights && !s.searched[c] {
		return nil
	}
	v := s.Split.Budget(c, s.Request.TotalBudget)
	return &v
}

func (s *Session) setPool(c trip.Component, p trip.Pool, bounded bool) {
	s.searched[c] = true
	if c == trip.ComponentFlights {
		s.Flights = p
		s.FlightsBounded = s.FlightsBounded || bounded
		s.PinnedFlights = nil
		return
	}
	s.Hotels = p
	s.HotelsBounded = s.HotelsBounded || bounded
	s.PinnedHotel = nil
}

func (s *Session) pin(p trip.Pin) {
	if p.Component == trip.ComponentFlights {
		s.PinnedFlights = p.Flights
		return
	}
	s.PinnedHotel = p.Hotel
}

func (s *Session) evaluation() trip.Evaluation {
	return trip.Evaluation{
		Flights:        s.Flights,
		Hotels:         s.Hotels,
		TotalBudget:    s.Request.TotalBudget,
		Split:          s.Split,
		PinnedFlights:  s.PinnedFlights,
		PinnedHotel:    s.PinnedHotel,
		FlightsBounded: s.FlightsBounded,
		HotelsBounded:  s.HotelsBounded,
		PreferRedEyes:  s.Request.PreferRedEyes,
		Round:          s.Rounds,
	}
}

func (s *Session) finish(out trip.Outcome) {
	s.Outcome = out
	if out.Kind() == trip.KindComplete {
		s.State = StateDone
		return
	}
	s.State = StateFailed
}
