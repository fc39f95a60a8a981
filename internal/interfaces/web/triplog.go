package web

import (
	"sync"
	"time"

	"github.com/example/trip-planner/internal/application/usecases"
	"github.com/example/trip-planner/internal/domain/trip"
)

const maxTripsPerVisitor = 50

// TripSummary is one entry of a visitor's trip log.
type TripSummary struct {
	ID          string           `json:"trip_id"`
	CreatedAt   time.Time        `json:"created_at"`
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	Departure   string           `json:"departure_date"`
	Return      string           `json:"return_date"`
	Budget      float64          `json:"budget"`
	Strategy    trip.Strategy    `json:"strategy"`
	Status      trip.OutcomeKind `json:"status"`
	TotalCost   float64          `json:"total_cost,omitempty"`
}

// TripLog keeps the most recent plans per visitor in memory.
type TripLog struct {
	mu    sync.Mutex
	trips map[string][]TripSummary
	now   func() time.Time
}

func NewTripLog() *TripLog {
	return &TripLog{trips: map[string][]TripSummary{}, now: time.Now}
}

func (l *TripLog) Add(visitor string, res usecases.Result) TripSummary {
	req := res.Request
	sum := TripSummary{
		ID:          res.ID,
		CreatedAt:   l.now().UTC(),
		Origin:      req.Origin,
		Destination: req.Destination,
		Departure:   req.DepartureDate.Format(trip.DateLayout),
		Return:      req.ReturnDate.Format(trip.DateLayout),
		Budget:      req.TotalBudget,
		Strategy:    req.Strategy,
		Status:      res.Outcome.Kind(),
	}
	if c, ok := res.Outcome.(trip.Complete); ok {
		sum.TotalCost = c.TotalCost
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	list := append(l.trips[visitor], sum)
	if len(list) > maxTripsPerVisitor {
		list = list[len(list)-maxTripsPerVisitor:]
	}
	l.trips[visitor] = list
	return sum
}

// List returns the visitor's trips, newest first.
func (l *TripLog) List(visitor string) []TripSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := l.trips[visitor]
	out := make([]TripSummary, len(list))
	for i, t := range list {
		out[len(list)-1-i] = t
	}
	return out
}
