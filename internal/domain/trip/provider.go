package trip

import (
	"context"
	"time"
)

type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    time.Time // zero for one-way
	Adults        int
	// PreferRedEyes orders red-eye departures first among equal costs.
	PreferRedEyes bool

	// MaxBudget caps candidate cost when set. Nil means unconstrained.
	MaxBudget *float64
}

type HotelQuery struct {
	Destination string
	CheckIn     time.Time
	CheckOut    time.Time
	Adults      int

	MaxBudget *float64
}

// FlightProvider returns priced flight legs. A provider that has exhausted its
// retries returns an empty slice and a nil error.
type FlightProvider interface {
	Name() string
	Ping(ctx context.Context) error
	SearchFlights(ctx context.Context, q FlightQuery) ([]Candidate, error)
}

type HotelProvider interface {
	Name() string
	Ping(ctx context.Context) error
	SearchHotels(ctx context.Context, q HotelQuery) ([]Candidate, error)
}
