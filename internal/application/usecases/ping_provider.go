package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/trip-planner/internal/domain/trip"
)

// PingProviders checks both providers and reports every failure.
type PingProviders struct {
	Flights trip.FlightProvider
	Hotels  trip.HotelProvider
}

func (u PingProviders) Execute(ctx context.Context) error {
	if u.Flights == nil || u.Hotels == nil {
		return fmt.Errorf("provider is nil")
	}
	var errs []error
	if err := u.Flights.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", u.Flights.Name(), err))
	}
	if err := u.Hotels.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", u.Hotels.Name(), err))
	}
	return errors.Join(errs...)
}
