// Package multi merges several providers into one candidate pool.
package multi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/domain/trip"
)

// Flights queries every provider in order and concatenates their results.
// Transient failures of one provider are logged and skipped; any other error
// stops the search.
type Flights struct {
	Providers []trip.FlightProvider
	Logger    *zap.Logger
}

func (m *Flights) Name() string {
	names := make([]string, 0, len(m.Providers))
	for _, p := range m.Providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

func (m *Flights) Ping(ctx context.Context) error {
	var errs []error
	for _, p := range m.Providers {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Flights) SearchFlights(ctx context.Context, q trip.FlightQuery) ([]trip.Candidate, error) {
	var out []trip.Candidate
	for _, p := range m.Providers {
		cs, err := p.SearchFlights(ctx, q)
		if err != nil {
			if errors.Is(err, trip.ErrProviderTransient) {
				logger(m.Logger).Warn("flight provider skipped", zap.String("provider", p.Name()), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		out = append(out, cs...)
	}
	return out, nil
}

type Hotels struct {
	Providers []trip.HotelProvider
	Logger    *zap.Logger
}

func (m *Hotels) Name() string {
	names := make([]string, 0, len(m.Providers))
	for _, p := range m.Providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

func (m *Hotels) Ping(ctx context.Context) error {
	var errs []error
	for _, p := range m.Providers {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Hotels) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.Candidate, error) {
	var out []trip.Candidate
	for _, p := range m.Providers {
		cs, err := p.SearchHotels(ctx, q)
		if err != nil {
			if errors.Is(err, trip.ErrProviderTransient) {
				logger(m.Logger).Warn("hotel provider skipped", zap.String("provider", p.Name()), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		out = append(out, cs...)
	}
	return out, nil
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
