package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/trip-planner/internal/application/planner"
	"github.com/example/trip-planner/internal/application/usecases"
	"github.com/example/trip-planner/internal/domain/trip"
)

type stubProvider struct {
	name    string
	pool    []trip.Candidate
	pingErr error
}

func (s stubProvider) Name() string                   { return s.name }
func (s stubProvider) Ping(ctx context.Context) error { return s.pingErr }
func (s stubProvider) SearchFlights(ctx context.Context, q trip.FlightQuery) ([]trip.Candidate, error) {
	return s.pool, nil
}
func (s stubProvider) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.Candidate, error) {
	return s.pool, nil
}

type stubExtractor struct {
	req  trip.Request
	err  error
	text string
}

func (s *stubExtractor) Extract(ctx context.Context, text string, today time.Time) (trip.Request, error) {
	s.text = text
	return s.req, s.err
}

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func planTrip() usecases.PlanTrip {
	return usecases.PlanTrip{
		Planner: &planner.Loop{
			Flights: stubProvider{name: "f", pool: []trip.Candidate{{ProviderID: "a", Cost: 200}, {ProviderID: "b", Cost: 250}}},
			Hotels:  stubProvider{name: "h", pool: []trip.Candidate{{ProviderID: "h", Cost: 150}}},
		},
		Now: func() time.Time { return now },
	}
}

func TestPlanTrip(t *testing.T) {
	res, err := planTrip().Execute(context.Background(), trip.Request{
		Origin:        "sfo",
		Destination:   "JFK",
		DepartureDate: now.AddDate(0, 0, 10),
		ReturnDate:    now.AddDate(0, 0, 14),
		TotalBudget:   700,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "SFO", res.Request.Origin)
	assert.Equal(t, trip.KindComplete, res.Outcome.Kind())
	assert.Equal(t, 2, res.Turns)
	assert.Equal(t, 1, res.Rounds)
	assert.Len(t, res.History, 3)
}

func TestPlanTrip_RejectsPastDeparture(t *testing.T) {
	_, err := planTrip().Execute(context.Background(), trip.Request{
		Origin:        "SFO",
		Destination:   "JFK",
		DepartureDate: now.AddDate(0, 0, -1),
		ReturnDate:    now.AddDate(0, 0, 3),
		TotalBudget:   700,
	})
	assert.ErrorIs(t, err, trip.ErrInvalidRequest)
}

func TestPlanFromText_FillsReturnDate(t *testing.T) {
	ex := &stubExtractor{req: trip.Request{
		Origin:        "SFO",
		Destination:   "JFK",
		DepartureDate: now.AddDate(0, 0, 7),
		TotalBudget:   700,
	}}
	res, err := usecases.PlanFromText{Extractor: ex, Plan: planTrip()}.Execute(context.Background(), "sf to nyc next week")
	require.NoError(t, err)
	assert.Equal(t, "sf to nyc next week", ex.text)
	assert.Equal(t, now.AddDate(0, 0, 7+trip.DefaultNights), res.Request.ReturnDate)
}

func TestPlanFromText_ExtractorError(t *testing.T) {
	ex := &stubExtractor{err: errors.New("model said no")}
	_, err := usecases.PlanFromText{Extractor: ex, Plan: planTrip()}.Execute(context.Background(), "?")
	assert.ErrorContains(t, err, "extract intent")

	_, err = usecases.PlanFromText{Plan: planTrip()}.Execute(context.Background(), "?")
	assert.Error(t, err)
}

func TestPingProviders(t *testing.T) {
	ok := usecases.PingProviders{Flights: stubProvider{name: "f"}, Hotels: stubProvider{name: "h"}}
	assert.NoError(t, ok.Execute(context.Background()))

	bad := usecases.PingProviders{
		Flights: stubProvider{name: "amadeus", pingErr: trip.ErrProviderUnavailable},
		Hotels:  stubProvider{name: "h"},
	}
	err := bad.Execute(context.Background())
	assert.ErrorIs(t, err, trip.ErrProviderUnavailable)
	assert.ErrorContains(t, err, "amadeus")
}
