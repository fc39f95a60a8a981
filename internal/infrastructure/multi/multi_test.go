package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/trip-planner/internal/domain/trip"
)

type stub struct {
	name string
	cs   []trip.Candidate
	err  error
	ping error
}

func (s stub) Name() string               { return s.name }
func (s stub) Ping(context.Context) error { return s.ping }
func (s stub) SearchFlights(context.Context, trip.FlightQuery) ([]trip.Candidate, error) {
	return s.cs, s.err
}
func (s stub) SearchHotels(context.Context, trip.HotelQuery) ([]trip.Candidate, error) {
	return s.cs, s.err
}

func TestFlights_Merges(t *testing.T) {
	m := &Flights{Providers: []trip.FlightProvider{
		stub{name: "a", cs: []trip.Candidate{{Cost: 300, ProviderID: "a1"}}},
		stub{name: "b", cs: []trip.Candidate{{Cost: 100, ProviderID: "b1"}, {Cost: 200, ProviderID: "b2"}}},
	}}
	assert.Equal(t, "a+b", m.Name())

	cs, err := m.SearchFlights(context.Background(), trip.FlightQuery{})
	require.NoError(t, err)
	assert.Len(t, cs, 3)
}

func TestFlights_SkipsTransient(t *testing.T) {
	m := &Flights{Providers: []trip.FlightProvider{
		stub{name: "a", err: trip.ErrProviderTransient},
		stub{name: "b", cs: []trip.Candidate{{Cost: 100, ProviderID: "b1"}}},
	}}
	cs, err := m.SearchFlights(context.Background(), trip.FlightQuery{})
	require.NoError(t, err)
	assert.Len(t, cs, 1)
}

func TestHotels_PropagatesUnavailable(t *testing.T) {
	m := &Hotels{Providers: []trip.HotelProvider{
		stub{name: "a", cs: []trip.Candidate{{Cost: 100, ProviderID: "a1"}}},
		stub{name: "b", err: trip.ErrProviderUnavailable},
	}}
	_, err := m.SearchHotels(context.Background(), trip.HotelQuery{})
	assert.ErrorIs(t, err, trip.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "b:")
}

func TestPing_JoinsErrors(t *testing.T) {
	m := &Hotels{Providers: []trip.HotelProvider{
		stub{name: "a", ping: errors.New("down")},
		stub{name: "b"},
		stub{name: "c", ping: trip.ErrProviderUnavailable},
	}}
	err := m.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, trip.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "a: down")
}
