package trip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/trip-planner/internal/domain/trip"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    trip.Strategy
		wantErr bool
	}{
		{"", trip.StrategyCheapestOverall, false},
		{"cheapest_overall", trip.StrategyCheapestOverall, false},
		{" Splurge_Flight ", trip.StrategySplurgeFlight, false},
		{"splurge_hotel", trip.StrategySplurgeHotel, false},
		{"luxury", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := trip.ParseStrategy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, trip.ErrInvalidStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrategySplits(t *testing.T) {
	want := map[trip.Strategy]trip.BudgetSplit{
		trip.StrategyCheapestOverall: {Flights: 0.5, Hotels: 0.5},
		trip.StrategySplurgeFlight:   {Flights: 0.7, Hotels: 0.3},
		trip.StrategySplurgeHotel:    {Flights: 0.3, Hotels: 0.7},
	}
	for _, s := range trip.Strategies() {
		got, err := s.Split()
		require.NoError(t, err)
		assert.Equal(t, want[s], got, s)
	}
}

func TestBudgetSplit_AdjustmentsStayNormalisedAndBounded(t *testing.T) {
	for _, s := range trip.Strategies() {
		split, err := s.Split()
		require.NoError(t, err)
		// walk far past both bounds in each direction
		for i := 0; i < 40; i++ {
			c := trip.ComponentFlights
			if i%3 == 0 {
				c = trip.ComponentHotels
			}
			if i < 20 {
				split = split.Raise(c)
			} else {
				split = split.Lower(c)
			}
			assert.InDelta(t, 1.0, split.Flights+split.Hotels, 1e-9)
			assert.GreaterOrEqual(t, split.Flights, trip.MinRatio-1e-9)
			assert.LessOrEqual(t, split.Flights, trip.MaxRatio+1e-9)
			assert.GreaterOrEqual(t, split.Hotels, trip.MinRatio-1e-9)
			assert.LessOrEqual(t, split.Hotels, trip.MaxRatio+1e-9)
		}
	}
}

func TestBudgetSplit_ClampsAtCeiling(t *testing.T) {
	s := trip.BudgetSplit{Flights: 0.9, Hotels: 0.1}
	assert.Equal(t, s, s.Raise(trip.ComponentFlights))
	assert.Equal(t, s, s.Lower(trip.ComponentHotels))
}
