package trip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/trip-planner/internal/domain/trip"
)

func leg(id, direction string, cost float64, departure string) trip.Candidate {
	d := map[string]string{"direction": direction}
	if departure != "" {
		d["departure"] = departure
	}
	return trip.Candidate{ProviderID: id, Cost: cost, Details: d}
}

func ids(cs []trip.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ProviderID)
	}
	return out
}

func TestCandidate_RedEye(t *testing.T) {
	tests := []struct {
		departure string
		want      bool
	}{
		{"2026-11-02T21:00:00", true},
		{"2026-11-02T23:45", true},
		{"2026-11-02 04:59", true},
		{"00:15", true},
		{"2026-11-02T05:00:00", false},
		{"2026-11-02T20:59", false},
		{"12:30", false},
		{"", false},
		{"late", false},
	}
	for _, tt := range tests {
		t.Run(tt.departure, func(t *testing.T) {
			c := leg("x", trip.DirectionOutbound, 100, tt.departure)
			assert.Equal(t, tt.want, c.RedEye())
		})
	}
}

func TestSortFlights_RedEyeBreaksCostTies(t *testing.T) {
	cs := []trip.Candidate{
		leg("day", trip.DirectionOutbound, 200, "2026-11-02T09:00"),
		leg("cheap", trip.DirectionOutbound, 150, "2026-11-02T10:00"),
		leg("night", trip.DirectionOutbound, 200, "2026-11-02T23:30"),
	}

	trip.SortFlights(cs, false)
	assert.Equal(t, []string{"cheap", "day", "night"}, ids(cs))

	trip.SortFlights(cs, true)
	assert.Equal(t, []string{"cheap", "night", "day"}, ids(cs))
}

func TestEvaluate_SelectsOutboundThenReturn(t *testing.T) {
	out := trip.Evaluate(trip.Evaluation{
		Flights: trip.Pool{
			leg("out-100", trip.DirectionOutbound, 100, ""),
			leg("out-110", trip.DirectionOutbound, 110, ""),
			leg("ret-300", trip.DirectionReturn, 300, ""),
			leg("ret-290", trip.DirectionReturn, 290, ""),
		},
		Hotels:      cands("h", 200),
		TotalBudget: 1000,
		Split:       even(),
		Round:       1,
	})

	c, ok := out.(trip.Complete)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, []string{"out-100", "ret-290"}, ids(c.Selection.Flights))
	assert.Equal(t, 590.0, c.TotalCost)
	assert.Equal(t, 410.0, c.RemainingBudget)
}

func TestEvaluate_OutboundComesFirstEvenWhenReturnIsCheaper(t *testing.T) {
	out := trip.Evaluate(trip.Evaluation{
		Flights: trip.Pool{
			leg("out-100", trip.DirectionOutbound, 100, ""),
			leg("out-110", trip.DirectionOutbound, 110, ""),
			leg("ret-90", trip.DirectionReturn, 90, ""),
		},
		Hotels:      cands("h", 200),
		TotalBudget: 1000,
		Split:       even(),
		Round:       1,
	})

	c, ok := out.(trip.Complete)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, []string{"out-100", "ret-90"}, ids(c.Selection.Flights))
}

func TestEvaluate_MissingReturnLegAsksForMoreFlights(t *testing.T) {
	out := trip.Evaluate(trip.Evaluation{
		Flights: trip.Pool{
			leg("out-100", trip.DirectionOutbound, 100, ""),
			leg("out-110", trip.DirectionOutbound, 110, ""),
		},
		Hotels:      cands("h", 200),
		TotalBudget: 1000,
		Split:       even(),
		Round:       1,
	})

	m, ok := out.(trip.NeedMoreOptions)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, trip.ComponentFlights, m.Component)
}

func TestEvaluate_BoundedReturnLegIsFiltered(t *testing.T) {
	out := trip.Evaluate(trip.Evaluation{
		Flights: trip.Pool{
			leg("out-100", trip.DirectionOutbound, 100, ""),
			leg("out-110", trip.DirectionOutbound, 110, ""),
			leg("ret-600", trip.DirectionReturn, 600, ""),
		},
		Hotels:         cands("h", 200),
		TotalBudget:    1000,
		Split:          even(),
		FlightsBounded: true,
		Round:          2,
	})

	m, ok := out.(trip.NeedMoreOptions)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, trip.ComponentFlights, m.Component)
}

func TestEvaluate_CheaperAlternativeMustCoverTheSameLeg(t *testing.T) {
	// The 350 return undercuts the 400 outbound but not the 300 return.
	out := trip.Evaluate(trip.Evaluation{
		Flights: trip.Pool{
			leg("out-400", trip.DirectionOutbound, 400, ""),
			leg("ret-300", trip.DirectionReturn, 300, ""),
			leg("ret-350", trip.DirectionReturn, 350, ""),
		},
		Hotels:      cands("h", 100),
		TotalBudget: 700,
		Split:       even(),
		Round:       1,
	})

	n, ok := out.(trip.NeedCheaperOptions)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, trip.ComponentHotels, n.Component)
	assert.Equal(t, trip.ComponentFlights, n.Pinned.Component)
	assert.Equal(t, []string{"out-400", "ret-300"}, ids(n.Pinned.Flights))
}

func TestEvaluate_CheaperOutboundLowersFlights(t *testing.T) {
	out := trip.Evaluate(trip.Evaluation{
		Flights: trip.Pool{
			leg("out-400", trip.DirectionOutbound, 400, ""),
			leg("out-450", trip.DirectionOutbound, 450, ""),
			leg("ret-300", trip.DirectionReturn, 300, ""),
		},
		PinnedFlights: []trip.Candidate{
			leg("out-450", trip.DirectionOutbound, 450, ""),
			leg("ret-300", trip.DirectionReturn, 300, ""),
		},
		Hotels:      cands("h", 100),
		TotalBudget: 700,
		Split:       even(),
		Round:       2,
	})

	n, ok := out.(trip.NeedCheaperOptions)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, trip.ComponentFlights, n.Component)
	assert.Equal(t, trip.ComponentHotels, n.Pinned.Component)
}

func TestEvaluate_SubCentOverageIsNotComplete(t *testing.T) {
	out := trip.Evaluate(trip.Evaluation{
		Flights:     cands("f", 200.002, 200.002),
		Hotels:      cands("h", 300.004),
		TotalBudget: 700,
		Split:       even(),
		Round:       1,
	})

	_, ok := out.(trip.Complete)
	assert.False(t, ok, "got %T", out)
}

func TestEvaluate_FloatSumAtBudgetIsComplete(t *testing.T) {
	out := trip.Evaluate(trip.Evaluation{
		Flights:     cands("f", 100.1, 100.2),
		Hotels:      cands("h", 499.7),
		TotalBudget: 700,
		Split:       even(),
		Round:       1,
	})

	c, ok := out.(trip.Complete)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, 700.0, c.TotalCost)
	assert.Equal(t, 0.0, c.RemainingBudget)
}

func TestEvaluate_PreferRedEyesPicksNightFlightOnTie(t *testing.T) {
	in := trip.Evaluation{
		Flights: trip.Pool{
			leg("out-day", trip.DirectionOutbound, 200, "2026-11-02T09:00"),
			leg("out-night", trip.DirectionOutbound, 200, "2026-11-02T22:15"),
			leg("ret", trip.DirectionReturn, 150, "2026-11-06T12:00"),
		},
		Hotels:      cands("h", 200),
		TotalBudget: 1000,
		Split:       even(),
		Round:       1,
	}

	c, ok := trip.Evaluate(in).(trip.Complete)
	require.True(t, ok)
	assert.Equal(t, []string{"out-day", "ret"}, ids(c.Selection.Flights))

	in.PreferRedEyes = true
	c, ok = trip.Evaluate(in).(trip.Complete)
	require.True(t, ok)
	assert.Equal(t, []string{"out-night", "ret"}, ids(c.Selection.Flights))
	assert.Equal(t, "out-day", in.Flights[0].ProviderID)
}
