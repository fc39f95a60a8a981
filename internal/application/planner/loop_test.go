package planner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/example/trip-planner/internal/application/planner"
	"github.com/example/trip-planner/internal/domain/trip"
)

// fakeProvider serves scripted responses per call, falling back to pool, and
// applies the ceiling like a real provider would.
type fakeProvider struct {
	pool      []trip.Candidate
	responses [][]trip.Candidate
	err       error

	calls   []*float64
	queries []trip.FlightQuery
	journal *[]trip.Component
	comp    trip.Component
}

func (f *fakeProvider) Name() string                 { return "fake-" + string(f.comp) }
func (f *fakeProvider) Ping(ctx context.Context) error { return nil }

func (f *fakeProvider) serve(max *float64) ([]trip.Candidate, error) {
	f.calls = append(f.calls, max)
	if f.journal != nil {
		*f.journal = append(*f.journal, f.comp)
	}
	if f.err != nil {
		return nil, f.err
	}
	src := f.pool
	if n := len(f.calls) - 1; n < len(f.responses) {
		src = f.responses[n]
	}
	var out []trip.Candidate
	for _, c := range src {
		if max == nil || c.Cost <= *max {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeProvider) SearchFlights(ctx context.Context, q trip.FlightQuery) ([]trip.Candidate, error) {
	f.queries = append(f.queries, q)
	return f.serve(q.MaxBudget)
}

func (f *fakeProvider) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.Candidate, error) {
	return f.serve(q.MaxBudget)
}

func offers(prefix string, costs ...float64) []trip.Candidate {
	out := make([]trip.Candidate, 0, len(costs))
	for i, c := range costs {
		out = append(out, trip.Candidate{Cost: c, ProviderID: prefix + string(rune('0'+i))})
	}
	return out
}

func request(budget float64) trip.Request {
	return trip.Request{
		Origin:        "SFO",
		Destination:   "New York",
		DepartureDate: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		ReturnDate:    time.Date(2026, 11, 6, 0, 0, 0, 0, time.UTC),
		TotalBudget:   budget,
	}
}

func newLoop(flights, hotels *fakeProvider) (*planner.Loop, *[]trip.Component) {
	var journal []trip.Component
	flights.comp, flights.journal = trip.ComponentFlights, &journal
	hotels.comp, hotels.journal = trip.ComponentHotels, &journal
	return &planner.Loop{Flights: flights, Hotels: hotels}, &journal
}

func TestPlan_CompletesOnFirstRound(t *testing.T) {
	flights := &fakeProvider{pool: offers("f", 200, 250)}
	hotels := &fakeProvider{pool: offers("h", 150)}
	l, journal := newLoop(flights, hotels)

	out, err := l.Plan(context.Background(), request(700))
	require.NoError(t, err)

	c, ok := out.(trip.Complete)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, 600.0, c.TotalCost)
	assert.Equal(t, 100.0, c.RemainingBudget)
	assert.Equal(t, []trip.Component{trip.ComponentFlights, trip.ComponentHotels}, *journal)
	assert.Nil(t, flights.calls[0], "first flight search is unconstrained")
	require.NotNil(t, hotels.calls[0])
	assert.InDelta(t, 350.0, *hotels.calls[0], 1e-9)
}

func TestPlan_FirstHotelSearchUsesHotelSubBudget(t *testing.T) {
	flights := &fakeProvider{pool: offers("f", 100, 100)}
	hotels := &fakeProvider{pool: offers("h", 450)}
	l, _ := newLoop(flights, hotels)

	s, err := planner.NewSession("sess-3", request(700))
	require.NoError(t, err)
	require.NoError(t, l.Run(context.Background(), s))

	require.NotEmpty(t, hotels.calls)
	require.NotNil(t, hotels.calls[0])
	assert.InDelta(t, 350.0, *hotels.calls[0], 1e-9)

	c, ok := s.Outcome.(trip.Complete)
	require.True(t, ok, "got %T", s.Outcome)
	assert.Equal(t, 4, s.Rounds, "hotel share is raised until the 450 offer fits")
	assert.Len(t, hotels.calls, 4)
	assert.InDelta(t, 0.65, c.Split.Hotels, 1e-9)
	assert.Equal(t, 650.0, c.TotalCost)
}

func TestPlan_SelectsOutboundAndReturnLegs(t *testing.T) {
	flights := &fakeProvider{pool: []trip.Candidate{
		{ProviderID: "out-100", Cost: 100, Details: map[string]string{"direction": trip.DirectionOutbound}},
		{ProviderID: "out-110", Cost: 110, Details: map[string]string{"direction": trip.DirectionOutbound}},
		{ProviderID: "ret-300", Cost: 300, Details: map[string]string{"direction": trip.DirectionReturn}},
		{ProviderID: "ret-290", Cost: 290, Details: map[string]string{"direction": trip.DirectionReturn}},
	}}
	hotels := &fakeProvider{pool: offers("h", 200)}
	l, _ := newLoop(flights, hotels)

	out, err := l.Plan(context.Background(), request(1000))
	require.NoError(t, err)

	c, ok := out.(trip.Complete)
	require.True(t, ok, "got %T", out)
	require.Len(t, c.Selection.Flights, 2)
	assert.Equal(t, "out-100", c.Selection.Flights[0].ProviderID)
	assert.Equal(t, "ret-290", c.Selection.Flights[1].ProviderID)
	assert.Equal(t, 590.0, c.TotalCost)
}

func TestPlan_PassesRedEyePreferenceToFlightSearch(t *testing.T) {
	flights := &fakeProvider{pool: []trip.Candidate{
		{ProviderID: "out-day", Cost: 200, Details: map[string]string{"direction": trip.DirectionOutbound, "departure": "2026-11-02T08:00"}},
		{ProviderID: "out-night", Cost: 200, Details: map[string]string{"direction": trip.DirectionOutbound, "departure": "2026-11-02T23:10"}},
		{ProviderID: "ret", Cost: 150, Details: map[string]string{"direction": trip.DirectionReturn, "departure": "2026-11-06T14:00"}},
	}}
	hotels := &fakeProvider{pool: offers("h", 200)}
	l, _ := newLoop(flights, hotels)

	req := request(1000)
	req.PreferRedEyes = true
	out, err := l.Plan(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, flights.queries, 1)
	assert.True(t, flights.queries[0].PreferRedEyes)
	c, ok := out.(trip.Complete)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "out-night", c.Selection.Flights[0].ProviderID)
}

func TestPlan_RequeriesOnlyAdjustedComponent(t *testing.T) {
	flights := &fakeProvider{pool: offers("f", 300, 350)}
	hotels := &fakeProvider{responses: [][]trip.Candidate{offers("h", 500), offers("k", 300, 320)}}
	l, journal := newLoop(flights, hotels)

	out, err := l.Plan(context.Background(), request(1000))
	require.NoError(t, err)

	c, ok := out.(trip.Complete)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, []trip.Component{trip.ComponentFlights, trip.ComponentHotels, trip.ComponentHotels}, *journal)
	require.Len(t, hotels.calls, 2)
	require.NotNil(t, hotels.calls[1])
	assert.InDelta(t, 450.0, *hotels.calls[1], 1e-9)
	assert.Equal(t, offers("f", 300, 350), c.Selection.Flights)
	assert.Equal(t, "k0", c.Selection.Hotel.ProviderID)
	assert.Equal(t, 950.0, c.TotalCost)
	assert.InDelta(t, 0.55, c.Split.Flights, 1e-9)
}

func TestPlan_EmptyFlightsTriggersBoundedFlightSearch(t *testing.T) {
	flights := &fakeProvider{responses: [][]trip.Candidate{nil, offers("f", 100, 120)}}
	hotels := &fakeProvider{pool: offers("h", 150)}
	l, journal := newLoop(flights, hotels)

	out, err := l.Plan(context.Background(), request(500))
	require.NoError(t, err)

	assert.Equal(t, trip.KindComplete, out.Kind())
	assert.Equal(t, []trip.Component{trip.ComponentFlights, trip.ComponentHotels, trip.ComponentFlights}, *journal)
	require.NotNil(t, flights.calls[1])
	assert.InDelta(t, 275.0, *flights.calls[1], 1e-9)
}

func TestPlan_TurnLimit(t *testing.T) {
	flights := &fakeProvider{}
	hotels := &fakeProvider{pool: offers("h", 150)}
	l, journal := newLoop(flights, hotels)
	l.TurnLimit = 3

	out, err := l.Plan(context.Background(), request(500))
	require.NoError(t, err)

	inf, ok := out.(trip.Infeasible)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "turn limit exceeded", inf.Reason)
	assert.ErrorIs(t, inf.Cause, trip.ErrTurnLimitExceeded)
	assert.NotErrorIs(t, inf.Cause, trip.ErrBudgetInfeasible)
	assert.Len(t, *journal, 3)
}

func TestPlan_AllocatorRoundCap(t *testing.T) {
	flights := &fakeProvider{pool: offers("f", 400, 450)}
	hotels := &fakeProvider{pool: offers("h", 300)}
	l, _ := newLoop(flights, hotels)

	s, err := planner.NewSession("sess-1", request(500))
	require.NoError(t, err)
	require.NoError(t, l.Run(context.Background(), s))

	inf, ok := s.Outcome.(trip.Infeasible)
	require.True(t, ok, "got %T", s.Outcome)
	assert.ErrorIs(t, inf.Cause, trip.ErrBudgetInfeasible)
	assert.Equal(t, "no combination within budget after max iterations", inf.Reason)
	assert.Equal(t, trip.MaxRounds, s.Rounds)
	assert.Equal(t, planner.StateFailed, s.State)
	assert.Len(t, flights.calls, 1, "flights stay pinned")
	assert.LessOrEqual(t, s.Turns, planner.DefaultTurnLimit)
}

func TestPlan_ProviderUnavailableIsFatal(t *testing.T) {
	flights := &fakeProvider{err: errors.Join(errors.New("no credentials"), trip.ErrProviderUnavailable)}
	hotels := &fakeProvider{pool: offers("h", 150)}
	l, _ := newLoop(flights, hotels)

	out, err := l.Plan(context.Background(), request(500))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, trip.ErrProviderUnavailable)
	assert.Empty(t, hotels.calls)
}

func TestPlan_OtherProviderErrorFailsSession(t *testing.T) {
	boom := errors.New("bad request")
	flights := &fakeProvider{pool: offers("f", 100, 100)}
	hotels := &fakeProvider{err: boom}
	l, _ := newLoop(flights, hotels)

	out, err := l.Plan(context.Background(), request(500))
	require.NoError(t, err)

	inf, ok := out.(trip.Infeasible)
	require.True(t, ok, "got %T", out)
	assert.ErrorIs(t, inf.Cause, boom)
	assert.Contains(t, inf.Reason, "hotels search failed")
}

func TestPlan_InvalidStrategyIsFatal(t *testing.T) {
	flights := &fakeProvider{}
	hotels := &fakeProvider{}
	l, journal := newLoop(flights, hotels)

	req := request(500)
	req.Strategy = "first_class"
	_, err := l.Plan(context.Background(), req)
	assert.ErrorIs(t, err, trip.ErrInvalidStrategy)
	assert.Empty(t, *journal)
}

func TestPlan_StrategySeedsSplit(t *testing.T) {
	flights := &fakeProvider{pool: offers("f", 200, 250)}
	hotels := &fakeProvider{pool: offers("h", 150)}
	l, _ := newLoop(flights, hotels)

	req := request(700)
	req.Strategy = trip.StrategySplurgeHotel
	out, err := l.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, trip.BudgetSplit{Flights: 0.3, Hotels: 0.7}, out.(trip.Complete).Split)
}

func TestPlan_CancelledContext(t *testing.T) {
	l, _ := newLoop(&fakeProvider{}, &fakeProvider{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Plan(ctx, request(500))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_RecordsHistoryAndSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	flights := &fakeProvider{pool: offers("f", 200, 250)}
	hotels := &fakeProvider{pool: offers("h", 150)}
	l, _ := newLoop(flights, hotels)
	l.Tracer = tp.Tracer("test")

	s, err := planner.NewSession("sess-2", request(700))
	require.NoError(t, err)
	require.NoError(t, l.Run(context.Background(), s))

	require.Len(t, s.History, 3)
	assert.Equal(t, planner.StateSearchFlights, s.History[0].State)
	assert.Equal(t, 2, s.History[0].Results)
	assert.Equal(t, planner.StateSearchHotels, s.History[1].State)
	assert.Equal(t, trip.KindComplete, s.History[2].Outcome)
	assert.Equal(t, planner.StateDone, s.State)

	var names []string
	for _, sp := range exp.GetSpans() {
		names = append(names, sp.Name)
	}
	assert.ElementsMatch(t, []string{"provider.search_flights", "provider.search_hotels", "planner.Plan"}, names)
}
