package trip

import (
	"fmt"
	"math"
	"strings"
)

type Strategy string

const (
	StrategyCheapestOverall Strategy = "cheapest_overall"
	StrategySplurgeFlight   Strategy = "splurge_flight"
	StrategySplurgeHotel    Strategy = "splurge_hotel"
)

// Ratio bounds and step used by every split adjustment.
const (
	MinRatio  = 0.1
	MaxRatio  = 0.9
	RatioStep = 0.05
)

var presets = map[Strategy]BudgetSplit{
	StrategyCheapestOverall: {Flights: 0.5, Hotels: 0.5},
	StrategySplurgeFlight:   {Flights: 0.7, Hotels: 0.3},
	StrategySplurgeHotel:    {Flights: 0.3, Hotels: 0.7},
}

// ParseStrategy accepts a preset name. An empty name selects cheapest_overall.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StrategyCheapestOverall, nil
	}
	st := Strategy(s)
	if _, ok := presets[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
	return st, nil
}

func (s Strategy) Split() (BudgetSplit, error) {
	sp, ok := presets[s]
	if !ok {
		return BudgetSplit{}, fmt.Errorf("%w: %q", ErrInvalidStrategy, string(s))
	}
	return sp, nil
}

func Strategies() []Strategy {
	return []Strategy{StrategyCheapestOverall, StrategySplurgeFlight, StrategySplurgeHotel}
}

// BudgetSplit holds the fractions of the total budget earmarked for each
// component. Flights+Hotels is always 1 and each side stays in [MinRatio, MaxRatio].
type BudgetSplit struct {
	Flights float64 `json:"flights"`
	Hotels  float64 `json:"hotels"`
}

func (b BudgetSplit) Ratio(c Component) float64 {
	if c == ComponentFlights {
		return b.Flights
	}
	return b.Hotels
}

// Budget is the component's share of total, in currency units.
func (b BudgetSplit) Budget(c Component, total float64) float64 {
	return roundCents(b.Ratio(c) * total)
}

func (b BudgetSplit) Raise(c Component) BudgetSplit {
	return b.with(c, b.Ratio(c)+RatioStep)
}

func (b BudgetSplit) Lower(c Component) BudgetSplit {
	return b.with(c, b.Ratio(c)-RatioStep)
}

func (b BudgetSplit) with(c Component, ratio float64) BudgetSplit {
	ratio = math.Round(ratio*100) / 100
	ratio = math.Max(MinRatio, math.Min(MaxRatio, ratio))
	other := math.Round((1-ratio)*100) / 100
	if c == ComponentFlights {
		return BudgetSplit{Flights: ratio, Hotels: other}
	}
	return BudgetSplit{Flights: other, Hotels: ratio}
}
