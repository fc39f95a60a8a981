package trip

// MaxRounds caps Allocator rounds per planning session.
const MaxRounds = 10

// RequiredFlights is the number of legs in a round trip.
const RequiredFlights = 2

const reasonMaxRounds = "no combination within budget after max iterations"

// costEpsilon absorbs float summation error in the budget check.
const costEpsilon = 1e-9

// Evaluation is the complete input of one Allocator round.
type Evaluation struct {
	Flights     Pool
	Hotels      Pool
	TotalBudget float64
	Split       BudgetSplit

	// Pinned selections are reused as-is and skip filtering. Nil means open.
	PinnedFlights []Candidate
	PinnedHotel   *Candidate

	// Bounded reports that the component's pool came from a search under its
	// sub-budget ceiling. Unbounded pools are not filtered by ratio.
	FlightsBounded bool
	HotelsBounded  bool

	// PreferRedEyes breaks flight cost ties in favour of red-eye departures.
	PreferRedEyes bool

	// Round is 1-based.
	Round int
}

// Evaluate runs one allocation round. It is pure: equal inputs give equal outcomes.
func Evaluate(in Evaluation) Outcome {
	if in.Round > MaxRounds {
		return Infeasible{Reason: reasonMaxRounds, Cause: ErrBudgetInfeasible}
	}
	in.Flights = NewPool(in.Flights)
	if in.PreferRedEyes {
		SortFlights(in.Flights, true)
	}
	in.Hotels = NewPool(in.Hotels)
	out := evaluate(in)
	if in.Round >= MaxRounds && out.Kind() != KindComplete {
		return Infeasible{Reason: reasonMaxRounds, Cause: ErrBudgetInfeasible}
	}
	return out
}

func evaluate(in Evaluation) Outcome {
	flightsPinned := len(in.PinnedFlights) > 0
	hotelPinned := in.PinnedHotel != nil

	// Flights are asked for first when both sides are empty.
	if !flightsPinned && len(in.Flights) == 0 {
		return needMore(in, ComponentFlights)
	}
	if !hotelPinned && len(in.Hotels) == 0 {
		return needMore(in, ComponentHotels)
	}

	var sel Selection
	if flightsPinned {
		sel.Flights = in.PinnedFlights
	} else {
		legs := in.valid(ComponentFlights).legs()
		if legs == nil {
			return needMore(in, ComponentFlights)
		}
		sel.Flights = legs
	}
	if hotelPinned {
		sel.Hotel = in.PinnedHotel
	} else {
		valid := in.valid(ComponentHotels)
		if len(valid) == 0 {
			return needMore(in, ComponentHotels)
		}
		h := valid[0]
		sel.Hotel = &h
	}

	// Compare unrounded costs; rounding is for reporting only.
	flights, hotel := sel.flightSum(), sel.HotelCost()
	total := flights + hotel
	if total <= in.TotalBudget+costEpsilon {
		return Complete{
			Selection:       sel,
			TotalCost:       roundCents(total),
			RemainingBudget: roundCents(in.TotalBudget - total),
			Split:           in.Split,
		}
	}

	// Hotels are treated as the expensive side on a tie.
	expensive := ComponentHotels
	if flights > hotel {
		expensive = ComponentFlights
	}
	adjust := expensive.Other()
	if hasCheaper(in.pool(expensive), sel.of(expensive)) {
		adjust = expensive
	}
	split := in.Split.Lower(adjust)
	return NeedCheaperOptions{
		Component: adjust,
		NewBudget: split.Budget(adjust, in.TotalBudget),
		Split:     split,
		Pinned:    sel.pin(adjust.Other()),
	}
}

func needMore(in Evaluation, c Component) NeedMoreOptions {
	split := in.Split.Raise(c)
	return NeedMoreOptions{
		Component: c,
		NewBudget: split.Budget(c, in.TotalBudget),
		Split:     split,
	}
}

func (in Evaluation) pool(c Component) Pool {
	if c == ComponentFlights {
		return in.Flights
	}
	return in.Hotels
}

func (in Evaluation) valid(c Component) Pool {
	bounded := in.FlightsBounded
	if c == ComponentHotels {
		bounded = in.HotelsBounded
	}
	p := in.pool(c)
	if !bounded {
		return p
	}
	return p.Within(in.Split.Budget(c, in.TotalBudget))
}

func (s Selection) of(c Component) []Candidate {
	if c == ComponentFlights {
		return s.Flights
	}
	if s.Hotel == nil {
		return nil
	}
	return []Candidate{*s.Hotel}
}

func (s Selection) pin(c Component) Pin {
	if c == ComponentFlights {
		return Pin{Component: c, Flights: s.Flights}
	}
	return Pin{Component: c, Hotel: s.Hotel}
}

// hasCheaper reports whether pool holds a candidate outside selected that
// costs less than a selected entry covering the same leg. Hotels and untagged
// flights share the empty direction.
func hasCheaper(pool Pool, selected []Candidate) bool {
	for _, c := range pool {
		if contains(selected, c) {
			continue
		}
		for _, s := range selected {
			if c.Direction() == s.Direction() && c.Cost < s.Cost {
				return true
			}
		}
	}
	return false
}

func contains(cs []Candidate, c Candidate) bool {
	for _, x := range cs {
		if x.ProviderID == c.ProviderID && x.Cost == c.Cost {
			return true
		}
	}
	return false
}
