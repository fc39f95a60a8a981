package trip

import (
	"sort"
	"time"
)

// Flight directions stored in Candidate.Details["direction"].
const (
	DirectionOutbound = "outbound"
	DirectionReturn   = "return"
)

// Direction is the leg a flight candidate covers, or "" when untagged.
func (c Candidate) Direction() string {
	return c.Details["direction"]
}

var departureLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"15:04",
}

// RedEye reports whether the candidate departs between 21:00 and 05:00 local
// time. Candidates without a parseable departure are not red-eyes.
func (c Candidate) RedEye() bool {
	dep := c.Details["departure"]
	if dep == "" {
		return false
	}
	for _, layout := range departureLayouts {
		if t, err := time.Parse(layout, dep); err == nil {
			return t.Hour() >= 21 || t.Hour() < 5
		}
	}
	return false
}

// SortFlights orders flights by cost. With preferRedEyes, red-eye departures
// come first among equal costs.
func SortFlights(cs []Candidate, preferRedEyes bool) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Cost != cs[j].Cost {
			return cs[i].Cost < cs[j].Cost
		}
		return preferRedEyes && cs[i].RedEye() && !cs[j].RedEye()
	})
}

func (p Pool) directed() bool {
	for _, c := range p {
		if c.Direction() != "" {
			return true
		}
	}
	return false
}

func (p Pool) first(direction string) (Candidate, bool) {
	for _, c := range p {
		if c.Direction() == direction {
			return c, true
		}
	}
	return Candidate{}, false
}

// legs picks a round trip from a cost-sorted pool: the cheapest outbound then
// the cheapest return when candidates carry a direction, otherwise the
// RequiredFlights cheapest. Nil means the pool cannot cover the trip.
func (p Pool) legs() []Candidate {
	if !p.directed() {
		if len(p) < RequiredFlights {
			return nil
		}
		return append([]Candidate(nil), p[:RequiredFlights]...)
	}
	out, ok := p.first(DirectionOutbound)
	if !ok {
		return nil
	}
	ret, ok := p.first(DirectionReturn)
	if !ok {
		return nil
	}
	return []Candidate{out, ret}
}
