package amadeus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/domain/trip"
	"github.com/example/trip-planner/internal/infrastructure/codes"
)

type flightOffersResponse struct {
	Data []flightOffer `json:"data"`
}

type flightOffer struct {
	ID    string `json:"id"`
	Price struct {
		Total      string `json:"total"`
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
	Itineraries []struct {
		Duration string    `json:"duration"`
		Segments []segment `json:"segments"`
	} `json:"itineraries"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
}

type segment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
}

// SearchFlights runs one-way searches for the outbound and, when set, the
// return leg, and returns both legs in one pool.
func (c *Client) SearchFlights(ctx context.Context, q trip.FlightQuery) ([]trip.Candidate, error) {
	dest, err := c.resolveAirport(ctx, q.Destination)
	if errors.Is(err, trip.ErrProviderTransient) {
		c.log.Warn("destination lookup gave up", zap.String("destination", q.Destination), zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	origin := strings.ToUpper(strings.TrimSpace(q.Origin))

	type leg struct {
		dir      string
		from, to string
		date     time.Time
	}
	legs := []leg{{trip.DirectionOutbound, origin, dest, q.DepartureDate}}
	if !q.ReturnDate.IsZero() {
		legs = append(legs, leg{trip.DirectionReturn, dest, origin, q.ReturnDate})
	}

	var out []trip.Candidate
	for _, l := range legs {
		cs, err := c.searchLeg(ctx, l.dir, l.from, l.to, l.date, q)
		if errors.Is(err, trip.ErrProviderTransient) {
			c.log.Warn("flight leg search gave up", zap.String("direction", l.dir), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	}
	return out, nil
}

func (c *Client) searchLeg(ctx context.Context, dir, from, to string, date time.Time, q trip.FlightQuery) ([]trip.Candidate, error) {
	adults, ceiling := q.Adults, q.MaxBudget
	params := url.Values{}
	params.Set("originLocationCode", from)
	params.Set("destinationLocationCode", to)
	params.Set("departureDate", date.Format(trip.DateLayout))
	params.Set("adults", strconv.Itoa(positive(adults, 1)))
	params.Set("currencyCode", "USD")
	params.Set("max", strconv.Itoa(c.maxFlights))
	if ceiling != nil {
		params.Set("maxPrice", strconv.Itoa(int(math.Floor(*ceiling))))
	}

	var resp flightOffersResponse
	if err := c.get(ctx, "/v2/shopping/flight-offers", params, &resp); err != nil {
		return nil, fmt.Errorf("amadeus flight offers %s: %w", dir, err)
	}

	out := make([]trip.Candidate, 0, len(resp.Data))
	for _, o := range resp.Data {
		cand, ok := o.candidate(dir)
		if !ok {
			continue
		}
		if ceiling != nil && cand.Cost > *ceiling {
			continue
		}
		out = append(out, cand)
	}
	trip.SortFlights(out, q.PreferRedEyes)
	if len(out) > c.maxFlights {
		out = out[:c.maxFlights]
	}
	return out, nil
}

func (o flightOffer) candidate(dir string) (trip.Candidate, bool) {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return trip.Candidate{}, false
	}
	total := o.Price.GrandTotal
	if total == "" {
		total = o.Price.Total
	}
	price, ok := parsePrice(total)
	if !ok {
		return trip.Candidate{}, false
	}

	it := o.Itineraries[0]
	first, last := it.Segments[0], it.Segments[len(it.Segments)-1]
	carrier := first.CarrierCode
	if carrier == "" && len(o.ValidatingAirlineCodes) > 0 {
		carrier = o.ValidatingAirlineCodes[0]
	}
	currency := o.Price.Currency
	if currency == "" {
		currency = "USD"
	}

	return trip.Candidate{
		Cost:       price,
		ProviderID: "amadeus:" + dir + ":" + o.ID,
		Details: map[string]string{
			"direction":     dir,
			"carrier_code":  carrier,
			"carrier":       codes.AirlineName(carrier),
			"flight_number": carrier + first.Number,
			"from":          first.Departure.IataCode,
			"to":            last.Arrival.IataCode,
			"departure":     first.Departure.At,
			"arrival":       last.Arrival.At,
			"duration":      FormatDuration(it.Duration),
			"stops":         strconv.Itoa(len(it.Segments) - 1),
			"currency":      currency,
		},
	}, true
}

var (
	hoursRe   = regexp.MustCompile(`(\d+)H`)
	minutesRe = regexp.MustCompile(`(\d+)M`)
)

// FormatDuration turns an ISO-8601 duration such as PT2H10M into "2h 10m".
func FormatDuration(iso string) string {
	if iso == "" {
		return "N/A"
	}
	if !strings.HasPrefix(iso, "PT") {
		return iso
	}
	var h, m int
	if g := hoursRe.FindStringSubmatch(iso); g != nil {
		h, _ = strconv.Atoi(g[1])
	}
	if g := minutesRe.FindStringSubmatch(iso); g != nil {
		m, _ = strconv.Atoi(g[1])
	}
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
