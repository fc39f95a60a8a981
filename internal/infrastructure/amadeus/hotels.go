package amadeus

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/domain/trip"
)

const maxHotelIDs = 10

type hotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

type hotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Rating   string `json:"rating"`
		} `json:"hotel"`
		Offers []struct {
			ID    string `json:"id"`
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// SearchHotels looks up hotels near the destination city and returns the
// best-rate offer of each, cheapest first.
func (c *Client) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.Candidate, error) {
	cs, err := c.searchHotels(ctx, q)
	if errors.Is(err, trip.ErrProviderTransient) {
		c.log.Warn("hotel search gave up", zap.String("destination", q.Destination), zap.Error(err))
		return nil, nil
	}
	return cs, err
}

func (c *Client) searchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.Candidate, error) {
	city, err := c.resolveCity(ctx, q.Destination)
	if err != nil {
		return nil, err
	}
	ids, err := c.hotelIDs(ctx, city)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return c.hotelOffers(ctx, ids, q)
}

func (c *Client) hotelIDs(ctx context.Context, city string) ([]string, error) {
	params := url.Values{}
	params.Set("cityCode", city)
	params.Set("radius", "10")
	params.Set("radiusUnit", "KM")
	params.Set("hotelSource", "ALL")

	var resp hotelListResponse
	if err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", params, &resp); err != nil {
		return nil, fmt.Errorf("amadeus hotels by city %s: %w", city, err)
	}
	ids := make([]string, 0, maxHotelIDs)
	for _, h := range resp.Data {
		if id := strings.TrimSpace(h.HotelID); id != "" {
			ids = append(ids, id)
		}
		if len(ids) == maxHotelIDs {
			break
		}
	}
	return ids, nil
}

func (c *Client) hotelOffers(ctx context.Context, ids []string, q trip.HotelQuery) ([]trip.Candidate, error) {
	checkIn := q.CheckIn.Format(trip.DateLayout)
	checkOut := q.CheckOut.Format(trip.DateLayout)

	params := url.Values{}
	params.Set("hotelIds", strings.Join(ids, ","))
	params.Set("checkInDate", checkIn)
	params.Set("checkOutDate", checkOut)
	params.Set("adults", strconv.Itoa(positive(q.Adults, 1)))
	params.Set("roomQuantity", "1")
	params.Set("bestRateOnly", "true")
	params.Set("currency", "USD")

	var resp hotelOffersResponse
	if err := c.get(ctx, "/v3/shopping/hotel-offers", params, &resp); err != nil {
		return nil, fmt.Errorf("amadeus hotel offers: %w", err)
	}

	out := make([]trip.Candidate, 0, len(resp.Data))
	for _, e := range resp.Data {
		if len(e.Offers) == 0 {
			continue
		}
		offer := e.Offers[0]
		price, ok := parsePrice(offer.Price.Total)
		if !ok {
			continue
		}
		if q.MaxBudget != nil && price > *q.MaxBudget {
			continue
		}
		rating := e.Hotel.Rating
		if rating == "" {
			rating = "N/A"
		}
		currency := offer.Price.Currency
		if currency == "" {
			currency = "USD"
		}
		out = append(out, trip.Candidate{
			Cost:       price,
			ProviderID: "amadeus:" + e.Hotel.HotelID + ":" + offer.ID,
			Details: map[string]string{
				"name":      e.Hotel.Name,
				"hotel_id":  e.Hotel.HotelID,
				"offer_id":  offer.ID,
				"rating":    rating,
				"currency":  currency,
				"check_in":  checkIn,
				"check_out": checkOut,
			},
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost < out[j].Cost })
	if len(out) > c.maxHotels {
		out = out[:c.maxHotels]
	}
	return out, nil
}
