package amadeus

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/example/trip-planner/internal/domain/trip"
	"github.com/example/trip-planner/internal/infrastructure/codes"
)

type locationsResponse struct {
	Data []struct {
		SubType  string `json:"subType"`
		IataCode string `json:"iataCode"`
		Address  struct {
			CityCode string `json:"cityCode"`
		} `json:"address"`
	} `json:"data"`
}

// lookupLocation resolves a free-form city name through the locations API.
// It returns the first airport code and the city code it belongs to.
func (c *Client) lookupLocation(ctx context.Context, keyword string) (airport, city string, err error) {
	params := url.Values{}
	params.Set("subType", "AIRPORT,CITY")
	params.Set("keyword", strings.TrimSpace(keyword))
	params.Set("page[limit]", "5")

	var resp locationsResponse
	if err := c.get(ctx, "/v1/reference-data/locations", params, &resp); err != nil {
		return "", "", fmt.Errorf("amadeus locations %q: %w", keyword, err)
	}
	for _, l := range resp.Data {
		if l.IataCode == "" {
			continue
		}
		switch l.SubType {
		case "AIRPORT":
			if airport == "" {
				airport = l.IataCode
				city = l.Address.CityCode
			}
		case "CITY":
			if city == "" {
				city = l.IataCode
			}
		}
	}
	if airport == "" {
		airport = city
	}
	if airport == "" {
		return "", "", fmt.Errorf("%w: unknown destination %q", trip.ErrInvalidRequest, keyword)
	}
	if city == "" {
		city = codes.CityOfAirport(airport)
	}
	return airport, city, nil
}

func (c *Client) resolveAirport(ctx context.Context, dest string) (string, error) {
	if code, ok := codes.ResolveAirport(dest); ok {
		return code, nil
	}
	airport, _, err := c.lookupLocation(ctx, dest)
	return airport, err
}

func (c *Client) resolveCity(ctx context.Context, dest string) (string, error) {
	if code, ok := codes.ResolveCity(dest); ok {
		return code, nil
	}
	_, city, err := c.lookupLocation(ctx, dest)
	return city, err
}
