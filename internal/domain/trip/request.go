package trip

import (
	"fmt"
	"strings"
	"time"
)

// Normalize upper-cases the origin, fills defaults and parses the strategy.
func (r Request) Normalize() (Request, error) {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.TrimSpace(r.Destination)
	if r.Adults < 1 {
		r.Adults = 1
	}
	st, err := ParseStrategy(string(r.Strategy))
	if err != nil {
		return r, err
	}
	r.Strategy = st
	return r, r.Validate()
}

func (r Request) Validate() error {
	if r.Origin == "" {
		return fmt.Errorf("%w: origin required", ErrInvalidRequest)
	}
	if r.Destination == "" {
		return fmt.Errorf("%w: destination required", ErrInvalidRequest)
	}
	if r.DepartureDate.IsZero() {
		return fmt.Errorf("%w: departure_date required", ErrInvalidRequest)
	}
	if r.ReturnDate.IsZero() {
		return fmt.Errorf("%w: return_date required", ErrInvalidRequest)
	}
	if !r.ReturnDate.After(r.DepartureDate) {
		return fmt.Errorf("%w: return_date must be after departure_date", ErrInvalidRequest)
	}
	if r.TotalBudget <= 0 {
		return fmt.Errorf("%w: total_budget must be > 0", ErrInvalidRequest)
	}
	if _, err := r.Strategy.Split(); err != nil {
		return err
	}
	return nil
}

// ValidateDates rejects departure dates before the calendar day of now.
func (r Request) ValidateDates(now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dep := time.Date(r.DepartureDate.Year(), r.DepartureDate.Month(), r.DepartureDate.Day(), 0, 0, 0, 0, now.Location())
	if dep.Before(today) {
		return fmt.Errorf("%w: departure date must be today or in the future", ErrInvalidRequest)
	}
	return nil
}

const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidRequest, s)
	}
	return t, nil
}
