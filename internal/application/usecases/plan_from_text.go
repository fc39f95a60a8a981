package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/example/trip-planner/internal/domain/trip"
)

// IntentExtractor turns a free-text trip description into a request.
type IntentExtractor interface {
	Extract(ctx context.Context, text string, today time.Time) (trip.Request, error)
}

type PlanFromText struct {
	Extractor IntentExtractor
	Plan      PlanTrip
}

func (u PlanFromText) Execute(ctx context.Context, text string) (Result, error) {
	if u.Extractor == nil {
		return Result{}, fmt.Errorf("intent extractor is not configured")
	}
	today := time.Now()
	if u.Plan.Now != nil {
		today = u.Plan.Now()
	}
	req, err := u.Extractor.Extract(ctx, text, today)
	if err != nil {
		return Result{}, fmt.Errorf("extract intent: %w", err)
	}
	if req.ReturnDate.IsZero() {
		req.ReturnDate = req.CheckOut()
	}
	return u.Plan.Execute(ctx, req)
}
