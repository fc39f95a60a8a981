package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/trip-planner/internal/application/planner"
	"github.com/example/trip-planner/internal/domain/trip"
)

type Result struct {
	ID      string         `json:"id"`
	Request trip.Request   `json:"request"`
	Outcome trip.Outcome   `json:"outcome"`
	History []planner.Step `json:"history"`
	Turns   int            `json:"turns"`
	Rounds  int            `json:"rounds"`
}

type PlanTrip struct {
	Planner *planner.Loop
	// Now enables the not-in-the-past date check when set.
	Now func() time.Time
}

func (u PlanTrip) Execute(ctx context.Context, req trip.Request) (Result, error) {
	if u.Planner == nil {
		return Result{}, fmt.Errorf("planner is nil")
	}
	if u.Now != nil {
		if err := req.ValidateDates(u.Now()); err != nil {
			return Result{}, err
		}
	}
	s, err := planner.NewSession(uuid.NewString(), req)
	if err != nil {
		return Result{}, err
	}
	if err := u.Planner.Run(ctx, s); err != nil {
		return Result{}, err
	}
	return Result{
		ID:      s.ID,
		Request: s.Request,
		Outcome: s.Outcome,
		History: s.History,
		Turns:   s.Turns,
		Rounds:  s.Rounds,
	}, nil
}
