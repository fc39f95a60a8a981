package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/domain/trip"
)

const DefaultTurnLimit = 20

const reasonTurnLimit = "turn limit exceeded"

// Loop drives providers and the allocator until a session is done or failed.
// Provider calls within a session are sequential.
type Loop struct {
	Flights trip.FlightProvider
	Hotels  trip.HotelProvider

	// TurnLimit caps provider calls per session. Zero means DefaultTurnLimit.
	TurnLimit int

	Logger *zap.Logger
	Tracer trace.Tracer
}

// Plan runs a fresh session for req. The returned error is non-nil only for
// invalid requests, unavailable providers and context cancellation.
func (l *Loop) Plan(ctx context.Context, req trip.Request) (trip.Outcome, error) {
	s, err := NewSession(uuid.NewString(), req)
	if err != nil {
		return nil, err
	}
	if err := l.Run(ctx, s); err != nil {
		return nil, err
	}
	return s.Outcome, nil
}

func (l *Loop) Run(ctx context.Context, s *Session) (err error) {
	if l.Flights == nil || l.Hotels == nil {
		return fmt.Errorf("planner: providers are required")
	}
	ctx, span := l.tracer().Start(ctx, "planner.Plan", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("trip.origin", s.Request.Origin),
		attribute.String("trip.destination", s.Request.Destination),
		attribute.Float64("trip.budget", s.Request.TotalBudget),
		attribute.String("trip.strategy", string(s.Request.Strategy)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if s.Outcome != nil {
			span.SetAttributes(
				attribute.String("outcome", string(s.Outcome.Kind())),
				attribute.Int("turns", s.Turns),
				attribute.Int("rounds", s.Rounds),
			)
		}
		span.End()
	}()

	log := l.logger().With(zap.String("session_id", s.ID))
	if s.State == "" || s.State == StateInit {
		s.State = StateSearchFlights
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch s.State {
		case StateSearchFlights, StateSearchHotels:
			if s.Turns >= l.turnLimit() {
				log.Warn("turn limit reached", zap.Int("turns", s.Turns))
				s.finish(trip.Infeasible{Reason: reasonTurnLimit, Cause: trip.ErrTurnLimitExceeded})
				continue
			}
			s.Turns++
			c := trip.ComponentFlights
			if s.State == StateSearchHotels {
				c = trip.ComponentHotels
			}
			if err := l.search(ctx, log, s, c); err != nil {
				return err
			}
		case StateEvaluate:
			l.evaluate(log, s)
		case StateDone, StateFailed:
			log.Info("planning finished",
				zap.String("state", string(s.State)),
				zap.String("outcome", string(s.Outcome.Kind())),
				zap.Int("turns", s.Turns),
				zap.Int("rounds", s.Rounds),
			)
			return nil
		default:
			return fmt.Errorf("planner: unknown state %q", s.State)
		}
	}
}

func (l *Loop) search(ctx context.Context, log *zap.Logger, s *Session, c trip.Component) error {
	ceiling := s.ceiling(c)
	ctx, span := l.tracer().Start(ctx, "provider.search_"+string(c))
	defer span.End()
	if ceiling != nil {
		span.SetAttributes(attribute.Float64("search.ceiling", *ceiling))
	}

	var (
		res []trip.Candidate
		err error
		req = s.Request
	)
	if c == trip.ComponentFlights {
		span.SetAttributes(attribute.String("provider", l.Flights.Name()))
		res, err = l.Flights.SearchFlights(ctx, trip.FlightQuery{
			Origin:        req.Origin,
			Destination:   req.Destination,
			DepartureDate: req.DepartureDate,
			ReturnDate:    req.ReturnDate,
			Adults:        req.Adults,
			MaxBudget:     ceiling,
			PreferRedEyes: req.PreferRedEyes,
		})
	} else {
		span.SetAttributes(attribute.String("provider", l.Hotels.Name()))
		res, err = l.Hotels.SearchHotels(ctx, trip.HotelQuery{
			Destination: req.Destination,
			CheckIn:     req.DepartureDate,
			CheckOut:    req.CheckOut(),
			Adults:      req.Adults,
			MaxBudget:   ceiling,
		})
	}

	step := Step{Turn: s.Turns, State: s.State, Component: c, Ceiling: ceiling}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.History = append(s.History, step)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, trip.ErrProviderUnavailable) {
			return fmt.Errorf("%s search: %w", c, err)
		}
		log.Warn("provider search failed", zap.String("component", string(c)), zap.Error(err))
		s.finish(trip.Infeasible{Reason: fmt.Sprintf("%s search failed: %v", c, err), Cause: err})
		return nil
	}

	s.setPool(c, trip.NewPool(res), ceiling != nil)
	step.Results = len(res)
	s.History = append(s.History, step)
	span.SetAttributes(attribute.Int("search.results", len(res)))
	log.Debug("provider search",
		zap.String("component", string(c)),
		zap.Int("turn", s.Turns),
		zap.Int("results", len(res)),
		zap.Any("ceiling", ceiling),
	)

	if c == trip.ComponentFlights && !s.searched[trip.ComponentHotels] {
		s.State = StateSearchHotels
	} else {
		s.State = StateEvaluate
	}
	return nil
}

func (l *Loop) evaluate(log *zap.Logger, s *Session) {
	s.Rounds++
	out := trip.Evaluate(s.evaluation())
	s.History = append(s.History, Step{Turn: s.Turns, Round: s.Rounds, State: StateEvaluate, Outcome: out.Kind()})
	log.Debug("allocator round", zap.Int("round", s.Rounds), zap.String("outcome", string(out.Kind())))

	switch o := out.(type) {
	case trip.NeedMoreOptions:
		s.Split = o.Split
		s.State = searchState(o.Component)
	case trip.NeedCheaperOptions:
		s.Split = o.Split
		s.pin(o.Pinned)
		s.State = searchState(o.Component)
	default:
		s.finish(out)
	}
}

func (l *Loop) turnLimit() int {
	if l.TurnLimit <= 0 {
		return DefaultTurnLimit
	}
	return l.TurnLimit
}

func (l *Loop) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func (l *Loop) tracer() trace.Tracer {
	if l.Tracer == nil {
		return otel.Tracer("github.com/example/trip-planner/internal/application/planner")
	}
	return l.Tracer
}
