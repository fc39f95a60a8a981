package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/trip-planner/internal/db"
	"github.com/example/trip-planner/internal/domain/trip"
	"github.com/example/trip-planner/internal/infrastructure/fixtures"
)

const searchLimit = 20

// OfferRepo is the offer inventory. It answers flight and hotel searches
// from the offers table.
type OfferRepo struct{ db *db.DB }

func NewOfferRepo(d *db.DB) *OfferRepo { return &OfferRepo{db: d} }

func (r *OfferRepo) Name() string { return "inventory" }

func (r *OfferRepo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: inventory: %v", trip.ErrProviderUnavailable, err)
	}
	return nil
}

func (r *OfferRepo) SearchFlights(ctx context.Context, q trip.FlightQuery) ([]trip.Candidate, error) {
	origin := strings.ToUpper(strings.TrimSpace(q.Origin))
	dest := fixtures.AirportOf(q.Destination)
	var ret *time.Time
	if !q.ReturnDate.IsZero() {
		d := q.ReturnDate
		ret = &d
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, cost::float8, details,
			CASE WHEN origin = $1 THEN 'outbound' ELSE 'return' END AS direction
		FROM offers
		WHERE component = 'flights'
			AND (valid_until IS NULL OR valid_until > now())
			AND ((origin = $1 AND destination = $2 AND (travel_date IS NULL OR travel_date = $3::date))
				OR ($4::date IS NOT NULL AND origin = $2 AND destination = $1 AND (travel_date IS NULL OR travel_date = $4::date)))
			AND ($5::float8 IS NULL OR cost <= $5::float8)
		ORDER BY cost, id
		LIMIT $6
	`, origin, dest, q.DepartureDate, ret, q.MaxBudget, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("inventory flights: %w", err)
	}
	cs, err := scanCandidates(rows)
	if err != nil {
		return nil, err
	}
	trip.SortFlights(cs, q.PreferRedEyes)
	return cs, nil
}

func (r *OfferRepo) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.Candidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, cost::float8, details, '' AS direction
		FROM offers
		WHERE component = 'hotels'
			AND (valid_until IS NULL OR valid_until > now())
			AND city_code = $1
			AND (travel_date IS NULL OR travel_date = $2::date)
			AND ($3::float8 IS NULL OR cost <= $3::float8)
		ORDER BY cost, id
		LIMIT $4
	`, fixtures.CityOf(q.Destination), q.CheckIn, q.MaxBudget, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("inventory hotels: %w", err)
	}
	return scanCandidates(rows)
}

func scanCandidates(rows db.Rows) ([]trip.Candidate, error) {
	defer rows.Close()
	var out []trip.Candidate
	for rows.Next() {
		var (
			c   trip.Candidate
			dir string
		)
		if err := rows.Scan(&c.ProviderID, &c.Cost, &c.Details, &dir); err != nil {
			return nil, err
		}
		if c.Details == nil {
			c.Details = map[string]string{}
		}
		if dir != "" {
			c.Details["direction"] = dir
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Import upserts every offer of f in one transaction.
func (r *OfferRepo) Import(ctx context.Context, f fixtures.File) (int, error) {
	var n int
	err := r.db.Tx(ctx, func(tx pgx.Tx) error {
		for _, o := range f.Flights {
			if err := upsert(ctx, tx, trip.ComponentFlights, o); err != nil {
				return err
			}
			n++
		}
		for _, o := range f.Hotels {
			if err := upsert(ctx, tx, trip.ComponentHotels, o); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func upsert(ctx context.Context, tx pgx.Tx, c trip.Component, o fixtures.Offer) error {
	var date *time.Time
	if o.Date != "" {
		d, err := trip.ParseDate(o.Date)
		if err != nil {
			return err
		}
		date = &d
	}
	details := o.Details
	if details == nil {
		details = map[string]string{}
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO offers (id, component, origin, destination, city_code, travel_date, cost, details, valid_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			component=EXCLUDED.component, origin=EXCLUDED.origin, destination=EXCLUDED.destination,
			city_code=EXCLUDED.city_code, travel_date=EXCLUDED.travel_date, cost=EXCLUDED.cost,
			details=EXCLUDED.details, valid_until=EXCLUDED.valid_until, updated_at=now()
	`, o.ID, string(c), strings.ToUpper(o.Origin), strings.ToUpper(o.Destination), strings.ToUpper(o.City),
		date, o.Cost, details, o.ValidUntil)
	if err != nil {
		return fmt.Errorf("upsert offer %s: %w", o.ID, err)
	}
	return nil
}

// PruneExpired deletes offers whose valid_until is before now.
func (r *OfferRepo) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM offers WHERE valid_until IS NOT NULL AND valid_until <= $1`, now)
}

func (r *OfferRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM offers`).Scan(&n)
	return n, db.WrapNotFound(err)
}
