package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/application/planner"
	"github.com/example/trip-planner/internal/application/usecases"
	"github.com/example/trip-planner/internal/db"
	"github.com/example/trip-planner/internal/domain/trip"
	"github.com/example/trip-planner/internal/infrastructure/amadeus"
	"github.com/example/trip-planner/internal/infrastructure/cache"
	"github.com/example/trip-planner/internal/infrastructure/config"
	"github.com/example/trip-planner/internal/infrastructure/fixtures"
	"github.com/example/trip-planner/internal/infrastructure/intent"
	"github.com/example/trip-planner/internal/infrastructure/logging"
	"github.com/example/trip-planner/internal/infrastructure/multi"
	"github.com/example/trip-planner/internal/infrastructure/postgres"
)

// sources selects which providers feed the planner.
type sources struct {
	fixtures    string
	noAmadeus   bool
	noInventory bool
}

// app is the wired set of providers and services shared by the commands.
type app struct {
	cfg config.Config
	log *zap.Logger

	flights trip.FlightProvider
	hotels  trip.HotelProvider

	db     *db.DB
	offers *postgres.OfferRepo

	closers []func()
}

func newApp(ctx context.Context, src sources) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	var fs []trip.FlightProvider
	var hs []trip.HotelProvider

	if src.fixtures != "" {
		f, err := fixtures.Load(src.fixtures)
		if err != nil {
			a.Close()
			return nil, err
		}
		p := fixtures.NewProvider(f)
		fs, hs = append(fs, p), append(hs, p)
		log.Info("provider enabled", zap.String("provider", p.Name()), zap.String("file", src.fixtures))
	}

	if cfg.DatabaseURL != "" && !src.noInventory {
		d, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = d
		a.offers = postgres.NewOfferRepo(d)
		a.closers = append(a.closers, d.Close)
		fs, hs = append(fs, a.offers), append(hs, a.offers)
		log.Info("provider enabled", zap.String("provider", a.offers.Name()))
	}

	if cfg.AmadeusClientID != "" && cfg.AmadeusClientSecret != "" && !src.noAmadeus {
		c := amadeus.New(amadeus.Options{
			BaseURL:           cfg.AmadeusBaseURL,
			ClientID:          cfg.AmadeusClientID,
			ClientSecret:      cfg.AmadeusClientSecret,
			Timeout:           cfg.AmadeusTimeout(),
			RequestsPerSecond: cfg.AmadeusRPS,
			MaxFlightResults:  cfg.MaxFlightResults,
			MaxHotelResults:   cfg.MaxHotelResults,
			Logger:            log,
		})
		fs, hs = append(fs, c), append(hs, c)
		log.Info("provider enabled", zap.String("provider", c.Name()))
	}

	if len(fs) == 0 {
		a.Close()
		return nil, errors.New("no provider configured: set AMADEUS_CLIENT_ID/AMADEUS_CLIENT_SECRET, DATABASE_URL or --fixtures")
	}

	a.flights, a.hotels = one(fs, log), oneHotel(hs, log)

	if cfg.RedisAddr != "" {
		store := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := store.Ping(ctx); err != nil {
			log.Warn("search cache disabled", zap.Error(err))
			_ = store.Close()
		} else {
			a.closers = append(a.closers, func() { _ = store.Close() })
			a.flights = &cache.Flights{Next: a.flights, Store: store, TTL: cfg.SearchCacheTTLDuration(), Logger: log}
			a.hotels = &cache.Hotels{Next: a.hotels, Store: store, TTL: cfg.SearchCacheTTLDuration(), Logger: log}
		}
	}
	return a, nil
}

func one(ps []trip.FlightProvider, log *zap.Logger) trip.FlightProvider {
	if len(ps) == 1 {
		return ps[0]
	}
	return &multi.Flights{Providers: ps, Logger: log}
}

func oneHotel(ps []trip.HotelProvider, log *zap.Logger) trip.HotelProvider {
	if len(ps) == 1 {
		return ps[0]
	}
	return &multi.Hotels{Providers: ps, Logger: log}
}

func (a *app) planner() *planner.Loop {
	return &planner.Loop{
		Flights:   a.flights,
		Hotels:    a.hotels,
		TurnLimit: a.cfg.TurnLimit,
		Logger:    a.log,
	}
}

func (a *app) planTrip() usecases.PlanTrip {
	return usecases.PlanTrip{Planner: a.planner(), Now: nowFunc}
}

func (a *app) planFromText() (*usecases.PlanFromText, error) {
	ex, err := intent.New(a.cfg.AnthropicAPIKey, a.cfg.AnthropicModel)
	if err != nil {
		return nil, fmt.Errorf("natural-language planning: %w", err)
	}
	return &usecases.PlanFromText{Extractor: ex, Plan: a.planTrip()}, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
