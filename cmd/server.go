package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/application/usecases"
	"github.com/example/trip-planner/internal/auth"
	"github.com/example/trip-planner/internal/interfaces/web"
	"github.com/example/trip-planner/internal/migrate"
	"github.com/example/trip-planner/internal/scheduler"
)

func newServerCmd(src *sources) *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the JSON API and the inventory sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, *src)
			if err != nil {
				return err
			}
			defer a.Close()
			cfg, log := a.cfg, a.log

			if a.db != nil {
				if migrateUp {
					applied, err := migrate.Up(ctx, a.db)
					if err != nil {
						return err
					}
					if len(applied) > 0 {
						log.Info("migrations applied", zap.Strings("files", applied))
					}
				}
				sw := &scheduler.Sweeper{Pruner: a.offers, Interval: cfg.InventorySweepInterval(), Logger: log.Named("sweeper")}
				go func() { _ = sw.Run(ctx) }()
			}

			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			ws := &web.Server{
				Plan:          a.planTrip(),
				Ping:          usecases.PingProviders{Flights: a.flights, Hotels: a.hotels},
				Guard:         auth.NewGuard(cfg.APITokenHash),
				Visitors:      auth.NewVisitors(cfg.CookieHashKey, cfg.CookieBlockKey),
				Trips:         web.NewTripLog(),
				Logger:        log.Named("http"),
				Origins:       cfg.AllowedOrigins(),
				RatePerMinute: cfg.RateLimitPerMinute,
			}
			if cfg.AnthropicAPIKey != "" {
				pt, err := a.planFromText()
				if err != nil {
					return err
				}
				ws.PlanText = pt
			} else {
				log.Info("natural-language planning disabled: ANTHROPIC_API_KEY is not set")
			}

			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
