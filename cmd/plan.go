package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/trip-planner/internal/application/usecases"
	"github.com/example/trip-planner/internal/domain/trip"
	"github.com/example/trip-planner/internal/interfaces/present"
)

var nowFunc = time.Now

type outputFlags struct {
	json    bool
	verbose bool
}

func (o outputFlags) bind(cmd *cobra.Command) *outputFlags {
	cmd.Flags().BoolVar(&o.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "include the planning history")
	return &o
}

func (o *outputFlags) write(w io.Writer, res usecases.Result) error {
	if o.json {
		return present.JSON(w, res)
	}
	return present.Printer{Out: w, Color: !color.NoColor, Verbose: o.verbose}.Text(res)
}

func newPlanCmd(src *sources) *cobra.Command {
	var (
		origin      string
		destination string
		depart      string
		ret         string
		budget      float64
		strategy    string
		adults      int
		redEyes     bool
		out         *outputFlags
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a round trip within a total budget",
		Example: `  tripplanner plan --from SFO --to "New York City" --depart 2026-11-02 --return 2026-11-06 --budget 1500
  tripplanner plan --fixtures offers.yaml --from SFO --to JFK --depart 2026-11-02 --return 2026-11-06 --budget 900 --strategy splurge_hotel`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := trip.Request{
				Origin:        origin,
				Destination:   destination,
				TotalBudget:   budget,
				Strategy:      trip.Strategy(strategy),
				Adults:        adults,
				PreferRedEyes: redEyes,
			}
			var err error
			if req.DepartureDate, err = trip.ParseDate(depart); err != nil {
				return err
			}
			if req.ReturnDate, err = trip.ParseDate(ret); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, *src)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.planTrip().Execute(ctx, req)
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&origin, "from", "", "origin airport code (IATA)")
	cmd.Flags().StringVar(&destination, "to", "", "destination airport code or city name")
	cmd.Flags().StringVar(&depart, "depart", "", "departure date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ret, "return", "", "return date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&budget, "budget", 0, "total budget in USD")
	cmd.Flags().StringVar(&strategy, "strategy", string(trip.StrategyCheapestOverall), "cheapest_overall, splurge_flight or splurge_hotel")
	cmd.Flags().IntVar(&adults, "adults", 1, "number of travellers")
	cmd.Flags().BoolVar(&redEyes, "red-eye", false, "prefer red-eye departures (21:00-05:00) when prices tie")
	out = outputFlags{}.bind(cmd)
	for _, f := range []string{"from", "to", "depart", "return", "budget"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
