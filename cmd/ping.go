package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/trip-planner/internal/application/usecases"
)

func newPingCmd(src *sources) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that every configured provider is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()

			a, err := newApp(ctx, *src)
			if err != nil {
				return err
			}
			defer a.Close()

			uc := usecases.PingProviders{Flights: a.flights, Hotels: a.hotels}
			if err := uc.Execute(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flights %s: ok\nhotels %s: ok\n", a.flights.Name(), a.hotels.Name())
			return nil
		},
	}
}
