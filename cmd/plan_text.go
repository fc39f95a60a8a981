package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newPlanTextCmd(src *sources) *cobra.Command {
	var out *outputFlags

	cmd := &cobra.Command{
		Use:     "plan-text <description>",
		Short:   "Plan a trip from a free-text description (needs ANTHROPIC_API_KEY)",
		Example: `  tripplanner plan-text "SFO to Miami Dec 20-27, two adults, $2500, nicer hotel please"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, *src)
			if err != nil {
				return err
			}
			defer a.Close()

			uc, err := a.planFromText()
			if err != nil {
				return err
			}
			res, err := uc.Execute(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), res)
		},
	}
	out = outputFlags{}.bind(cmd)
	return cmd
}
