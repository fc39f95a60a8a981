package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	var src sources

	root := &cobra.Command{
		Use:           "tripplanner",
		Short:         "Plan flights and a hotel within a total budget",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&src.fixtures, "fixtures", "", "YAML file of offers to plan against")
	root.PersistentFlags().BoolVar(&src.noAmadeus, "no-amadeus", false, "do not query Amadeus even when credentials are set")
	root.PersistentFlags().BoolVar(&src.noInventory, "no-inventory", false, "do not query the Postgres offer inventory")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newServerCmd(&src))
	root.AddCommand(newPlanCmd(&src))
	root.AddCommand(newPlanTextCmd(&src))
	root.AddCommand(newPingCmd(&src))
	root.AddCommand(newInventoryCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
