package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/trip-planner/internal/db"
	"github.com/example/trip-planner/internal/infrastructure/config"
	"github.com/example/trip-planner/internal/infrastructure/fixtures"
	"github.com/example/trip-planner/internal/infrastructure/postgres"
	"github.com/example/trip-planner/internal/migrate"
)

func newInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Manage the Postgres offer inventory (needs DATABASE_URL)",
	}
	cmd.AddCommand(newInventoryMigrateCmd())
	cmd.AddCommand(newInventoryImportCmd())
	cmd.AddCommand(newInventoryPruneCmd())
	cmd.AddCommand(newInventoryCountCmd())
	return cmd
}

func openInventory(ctx context.Context, migrateUp bool) (*db.DB, *postgres.OfferRepo, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is not set")
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if migrateUp {
		if _, err := migrate.Up(ctx, d); err != nil {
			d.Close()
			return nil, nil, err
		}
	}
	return d, postgres.NewOfferRepo(d), nil
}

func newInventoryMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			d, _, err := openInventory(ctx, false)
			if err != nil {
				return err
			}
			defer d.Close()

			applied, err := migrate.Up(ctx, d)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "up to date")
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}

func newInventoryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <offers.yaml>",
		Short: "Upsert flight and hotel offers from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fixtures.Load(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			d, repo, err := openInventory(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := repo.Import(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d offers\n", n)
			return nil
		},
	}
}

func newInventoryPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete offers past their valid_until",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			d, repo, err := openInventory(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := repo.PruneExpired(ctx, nowFunc())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d offers\n", n)
			return nil
		},
	}
}

func newInventoryCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			d, repo, err := openInventory(ctx, false)
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := repo.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d offers\n", n)
			return nil
		},
	}
}
