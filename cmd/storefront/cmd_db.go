package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/internal/bootstrap"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/migration"

	// Import migrations so their init() funcs run and register themselves.
	_ "github.com/shashiranjanraj/storefront/database/migrations"
)

// bootStore loads config and opens the configured backend. Opening MongoDB
// also ensures its indexes.
func bootStore(ctx context.Context) (*bootstrap.Store, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return bootstrap.OpenStore(ctx, cache.NewMemory())
}

// withMigrator runs fn against the SQL backend; MongoDB needs no migrations.
func withMigrator(ctx context.Context, fn func(*migration.Runner) error) error {
	store, err := bootStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	if !store.IsSQL() {
		fmt.Println("MongoDB backend: indexes ensured, no migrations to run.")
		return nil
	}
	return fn(migration.New(store.SQL, os.Stdout))
}

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(r *migration.Runner) error {
			fmt.Println("Running migrations…")
			return r.Run()
		})
	},
}

// storefront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(r *migration.Runner) error {
			fmt.Println("Rolling back last batch…")
			return r.Rollback()
		})
	},
}

// storefront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(r *migration.Runner) error {
			rows, err := r.Status()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
			for _, row := range rows {
				ran, batch := "no", "-"
				if row.Ran {
					ran, batch = "yes", fmt.Sprint(row.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", row.Name, ran, batch)
			}
			return w.Flush()
		})
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := bootStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		if err := store.Migrate(); err != nil {
			return err
		}
		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, store.Repos, os.Stdout)
	},
}
