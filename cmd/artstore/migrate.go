package main

import (
	"fmt"

	"github.com/safar/artstore/internal/config"
	"github.com/safar/artstore/internal/database"
	"github.com/spf13/cobra"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{database.MigrateUp, database.MigrateDown},
	RunE:      runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (default $DATABASE_MIGRATIONS_DIR or ./migrations)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dir := cfg.Database.MigrationsDir
	if migrationsDir != "" {
		dir = migrationsDir
	}

	ctx := cmd.Context()
	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	n, err := database.Migrate(ctx, db, dir, args[0], func(name string) {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) %s\n", n, args[0])
	return nil
}
