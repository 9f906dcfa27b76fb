package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/atelierai/platform/bootstrap"
	"github.com/atelierai/platform/database"
	"github.com/atelierai/platform/database/migration"
	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/users"
)

func migrateCmd(configFile, envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigration(cmd.Context(), *configFile, *envFile, func(db *database.DB, driver string) error {
					return migration.Up(db.GormDB, driver, users.Migrations, users.MigrationsPath)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigration(cmd.Context(), *configFile, *envFile, func(db *database.DB, driver string) error {
					return migration.Down(db.GormDB, driver, users.Migrations, users.MigrationsPath)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigration(cmd.Context(), *configFile, *envFile, func(db *database.DB, driver string) error {
					v, dirty, err := migration.Version(db.GormDB, driver, users.Migrations, users.MigrationsPath)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

// runMigration connects to the database through the normal bootstrap
// lifecycle and runs fn against it. Automatic migration on start is off so
// fn sees the schema as it is.
func runMigration(ctx context.Context, configFile, envFile string, fn func(db *database.DB, driver string) error) error {
	cfg, err := loadConfig(configFile, envFile)
	if err != nil {
		return err
	}
	cfg.Database.Migrate = false

	app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		return err
	}
	db := database.NewComponent(cfg.Database, app.Logger)
	if err := app.RegisterComponent(db); err != nil {
		return err
	}

	return app.RunTask(ctx, func(context.Context) error {
		if err := fn(db.DB(), cfg.Database.Driver); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		app.Logger.Info("Migration command finished", logger.Fields(logger.FieldOperation, "migrate"))
		return nil
	})
}
