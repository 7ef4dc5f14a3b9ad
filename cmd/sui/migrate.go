package main

import (
	"database/sql"
	"fmt"

	"github.com/hairizuanbinnoorazman/uiscript/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.migrate(cmd, func(c *migrateConn) error {
				if err := database.RunMigrations(c.db, c.driver); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
				return nil
			})
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.migrate(cmd, func(c *migrateConn) error {
				if err := database.RollbackMigration(c.db, c.driver); err != nil {
					return fmt.Errorf("failed to rollback migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully")
				return nil
			})
		},
	}

	migrateVersionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.migrate(cmd, func(c *migrateConn) error {
				version, dirty, err := database.Version(c.db, c.driver)
				if err != nil {
					return fmt.Errorf("failed to read schema version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	}

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	return migrateCmd
}

type migrateConn struct {
	db     *sql.DB
	driver string
}

// migrate connects without applying migrations and hands the raw
// connection to fn.
func (a *app) migrate(cmd *cobra.Command, fn func(*migrateConn) error) error {
	dbCfg := a.cfg.dbConfig()
	driver, err := database.NormalizeDriver(dbCfg.Driver)
	if err != nil {
		return err
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	a.logger.Info(cmd.Context(), "database connected", map[string]interface{}{
		"driver": driver,
	})
	return fn(&migrateConn{db: sqlDB, driver: driver})
}
