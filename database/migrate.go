package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite3/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, error) {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}

	var (
		dir      string
		name     string
		instance migratedb.Driver
	)
	switch driver {
	case DriverSQLite:
		d, err := sqlite3.WithInstance(db, &sqlite3.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite migration driver: %w", err)
		}
		dir, name, instance = "migrations/sqlite3", "sqlite3", d
	case DriverMySQL:
		d, err := migratemysql.WithInstance(db, &migratemysql.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create mysql migration driver: %w", err)
		}
		dir, name, instance = "migrations/mysql", "mysql", d
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration. An up to date schema is
// not an error.
func RunMigrations(db *sql.DB, driver string) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(db *sql.DB, driver string) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil {
		// Rolling back an empty schema has nothing to do.
		if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Version reports the applied schema version and whether the last
// migration left it dirty. Version 0 means nothing has been applied.
func Version(db *sql.DB, driver string) (uint, bool, error) {
	m, err := newMigrate(db, driver)
	if err != nil {
		return 0, false, err
	}

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, dirty, nil
}
