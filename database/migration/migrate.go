// Package migration applies versioned SQL migrations shipped inside the
// binary with golang-migrate.
//
// Files follow VERSION_name.up.sql / VERSION_name.down.sql and are read
// from an fs.FS, normally an embed.FS next to the owning package:
//
//	//go:embed migrations/*.sql
//	var Migrations embed.FS
//
//	err := migration.Up(gormDB, database.DriverPostgres, users.Migrations, "migrations")
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// Up applies all pending migrations. No pending migration is not an error.
func Up(db *gorm.DB, driver string, fsys fs.FS, path string) error {
	m, err := newMigrator(db, driver, fsys, path)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back every applied migration.
func Down(db *gorm.DB, driver string, fsys fs.FS, path string) error {
	m, err := newMigrator(db, driver, fsys, path)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version returns the applied version and whether the last run left the
// schema dirty. A fresh database reports version 0.
func Version(db *gorm.DB, driver string, fsys fs.FS, path string) (uint, bool, error) {
	m, err := newMigrator(db, driver, fsys, path)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func driverFor(name string, sqlDB *sql.DB) (migratedb.Driver, error) {
	switch name {
	case "postgres":
		return migratepg.WithInstance(sqlDB, &migratepg.Config{})
	case "sqlite":
		return migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("no migration driver for %q", name)
	}
}

// newMigrator builds a migrator over the shared pool. The returned
// migrator must not be closed: closing it closes the pool.
func newMigrator(db *gorm.DB, driver string, fsys fs.FS, path string) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	dbDriver, err := driverFor(driver, sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}
	source, err := iofs.New(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, driver, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
