// Package database opens the relational store through GORM.
//
// New retries the initial connection, applies pool settings and routes
// gorm's query log through the service logger. Unique-constraint
// violations are translated to gorm.ErrDuplicatedKey for every driver, so
// repositories test for duplicates with IsDuplicateError instead of
// matching driver messages.
//
//	comp := database.NewComponent(cfg, log).WithMigrations(users.Migrations, "migrations")
//	registry.Register(comp)
//	...
//	repo := users.NewRepository(comp.DB(), log)
//
// PostgreSQL is the production driver; SQLite backs the in-memory test
// component in database/testutil.
package database
