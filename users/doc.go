// Package users stores platform accounts.
//
// Repository is the gorm-backed store; ProfileCache serves the public
// profile (never the password hash) cache-aside from the Redis cache. The
// schema ships as embedded SQL migrations:
//
//	dbComp := database.NewComponent(cfg.Database, log).
//		WithMigrations(users.Migrations, users.MigrationsPath)
package users

import "embed"

// Migrations holds the users schema migrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsPath is the directory inside Migrations.
const MigrationsPath = "migrations"
