// Package testutil provides an in-memory SQLite database for tests.
//
//	db := testutil.NewComponent().WithMigrations(users.Migrations, "migrations")
//	gotestutil.T(t).Setup(db)
//	repo := users.NewRepository(db.DB(), logger.NewNop())
//
// The SQL migrations the service ships run unchanged against SQLite, so
// tests exercise the real schema including its unique constraints.
package testutil
