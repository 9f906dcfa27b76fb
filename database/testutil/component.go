package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	"github.com/atelierai/platform/component"
	"github.com/atelierai/platform/database"
	"github.com/atelierai/platform/database/migration"
	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/testutil"
)

const migrationsTable = "schema_migrations"

// Component is an in-memory SQLite database behind a database.DB.
type Component struct {
	db         *database.DB
	migrations []migrationSet
	models     []interface{}
	started    bool
	mu         sync.RWMutex
}

type migrationSet struct {
	fsys fs.FS
	path string
}

var _ component.Component = (*Component)(nil)
var _ testutil.TestComponent = (*Component)(nil)

// NewComponent creates a stopped test database.
func NewComponent() *Component {
	return &Component{}
}

// WithMigrations applies the SQL migrations in fsys/path on Start.
func (c *Component) WithMigrations(fsys fs.FS, path string) *Component {
	c.migrations = append(c.migrations, migrationSet{fsys: fsys, path: path})
	return c
}

// WithModels auto-migrates models on Start, for tables that have no SQL
// migration.
func (c *Component) WithModels(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// DB returns the database, or nil before Start.
func (c *Component) DB() *database.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return "database-test" }

// Start opens the database and builds the schema. An in-memory SQLite
// database lives in a single connection, so the pool is pinned to one
// connection that never expires.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}

	db, err := database.New(ctx, database.Config{
		Driver:          database.DriverSQLite,
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: "0",
		ConnMaxIdleTime: "0",
		MaxRetries:      1,
		LogLevel:        "silent",
	}, logger.NewNop())
	if err != nil {
		return fmt.Errorf("failed to open test database: %w", err)
	}

	for _, m := range c.migrations {
		if err := migration.Up(db.GormDB, database.DriverSQLite, m.fsys, m.path); err != nil {
			_ = db.Close()
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	if len(c.models) > 0 {
		if err := db.GormDB.AutoMigrate(c.models...); err != nil {
			_ = db.Close()
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
	}

	c.db = db
	c.started = true
	return nil
}

// Stop closes the database, discarding its contents.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	c.started = false
	return c.db.Close()
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not started"}
	}
	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset deletes every row while keeping the schema and migration state.
func (c *Component) Reset(ctx context.Context) error {
	db, err := c.running()
	if err != nil {
		return err
	}
	return clearTables(ctx, db)
}

// Snapshot captures every row of every table.
func (c *Component) Snapshot(ctx context.Context) (interface{}, error) {
	db, err := c.running()
	if err != nil {
		return nil, err
	}
	tables, err := TableNames(ctx, db)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string][]map[string]interface{}, len(tables))
	for _, table := range tables {
		var rows []map[string]interface{}
		if err := db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to snapshot table %s: %w", table, err)
		}
		snapshot[table] = rows
	}
	return snapshot, nil
}

// Restore replaces every table's rows with the snapshot.
func (c *Component) Restore(ctx context.Context, snap interface{}) error {
	db, err := c.running()
	if err != nil {
		return err
	}
	snapshot, ok := snap.(map[string][]map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string][]map[string]interface{}, got %T", snap)
	}
	if err := clearTables(ctx, db); err != nil {
		return fmt.Errorf("failed to reset before restore: %w", err)
	}
	for table, rows := range snapshot {
		if err := LoadFixture(ctx, db, table, rows); err != nil {
			return err
		}
	}
	return nil
}

func (c *Component) running() (*database.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return nil, fmt.Errorf("component not started")
	}
	return c.db, nil
}

func clearTables(ctx context.Context, db *database.DB) error {
	tables, err := TableNames(ctx, db)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %q", table)).Error; err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}
