package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/atelierai/platform/component"
	"github.com/atelierai/platform/database/migration"
	"github.com/atelierai/platform/logger"
)

// Component manages the DB lifecycle in the component registry.
type Component struct {
	db         *DB
	cfg        Config
	log        *logger.Logger
	migrations []migrationSet
}

type migrationSet struct {
	fsys fs.FS
	path string
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a database component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("database")}
}

// WithMigrations registers SQL migrations applied on Start when
// Config.Migrate is set.
func (c *Component) WithMigrations(fsys fs.FS, path string) *Component {
	c.migrations = append(c.migrations, migrationSet{fsys: fsys, path: path})
	return c
}

// DB returns the connected database, or nil before Start.
func (c *Component) DB() *DB {
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects and, if enabled, migrates.
func (c *Component) Start(ctx context.Context) error {
	db, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if c.cfg.Migrate {
		for _, m := range c.migrations {
			if err := migration.Up(db.GormDB, c.cfg.Driver, m.fsys, m.path); err != nil {
				return fmt.Errorf("database migrate: %w", err)
			}
		}
		c.log.Info("Database migrations applied", logger.Fields("sets", len(c.migrations)))
	}
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}
	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup log.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%s pool=%d/%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.Migrate {
		details += " migrate=on"
	}
	return component.Description{Type: "database", Details: details}
}
