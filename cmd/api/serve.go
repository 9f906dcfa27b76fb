package main

import (
	"context"
	"fmt"

	"github.com/atelierai/platform/api"
	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/auth/password"
	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/bootstrap"
	"github.com/atelierai/platform/cache"
	"github.com/atelierai/platform/database"
	"github.com/atelierai/platform/observability"
	"github.com/atelierai/platform/redis"
	"github.com/atelierai/platform/server"
	"github.com/atelierai/platform/users"
	"github.com/atelierai/platform/version"
)

// serve starts the infrastructure components, wires the services on top
// of them and serves HTTP until the context ends.
func serve(ctx context.Context, configFile, envFile string) error {
	cfg, err := loadConfig(configFile, envFile)
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	obs, err := observability.Setup(ctx, cfg.Observability, cfg.Name, version.Get().Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	db := database.NewComponent(cfg.Database, app.Logger).WithMigrations(users.Migrations, users.MigrationsPath)
	rc, err := redis.New(cfg.Redis, app.Logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	// Stopped last, so spans and metrics of the shutdown are flushed.
	if err := app.RegisterComponent(obs); err != nil {
		return err
	}
	if err := app.RegisterComponent(db); err != nil {
		return err
	}
	if err := app.RegisterComponent(redis.NewComponent(rc, app.Logger)); err != nil {
		return err
	}

	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*APIConfig]) error {
		srv, err := newServer(a, db.DB(), rc, metrics)
		if err != nil {
			return err
		}
		return a.Components.StartLate(ctx, server.NewComponent(srv))
	})

	return app.Run(ctx)
}

// newServer builds the services and the HTTP server that exposes them.
func newServer(a *bootstrap.App[*APIConfig], db *database.DB, rc *redis.Client, metrics *observability.Metrics) (*server.Server, error) {
	cfg, log := a.Cfg, a.Logger

	tokens, err := jwt.NewService(cfg.Auth.JWT)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}
	store := cache.NewStore(rc, log, cache.WithMetrics(metrics))
	repo := users.NewRepository(db, log)
	guard := authz.NewGuard(nil)

	opts := []auth.Option{auth.WithGuard(guard), auth.WithMetrics(metrics)}
	if cfg.Auth.Revocation {
		opts = append(opts, auth.WithRevocation(auth.NewRevocationList(store, log)))
	}
	svc, err := auth.NewService(password.NewHasher(cfg.Auth.Password), tokens, repo, users.NewProfileCache(repo, store, log), log, opts...)
	if err != nil {
		return nil, err
	}

	srv := server.New(cfg.Server, log, server.WithMetrics(metrics))
	srv.ApplyDefaults(cfg.Name, a.Components.HealthAll)
	api.Mount(srv.GinEngine(), api.Deps{Auth: svc, Users: repo, Cache: store, Guard: guard, Log: log}, cfg.RateLimit)
	return srv, nil
}
