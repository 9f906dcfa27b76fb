// Package bootstrap runs a service binary through its lifecycle.
//
// An App starts its registered components in order, runs the configure
// callbacks that wire business services on top of them, checks readiness,
// prints a startup summary and then blocks until SIGINT or SIGTERM, when it
// stops everything in reverse order within the graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(db)
//	app.RegisterComponent(httpServer)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*APIConfig]) error {
//	    api.Mount(httpServer.Server().GinEngine(), deps, a.Cfg.RateLimit)
//	    return nil
//	})
//	return app.Run(ctx)
//
// RunTask gives one-shot commands, such as running migrations, the same
// startup and shutdown without waiting for a signal.
package bootstrap
