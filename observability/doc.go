// Package observability wires OpenTelemetry metrics and tracing.
//
// When no OTLP endpoint is configured the global no-op providers stay in
// place, so instruments and spans cost nothing and nothing is exported.
//
//	prov, err := observability.Setup(ctx, cfg, "api", "1.0.0", "production")
//	defer prov.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("api"))
//	metrics.RecordError(ctx, "token_expired", "auth")
//
//	ctx, span := observability.StartSpan(ctx, "auth.login")
//	defer span.End()
package observability
