package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/atelierai/platform/component"
)

// Provider owns the exporting meter and tracer providers, if any.
type Provider struct {
	cfg Config
	mp  *sdkmetric.MeterProvider
	tp  *sdktrace.TracerProvider
}

var _ component.Component = (*Provider)(nil)

// Setup installs exporting providers according to cfg. With export
// disabled it returns a Provider whose Shutdown is a no-op.
func Setup(ctx context.Context, cfg Config, service, version, environment string) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Provider{cfg: cfg}
	if !cfg.Enabled() {
		return p, nil
	}

	res := newResource(service, version, environment)
	if cfg.Metrics {
		mp, err := InitMeter(ctx, cfg, res)
		if err != nil {
			return nil, err
		}
		p.mp = mp
	}
	if cfg.Tracing {
		tp, err := InitTracer(ctx, cfg, res)
		if err != nil {
			if p.mp != nil {
				_ = p.mp.Shutdown(ctx)
			}
			return nil, err
		}
		p.tp = tp
	}
	return p, nil
}

// Shutdown flushes and stops the exporting providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.mp != nil {
		if err := p.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	if p.tp != nil {
		if err := p.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Name returns the component name.
func (p *Provider) Name() string { return "observability" }

// Start is a no-op; providers are installed by Setup.
func (p *Provider) Start(context.Context) error { return nil }

// Stop flushes pending telemetry.
func (p *Provider) Stop(ctx context.Context) error { return p.Shutdown(ctx) }

// Health is always healthy: export failures never affect serving.
func (p *Provider) Health(context.Context) component.Health {
	return component.Health{Name: p.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup log.
func (p *Provider) Describe() component.Description {
	details := "disabled"
	if p.cfg.Enabled() {
		details = fmt.Sprintf("%s metrics=%t tracing=%t", p.cfg.Endpoint, p.mp != nil, p.tp != nil)
	}
	return component.Description{Type: "otlp", Details: details}
}

// newResource describes the service. It does not merge resource.Default()
// because that carries its own schema URL.
func newResource(service, version, environment string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(service),
		semconv.ServiceVersion(version),
		attribute.String("environment", environment),
	)
}
