// Package telemetry installs the OpenTelemetry tracer provider used by the
// crawl session and the result page crawler.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName is reported as service.name when none is configured.
const DefaultServiceName = "catalogcrawl"

const (
	setupTimeout    = 15 * time.Second
	exporterTimeout = 3 * time.Second
)

// ErrInvalidEndpoint is returned when the OTLP endpoint cannot be used.
var ErrInvalidEndpoint = errors.New("invalid OTLP endpoint")

// Config selects where spans are exported.
type Config struct {
	// Endpoint is the OTLP/HTTP traces URL, for example
	// "http://localhost:4318/v1/traces". Empty disables export.
	Endpoint string

	// Headers are sent with every export request.
	Headers map[string]string

	// ServiceName defaults to DefaultServiceName.
	ServiceName string
}

// Enabled reports whether spans will be exported.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}

// Telemetry owns the installed tracer provider.
// The zero value is a disabled Telemetry whose Shutdown does nothing.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
}

// Enabled reports whether a provider was installed.
func (t *Telemetry) Enabled() bool {
	return t != nil && t.TracerProvider != nil
}

// Shutdown flushes pending spans and stops the provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if !t.Enabled() {
		return nil
	}
	return t.TracerProvider.Shutdown(ctx)
}

// Setup installs a global tracer provider exporting to cfg.Endpoint.
// When cfg is disabled it returns a disabled Telemetry and leaves the
// global no-op provider in place.
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	if !cfg.Enabled() {
		return &Telemetry{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	r, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)

	return &Telemetry{TracerProvider: tp}, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, exporterTimeout)
	defer cancel()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
		otlptracehttp.WithHeaders(cfg.Headers),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	return exporter, nil
}
