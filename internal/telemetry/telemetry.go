// Package telemetry sets up OpenTelemetry tracing for folder operations.
package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName           = "scm-folders"
	instrumentationPrefix = "github.com/cchalm/scm-folders/internal/"
)

// ServiceVersion is reported with every span. Set by the CLI from build info
var ServiceVersion = "dev"

// TelemetryConfig holds the configuration for telemetry
type TelemetryConfig struct {
	Enabled bool
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector. Empty uses the exporter's default
	OTLPEndpoint string
	Insecure     bool
}

// Provider manages the tracer provider. A disabled provider leaves the global no-op tracer provider in place
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
}

// NewProvider creates a new telemetry provider and installs it as the global tracer provider if enabled
func NewProvider(ctx context.Context, config TelemetryConfig) (*Provider, error) {
	if !config.Enabled {
		log.Debug().Msg("Telemetry disabled")
		return &Provider{}, nil
	}

	var opts []otlptracehttp.Option
	if config.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(config.OTLPEndpoint))
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", ServiceVersion),
		)),
	)
	otel.SetTracerProvider(tp)

	log.Info().Str("endpoint", config.OTLPEndpoint).Msg("Telemetry enabled")
	return &Provider{tracerProvider: tp}, nil
}

// Shutdown flushes pending spans and shuts down the telemetry provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider == nil {
		return nil
	}
	return p.tracerProvider.Shutdown(ctx)
}

// Tracer returns a tracer for the given component from the global tracer provider
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + component)
}

// RecordResult sets the span status from the outcome of the traced operation
func RecordResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// NewOperationID generates a new operation UUID
func NewOperationID() string {
	return uuid.New().String()
}
