package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

const tracerName = "github.com/edinar-labs/flexible-staking"

// InitTelemetry installs OTLP trace and metric exporters when telemetry is enabled.
// The returned function flushes and closes both.
func InitTelemetry(ctx context.Context, cfg config.TelemetryConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	log := logger.WithComponent("telemetry")

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	conn, err := grpc.Dial(cfg.CollectorEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		log.Warn().Err(err).Str("collector", cfg.CollectorEndpoint).Msg("Continuing without tracing")
		return noop, nil
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		log.Warn().Err(err).Msg("Failed to create trace exporter, continuing without tracing")
		return noop, nil
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		_ = provider.Shutdown(ctx)
		conn.Close()
		log.Warn().Err(err).Msg("Failed to create metric exporter, continuing without telemetry")
		return noop, nil
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			metricExporter,
			sdkmetric.WithInterval(cfg.MetricsInterval),
		)),
	)
	otel.SetMeterProvider(meterProvider)

	log.Info().Str("collector", cfg.CollectorEndpoint).Msg("Telemetry enabled")

	return func(ctx context.Context) error {
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		var errs []error
		if err := provider.Shutdown(cctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
		if err := meterProvider.Shutdown(cctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close gRPC connection: %w", err))
		}
		if len(errs) > 0 {
			return fmt.Errorf("shutdown errors: %v", errs)
		}
		return nil
	}, nil
}

// StartSpan starts a span on the global tracer provider. Without InitTelemetry it is a no-op span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

var (
	instrumentsOnce    sync.Once
	actionCounter      metric.Int64Counter
	confirmationMillis metric.Float64Histogram
)

// instruments are created on the global meter, which forwards to the provider
// installed by InitTelemetry even if that happens later.
func initInstruments() {
	log := logger.WithComponent("telemetry")
	meter := otel.Meter(tracerName)

	var err error
	actionCounter, err = meter.Int64Counter("staking.actions",
		metric.WithDescription("Staking actions by outcome"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create action counter")
	}

	confirmationMillis, err = meter.Float64Histogram("staking.confirmation.duration",
		metric.WithDescription("Time from submission to receipt"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create confirmation histogram")
	}
}

func recordActionResult(ctx context.Context, action, status string, duration time.Duration) {
	instrumentsOnce.Do(initInstruments)

	attrs := metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	)
	if actionCounter != nil {
		actionCounter.Add(ctx, 1, attrs)
	}
	if confirmationMillis != nil {
		confirmationMillis.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}
