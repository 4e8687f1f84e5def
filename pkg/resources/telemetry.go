package resources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// HookFn runs once the providers are installed, typically to hook the logger.
type HookFn func(ctx context.Context) (context.Context, error)

// Observe installs the global tracer, meter and logger providers exporting
// over OTLP gRPC. With OTEL_ENABLED=false it only runs hookFn.
func Observe(ctx context.Context, name string, version string, env string, hookFn HookFn) (context.Context, StopFn, error) {
	if !viper.GetBool("OTEL_ENABLED") {
		log.Ctx(ctx).Info().Str("stage", "startup").Str("component", "telemetry").Msg("telemetry disabled")
		if hookFn == nil {
			return ctx, NoopStopFn, nil
		}
		hooked, err := hookFn(ctx)
		if err != nil {
			return ctx, NoopStopFn, fmt.Errorf("failed to run telemetry hook: %w", err)
		}
		return hooked, NoopStopFn, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", name),
		attribute.String("service.version", version),
		attribute.String("deployment.environment", env),
	))
	if err != nil {
		return ctx, NoopStopFn, fmt.Errorf("failed to create otel resource: %w", err)
	}

	endpoint := viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return ctx, NoopStopFn, fmt.Errorf("failed to create the OTLP trace exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return ctx, NoopStopFn, fmt.Errorf("failed to create the OTLP metric exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	logExporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return ctx, NoopStopFn, fmt.Errorf("failed to create the OTLP log exporter: %w", err)
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(loggerProvider)

	err = runtime.Start()
	if err != nil {
		return ctx, NoopStopFn, fmt.Errorf("failed to start runtime metrics: %w", err)
	}

	if hookFn != nil {
		ctx, err = hookFn(ctx)
		if err != nil {
			return ctx, NoopStopFn, fmt.Errorf("failed to run telemetry hook: %w", err)
		}
	}

	stopFn := func(ctx context.Context, timeout time.Duration) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		err := errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
			loggerProvider.Shutdown(ctx),
		)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("stage", "shut down").Str("component", "telemetry").Msg("failed to flush telemetry")
		}
	}

	return ctx, stopFn, nil
}
